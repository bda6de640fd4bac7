// Package events defines the workspace events emitted on the event bus.
//
// Available event types:
//   - DatasetChanged: an entity collection was loaded, edited or replaced
//   - RulesChanged: the rule set was modified
//   - ReportReady: a validation pass completed
//   - FilterApplied: a natural language filter result was accepted or rejected
package events
