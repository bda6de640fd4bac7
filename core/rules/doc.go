// Package rules models scheduling rules and checks them against a dataset.
//
// A Rule is one of CoRun, SlotRestriction or LoadLimit. Unknown carries a
// record whose type is not recognised or could not be decoded so it can
// still be reported. Consumers switch on the concrete type; adding a kind
// means extending Validate, Apply and the codec.
//
// Validate reports why a rule cannot be satisfied by the data as a list of
// Violations. Apply produces one pass/fail Result per rule for dry-run
// reports. The two differ for CoRun: Validate requires every
// task to overlap the first task's phases, Apply requires a phase common to
// all tasks.
package rules
