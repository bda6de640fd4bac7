// Package normalize converts loosely typed spreadsheet fields into canonical
// values. Every function here is total: malformed input degrades to an empty
// result instead of an error so a single bad cell never aborts a batch.
//
// Phase and slot fields accept four encodings:
//   - an already decoded array ([]any, []int, []float64, []string)
//   - JSON array text such as "[1,2,3]"
//   - inclusive range text such as "1-3"
//   - comma separated text such as "5,6, 7"
//
// ParsePhaseField classifies a raw value once into a PhaseField; Phases
// resolves it to the canonical []int.
package normalize
