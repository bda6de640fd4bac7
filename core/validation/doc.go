// Package validation checks ingested collections for structural, format and
// referential problems. Validators never stop at the first problem and never
// mutate their input: every row and every check runs and each finding is
// returned as a ValidationError.
//
// ValidationError.RowIndex is the position of the row in the collection
// passed to the validator. It is not a stable key: reordering or filtering
// the collection invalidates previous results, which must be recomputed.
package validation
