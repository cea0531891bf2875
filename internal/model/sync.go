package model

// SyncError ties one failed feed transaction to the reason it was skipped.
// The sync engine records these and keeps going; a single bad statement
// line must not block a multi-year replay.
type SyncError struct {
	TransactionID string `json:"transactionId"`
	Error         string `json:"error"`
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	LotsCreated  int         `json:"lotsCreated"`
	SalesCreated int         `json:"salesCreated"`
	Skipped      int         `json:"skipped"`
	Errors       []SyncError `json:"errors"`
}

// Merge folds another result into this one. Used when scopes are replayed
// independently and their results combined.
func (r *SyncResult) Merge(other SyncResult) {
	r.LotsCreated += other.LotsCreated
	r.SalesCreated += other.SalesCreated
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}
