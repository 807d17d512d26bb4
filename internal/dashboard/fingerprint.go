package dashboard

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

// fingerprint hashes the JSON form of parts. Two snapshots with the same
// data and errors hash equal.
func fingerprint(parts ...interface{}) uint64 {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	for _, p := range parts {
		// view state holds only JSON-safe types and the digest never fails a write
		_ = enc.Encode(p)
	}
	return d.Sum64()
}

// Fingerprint identifies the data and errors currently held by the view.
func (v *FinancialView) Fingerprint() uint64 {
	st := v.Snapshot()
	return fingerprint(st.Period, st.Range, st.Total, st.Categories, st.Transactions)
}

// Fingerprint identifies the data and errors currently held by the view.
func (v *HealthView) Fingerprint() uint64 {
	st := v.Snapshot()
	return fingerprint(st.Period, st.Range, st.Category, st.Summary, st.History)
}
