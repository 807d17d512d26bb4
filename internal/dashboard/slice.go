// Package dashboard keeps the per-session state of the caregiver dashboard:
// the selected period of each view and the independently loading slices of
// data fetched from the backend.
package dashboard

import "github.com/serena/serena/internal/apiclient"

// Slice is one independently loaded piece of a view. After a load settles
// either Data or Error is set, never both.
type Slice[T any] struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data"`

	gen uint64
}

// begin marks the slice as loading and returns the generation of the new
// request. Responses carrying an older generation are discarded.
func (s *Slice[T]) begin() uint64 {
	s.gen++
	s.Loading = true
	return s.gen
}

// finish stores the outcome of request gen. It reports false when a newer
// request superseded it.
func (s *Slice[T]) finish(gen uint64, data T, err error) bool {
	if gen != s.gen {
		return false
	}
	s.Loading = false
	if err != nil {
		var zero T
		s.Data = zero
		s.Error = apiclient.Message(err)
		return true
	}
	s.Data = data
	s.Error = ""
	return true
}

// Ready reports whether the slice holds data.
func (s Slice[T]) Ready() bool {
	return !s.Loading && s.Error == "" && s.gen > 0
}
