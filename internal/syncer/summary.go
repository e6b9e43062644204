package syncer

import "sort"

// ItemError records one per-item failure inside a batch.
type ItemError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Summary reports the outcome of one sync invocation. Item failures are
// tallied here instead of unwinding past the batch boundary.
type Summary struct {
	Processed   int         `json:"processed"`
	Succeeded   int         `json:"succeeded"`
	Failed      int         `json:"failed"`
	Skipped     int         `json:"skipped"`
	ChangedKeys []string    `json:"changed,omitempty"`
	Errors      []ItemError `json:"errors,omitempty"`
}

func (s *Summary) addSuccess(key string) {
	s.Processed++
	s.Succeeded++
	s.ChangedKeys = append(s.ChangedKeys, key)
}

func (s *Summary) addFailure(path string, err error) {
	s.Processed++
	s.Failed++
	s.Errors = append(s.Errors, ItemError{Path: path, Err: err.Error()})
}

func (s *Summary) addSkip() {
	s.Processed++
	s.Skipped++
}

func (s *Summary) finalize() {
	sort.Strings(s.ChangedKeys)
	sort.Slice(s.Errors, func(i, j int) bool { return s.Errors[i].Path < s.Errors[j].Path })
}
