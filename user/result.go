package user

import (
	"errors"
)

// Result is the outcome of a single Manager call.
type Result struct {
	Success bool
	Errors  []error
	Info    map[string]any
}

func newResult() *Result {
	return &Result{Info: make(map[string]any)}
}

func (r *Result) fail(err error) *Result {
	r.Success = false
	r.Errors = append(r.Errors, err)
	return r
}

func (r *Result) succeed() *Result {
	r.Success = len(r.Errors) == 0
	return r
}

// Messages returns the error strings in the order they occurred.
func (r *Result) Messages() []string {
	messages := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// Err joins the errors into one, nil when there were none.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

// Has reports whether any error matches the kind.
func (r *Result) Has(kind error) bool {
	for _, err := range r.Errors {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
