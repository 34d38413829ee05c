package model

import "fmt"

// Stage identifies which pipeline stage produced a result or failure.
type Stage string

const (
	StageTranslation Stage = "translation"
	StageValidation  Stage = "validation"
	StageExecution   Stage = "execution"
)

// StageError is a pipeline failure tagged with the stage that produced it.
// Exactly one StageError (or none, on success) is attached to a Result.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result is the terminal state of one pipeline run. SQL is populated as
// soon as the translation stage produces a statement, so a validation or
// execution failure still carries the offending SQL for display.
type Result struct {
	Stage   Stage       `json:"stage"`
	SQL     string      `json:"sql,omitempty"`
	Columns []string    `json:"columns,omitempty"`
	Rows    [][]any     `json:"rows,omitempty"`
	Err     *StageError `json:"-"`
}

// OK reports whether the run completed all three stages.
func (r *Result) OK() bool {
	return r.Err == nil
}

// ErrorMessage returns the diagnostic for a failed run, or "" on success.
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Err.Error()
}
