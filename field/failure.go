package field

// FailureField wraps a SimpleField with an observable "failed" flag, used
// by models to report a simulated fault on an otherwise ordinary value.
type FailureField struct {
	*SimpleField
	failed bool
}

// NewFailureField wraps simple as a failure field, initially not failed.
func NewFailureField(simple *SimpleField) *FailureField {
	return &FailureField{SimpleField: simple}
}

// Failed reports the current fault state.
func (f *FailureField) Failed() bool { return f.failed }

// SetFailed sets or clears the fault state.
func (f *FailureField) SetFailed(failed bool) { f.failed = failed }
