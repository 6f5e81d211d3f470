package controller

// ValidationError is a user action refused before any request was made.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Message
}

// ErrExpectedLabelRequired is returned by SubmitForTraining when no digit
// is selected.
var ErrExpectedLabelRequired = &ValidationError{
	Op:      "submit for training",
	Message: "Please select a number before submitting",
}
