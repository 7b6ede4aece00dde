package movies

import "strings"

// Status is the processing verdict for one input title.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNoMatch Status = "no_match"
	StatusError   Status = "error"
)

const (
	noMatchText  = "No exact match found"
	errorPrefix  = "error: "
	successLabel = "success"
)

// Outcome is the result of processing one title. Exactly one is produced per input.
type Outcome struct {
	Title     string
	Status    Status
	Message   string
	Reference *Reference
	Bundle    Bundle
}

// Success builds a successful outcome.
func Success(title string, ref Reference, bundle Bundle) Outcome {
	return Outcome{Title: title, Status: StatusSuccess, Reference: &ref, Bundle: bundle}
}

// NoMatch builds an outcome for a title with no qualifying record.
func NoMatch(title string) Outcome {
	return Outcome{Title: title, Status: StatusNoMatch}
}

// Failure builds an outcome for a title whose processing failed.
func Failure(title string, err error) Outcome {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{Title: title, Status: StatusError, Message: msg}
}

// StatusText renders the persisted status column.
func (o Outcome) StatusText() string {
	switch o.Status {
	case StatusSuccess:
		return successLabel
	case StatusNoMatch:
		return noMatchText
	default:
		return errorPrefix + o.Message
	}
}

// ParseStatusText maps a persisted status column back to a Status and message.
func ParseStatusText(value string) (Status, string) {
	switch {
	case value == successLabel:
		return StatusSuccess, ""
	case value == noMatchText:
		return StatusNoMatch, ""
	case strings.HasPrefix(value, errorPrefix):
		return StatusError, strings.TrimPrefix(value, errorPrefix)
	default:
		return StatusError, value
	}
}
