package services

import "errors"

// ErrorKind classifies failures in the analysis flow so the HTTP
// boundary can translate them without inspecting error strings.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindDataQuality
	KindUpstream
	KindRender
	KindFilesystem
)

// Error is a kinded error. Message is the client-facing text for
// validation and data-quality failures; Err carries the underlying
// cause for everything else.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func dataQuality(message string) *Error {
	return &Error{Kind: KindDataQuality, Message: message}
}

func upstream(err error) *Error {
	return &Error{Kind: KindUpstream, Err: err}
}

func render(err error) *Error {
	return &Error{Kind: KindRender, Err: err}
}

func filesystem(err error) *Error {
	return &Error{Kind: KindFilesystem, Err: err}
}

// KindOf reports the kind of err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
