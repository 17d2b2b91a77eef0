package oaih

import (
	"errors"
	"fmt"
)

// Error kinds for the protocol error conditions (3.6). Test a returned error
// against a kind with errors.Is.
var (
	ErrBadArgument             = errors.New("badArgument")
	ErrBadResumptionToken      = errors.New("badResumptionToken")
	ErrBadVerb                 = errors.New("badVerb")
	ErrCannotDisseminateFormat = errors.New("cannotDisseminateFormat")
	ErrIDDoesNotExist          = errors.New("idDoesNotExist")
	ErrNoRecordsMatch          = errors.New("noRecordsMatch")
	ErrNoMetadataFormats       = errors.New("noMetadataFormats")
	ErrNoSetHierarchy          = errors.New("noSetHierarchy")
)

var errorKinds = map[string]error{
	"badArgument":             ErrBadArgument,
	"badResumptionToken":      ErrBadResumptionToken,
	"badVerb":                 ErrBadVerb,
	"cannotDisseminateFormat": ErrCannotDisseminateFormat,
	"idDoesNotExist":          ErrIDDoesNotExist,
	"noRecordsMatch":          ErrNoRecordsMatch,
	"noMetadataFormats":       ErrNoMetadataFormats,
	"noSetHierarchy":          ErrNoSetHierarchy,
}

// OAIError wraps OAI error codes and messages. Repositories are free to send
// codes outside the protocol, these are preserved, but unwrap to no kind.
type OAIError struct {
	Code    string
	Message string
}

// Error to satisfy interface.
func (e OAIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the error kind for the code, nil for unknown codes.
func (e OAIError) Unwrap() error {
	return errorKinds[e.Code]
}

// HTTPError is returned for replies with a status outside the 2xx range.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %s for %s", e.Status, e.URL)
}

// ParseError is returned, when a body cannot be interpreted as a response to
// the verb that was sent.
type ParseError struct {
	Verb string
	Err  error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s response: %v", e.Verb, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}
