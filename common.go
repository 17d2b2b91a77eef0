package oaih

import (
	"fmt"
	"net/url"
	"time"
)

// Version of this library.
const Version = "0.1.0"

var (
	// Verbose logs requests as they happen.
	Verbose = false
	// UserAgent to use for requests.
	UserAgent = fmt.Sprintf("oaih/%s (https://github.com/miku/oaih)", Version)
	// DefaultFormat should be supported by most endpoints.
	DefaultFormat = "oai_dc"
	// DefaultEarliestDate is used, if the repository does not supply one.
	DefaultEarliestDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Values is a thin wrapper around url.Values.
type Values struct {
	url.Values
}

// NewValues returns a new empty struct.
func NewValues() Values {
	return Values{url.Values{}}
}

// AddIfExists adds a key value pair only if value is nonempty.
func (v Values) AddIfExists(key, value string) {
	if value != "" {
		v.Add(key, value)
	}
}
