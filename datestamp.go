package oaih

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"time"
)

// Granularity is the datestamp precision. Repositories support either full
// days or seconds (3.3). The zero value lets the client choose.
type Granularity int

const (
	// GranularityAuto selects seconds whenever a bound carries a nonzero
	// UTC time of day, days otherwise.
	GranularityAuto Granularity = iota
	// GranularityDay renders datestamps as YYYY-MM-DD.
	GranularityDay
	// GranularitySeconds renders datestamps as YYYY-MM-DDThh:mm:ssZ.
	GranularitySeconds
)

// String returns the protocol notation, as used in Identify responses.
func (g Granularity) String() string {
	switch g {
	case GranularityDay:
		return "YYYY-MM-DD"
	case GranularitySeconds:
		return "YYYY-MM-DDThh:mm:ssZ"
	}
	return "auto"
}

// ParseGranularity maps the protocol notation and short names to a
// granularity. Anything unknown maps to auto.
func ParseGranularity(s string) Granularity {
	switch s {
	case "YYYY-MM-DD", "day":
		return GranularityDay
	case "YYYY-MM-DDThh:mm:ssZ", "seconds":
		return GranularitySeconds
	}
	return GranularityAuto
}

// Datestamp is a point in time in a request or response. It is either backed
// by a time.Time or carries a raw string, which passes through unaltered.
// The zero value means absent.
type Datestamp struct {
	Time time.Time
	Raw  string
}

// When wraps a time.Time, which will be rendered in UTC.
func When(t time.Time) Datestamp {
	return Datestamp{Time: t}
}

// Verbatim wraps a literal datestamp string. The client never validates or
// reformats it, whatever the granularity.
func Verbatim(s string) Datestamp {
	return Datestamp{Raw: s}
}

// ParseDatestamp parses a datestamp in one of the two protocol layouts.
func ParseDatestamp(s string) (Datestamp, error) {
	t, err := parseLayouts(s)
	if err != nil {
		return Datestamp{}, err
	}
	return Datestamp{Time: t, Raw: s}, nil
}

func parseLayouts(s string) (time.Time, error) {
	if len(s) == 10 {
		return time.Parse("2006-01-02", s)
	}
	return time.Parse(time.RFC3339, s)
}

// IsZero returns true, if the datestamp is absent.
func (d Datestamp) IsZero() bool {
	return d.Raw == "" && d.Time.IsZero()
}

// hasClock returns true, if the UTC rendering has a nonzero time of day.
// Raw values never report a clock.
func (d Datestamp) hasClock() bool {
	if d.Raw != "" || d.Time.IsZero() {
		return false
	}
	t := d.Time.UTC()
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0
}

// Format renders the datestamp for a query under the given granularity. Raw
// values pass through, absent values render empty.
func (d Datestamp) Format(g Granularity) string {
	if d.Raw != "" {
		return d.Raw
	}
	if d.Time.IsZero() {
		return ""
	}
	if g == GranularityAuto {
		if d.hasClock() {
			g = GranularitySeconds
		} else {
			g = GranularityDay
		}
	}
	t := d.Time.UTC()
	if g == GranularitySeconds {
		return t.Format("2006-01-02T15:04:05Z")
	}
	return t.Format("2006-01-02")
}

// String renders the datestamp in its natural precision.
func (d Datestamp) String() string {
	return d.Format(GranularityAuto)
}

// MarshalJSON renders the datestamp as a string.
func (d Datestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalXML accepts both protocol layouts and keeps anything else
// verbatim, as repositories get datestamps wrong in many ways.
func (d *Datestamp) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := dec.DecodeElement(&s, &start); err != nil {
		return err
	}
	*d = lenientDatestamp(s)
	return nil
}

// UnmarshalXMLAttr is like UnmarshalXML for attribute values.
func (d *Datestamp) UnmarshalXMLAttr(attr xml.Attr) error {
	*d = lenientDatestamp(attr.Value)
	return nil
}

func lenientDatestamp(s string) Datestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Datestamp{}
	}
	if t, err := parseLayouts(s); err == nil {
		return Datestamp{Time: t, Raw: s}
	}
	return Datestamp{Raw: s}
}
