package oaih

import (
	"testing"
	"time"
)

func TestDatestampFormat(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	var tests = []struct {
		d    Datestamp
		g    Granularity
		want string
	}{
		{Datestamp{}, GranularityAuto, ""},
		{Datestamp{}, GranularitySeconds, ""},
		{When(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)), GranularityAuto, "2024-03-05"},
		{When(time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC)), GranularityAuto, "2024-03-05T12:30:00Z"},
		{When(time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC)), GranularityDay, "2024-03-05"},
		{When(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)), GranularitySeconds, "2024-03-05T00:00:00Z"},
		{When(time.Date(2024, 1, 1, 0, 0, 0, 0, cet)), GranularityAuto, "2023-12-31T23:00:00Z"},
		{Verbatim("not-a-date"), GranularityAuto, "not-a-date"},
		{Verbatim("2024-03-05T12:30:00Z"), GranularityDay, "2024-03-05T12:30:00Z"},
	}
	for _, test := range tests {
		if got := test.d.Format(test.g); got != test.want {
			t.Errorf("Format(%v) got %v, want %v", test.g, got, test.want)
		}
	}
}

func TestParseDatestamp(t *testing.T) {
	var tests = []struct {
		s    string
		want time.Time
		ok   bool
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05T12:30:00Z", time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC), true},
		{"2024-3-5", time.Time{}, false},
		{"garbage", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, test := range tests {
		d, err := ParseDatestamp(test.s)
		if test.ok && err != nil {
			t.Errorf("ParseDatestamp(%q) got %v, want nil", test.s, err)
		}
		if !test.ok && err == nil {
			t.Errorf("ParseDatestamp(%q) got nil, want error", test.s)
		}
		if test.ok && !d.Time.Equal(test.want) {
			t.Errorf("ParseDatestamp(%q) got %v, want %v", test.s, d.Time, test.want)
		}
	}
}

func TestDatestampRoundTrip(t *testing.T) {
	stamp := When(time.Date(2024, 3, 5, 16, 45, 12, 0, time.UTC))
	s := stamp.Format(GranularityDay)
	parsed, err := ParseDatestamp(s)
	if err != nil {
		t.Fatalf("ParseDatestamp(%q) got %v, want nil", s, err)
	}
	y0, m0, d0 := stamp.Time.UTC().Date()
	y1, m1, d1 := parsed.Time.Date()
	if y0 != y1 || m0 != m1 || d0 != d1 {
		t.Errorf("round trip got %v, want %d-%d-%d", parsed.Time, y0, m0, d0)
	}
}

func TestGranularityNotation(t *testing.T) {
	var tests = []struct {
		s    string
		want Granularity
	}{
		{"YYYY-MM-DD", GranularityDay},
		{"day", GranularityDay},
		{"YYYY-MM-DDThh:mm:ssZ", GranularitySeconds},
		{"seconds", GranularitySeconds},
		{"auto", GranularityAuto},
		{"whatever", GranularityAuto},
		{"", GranularityAuto},
	}
	for _, test := range tests {
		if got := ParseGranularity(test.s); got != test.want {
			t.Errorf("ParseGranularity(%q) got %v, want %v", test.s, got, test.want)
		}
	}
	if got := GranularityDay.String(); got != "YYYY-MM-DD" {
		t.Errorf("String() got %v, want YYYY-MM-DD", got)
	}
	if got := GranularitySeconds.String(); got != "YYYY-MM-DDThh:mm:ssZ" {
		t.Errorf("String() got %v, want YYYY-MM-DDThh:mm:ssZ", got)
	}
}
