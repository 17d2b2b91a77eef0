package oaih

import (
	"fmt"
	"time"
)

// About is a compact description of an endpoint, useful when cataloging
// larger numbers of repositories.
type About struct {
	Endpoint string           `json:"endpoint"`
	Identify *Identify        `json:"id,omitempty"`
	Formats  []MetadataFormat `json:"formats,omitempty"`
	Sets     []Set            `json:"sets,omitempty"`
	Errors   []string         `json:"errors,omitempty"`
	Elapsed  float64          `json:"elapsed"`
}

type message struct {
	verb    string
	id      *Identify
	formats []MetadataFormat
	sets    []Set
	err     error
}

// AboutEndpoint asks a repository about itself, its sets and formats with
// three concurrent requests, each on its own client. Failures are collected
// per verb, so a repository without sets still yields a useful result.
// Returns after at most timeout.
func AboutEndpoint(endpoint string, timeout time.Duration) (About, error) {
	start := time.Now()
	about := About{Endpoint: endpoint}
	ch := make(chan message, 3)
	go func() {
		id, err := NewClient(endpoint).Identify()
		ch <- message{verb: "Identify", id: id, err: err}
	}()
	go func() {
		formats, err := NewClient(endpoint).ListMetadataFormats("")
		ch <- message{verb: "ListMetadataFormats", formats: formats, err: err}
	}()
	go func() {
		var sets []Set
		it := NewClient(endpoint).ListSets()
		for it.Next() {
			sets = append(sets, it.Set())
		}
		ch <- message{verb: "ListSets", sets: sets, err: it.Err()}
	}()
	deadline := time.After(timeout)
	for received := 0; received < 3; received++ {
		select {
		case msg := <-ch:
			switch {
			case msg.err != nil:
				about.Errors = append(about.Errors, fmt.Sprintf("%s: %v", msg.verb, msg.err))
			case msg.id != nil:
				about.Identify = msg.id
			case msg.formats != nil:
				about.Formats = msg.formats
			case msg.sets != nil:
				about.Sets = msg.sets
			}
		case <-deadline:
			about.Elapsed = time.Since(start).Seconds()
			return about, fmt.Errorf("about %s: timed out", endpoint)
		}
	}
	about.Elapsed = time.Since(start).Seconds()
	return about, nil
}
