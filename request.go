//  Copyright 2015 by Leipzig University Library, http://ub.uni-leipzig.de
//                    The Finc Authors, http://finc.info
//                    Martin Czygan, <martin.czygan@uni-leipzig.de>
//
// This file is part of some open source application.
//
// Some open source application is free software: you can redistribute
// it and/or modify it under the terms of the GNU General Public
// License as published by the Free Software Foundation, either
// version 3 of the License, or (at your option) any later version.
//
// Some open source application is distributed in the hope that it will
// be useful, but WITHOUT ANY WARRANTY; without even the implied warranty
// of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Foobar.  If not, see <http://www.gnu.org/licenses/>.
//
// @license GPL-3.0+ <http://spdx.org/licenses/GPL-3.0+>
//
package oaih

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrNoEndpoint       = errors.New("request: an endpoint is required")
	ErrNoVerb           = errors.New("no verb")
	ErrVerbNotSupported = errors.New("verb not supported by client")
	ErrMissingPrefix    = errors.New("missing metadataPrefix")
)

// OAIVerbs (4. Protocol Requests and Responses)
var OAIVerbs = map[string]bool{
	"Identify":            true,
	"ListIdentifiers":     true,
	"ListSets":            true,
	"ListMetadataFormats": true,
	"ListRecords":         true,
	"GetRecord":           true,
}

// Request holds the parameters of a single OAI request. Zero values are left
// out of the query. A resumption token is exclusive and suppresses all
// arguments except the verb (3.5).
type Request struct {
	Endpoint        string
	Verb            string
	Identifier      string
	Prefix          string
	Set             string
	From            Datestamp
	Until           Datestamp
	ResumptionToken string
	// Granularity fixes the rendering of From and Until. Leave auto to
	// derive it from the bounds themselves.
	Granularity Granularity
}

// Values returns the query parameters for the request. The verb decides,
// which arguments are taken into account.
func (r Request) Values() (url.Values, error) {
	if r.Verb == "" {
		return nil, ErrNoVerb
	}
	if !OAIVerbs[r.Verb] {
		return nil, ErrVerbNotSupported
	}
	values := NewValues()
	values.Add("verb", r.Verb)
	if r.ResumptionToken != "" {
		// An exclusive argument with a value that is the flow control token.
		values.Add("resumptionToken", r.ResumptionToken)
		return values.Values, nil
	}
	switch r.Verb {
	case "ListRecords", "ListIdentifiers":
		if r.Prefix == "" {
			return nil, ErrMissingPrefix
		}
		g := r.effectiveGranularity()
		values.Add("metadataPrefix", r.Prefix)
		values.AddIfExists("set", r.Set)
		values.AddIfExists("from", r.From.Format(g))
		values.AddIfExists("until", r.Until.Format(g))
	case "GetRecord":
		if r.Prefix == "" {
			return nil, ErrMissingPrefix
		}
		values.AddIfExists("identifier", r.Identifier)
		values.Add("metadataPrefix", r.Prefix)
	case "ListMetadataFormats":
		values.AddIfExists("identifier", r.Identifier)
	}
	return values.Values, nil
}

// effectiveGranularity resolves auto against the actual bounds. A single
// clocked bound switches both to seconds, so a range never mixes layouts.
func (r Request) effectiveGranularity() Granularity {
	if r.Granularity != GranularityAuto {
		return r.Granularity
	}
	if r.From.hasClock() || r.Until.hasClock() {
		return GranularitySeconds
	}
	return GranularityDay
}

// URL returns the absolute URL for a given request. Catches basic errors
// like a missing endpoint or bad verb.
func (r Request) URL() (string, error) {
	if r.Endpoint == "" {
		return "", ErrNoEndpoint
	}
	values, err := r.Values()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?%s", r.Endpoint, values.Encode()), nil
}
