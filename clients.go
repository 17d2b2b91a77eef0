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
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sethgrid/pester"
)

// HttpRequestDoer lets us use pester, http.Client or other HTTP client
// implementations interchangeably.
type HttpRequestDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to a single OAI endpoint. A client is not safe for
// concurrent use, create one per goroutine instead.
type Client struct {
	// Granularity pins the datestamp layout for all requests. Leave auto
	// to let each request decide, consulting a previously fetched
	// Identify.
	Granularity Granularity
	// UsePost sends parameters in a form body instead of the query
	// string, for repositories behind URL mangling proxies.
	UsePost bool
	// MaxRequests caps the number of HTTP requests a single list
	// operation may issue. Zero means no limit. A nonzero value will
	// prevent endless loops due to broken resumptionToken
	// implementations (e.g. http://goo.gl/KFb9iM).
	MaxRequests int

	endpoint string
	doer     HttpRequestDoer
	identity *Identify
}

// NewClient creates a client for an endpoint with a resilient HTTP client,
// which will retry failed requests with backoff.
func NewClient(endpoint string) *Client {
	c := pester.New()
	c.Timeout = 5 * time.Minute
	c.MaxRetries = 8
	c.Backoff = pester.ExponentialBackoff
	return NewClientDoer(endpoint, c)
}

// NewClientDoer creates a client with a user supplied http client, e.g.
// pester.Client or http.DefaultClient.
func NewClientDoer(endpoint string, doer HttpRequestDoer) *Client {
	return &Client{endpoint: endpoint, doer: doer}
}

// Endpoint returns the base URL the client was created with.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Do executes a single request and parses the reply. Replies with a status
// outside the 2xx range become HTTPError, protocol errors OAIError.
// Transport failures are passed through as is.
func (c *Client) Do(req Request) (*Response, error) {
	if req.Endpoint == "" {
		req.Endpoint = c.endpoint
	}
	hreq, err := c.build(req)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("User-Agent", UserAgent)
	resp, err := c.doer.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        hreq.URL.String(),
		}
	}
	return decode(resp.Body, req.Verb)
}

// build assembles the HTTP request, as GET with a query string or as form
// encoded POST.
func (c *Client) build(req Request) (*http.Request, error) {
	if c.UsePost {
		if req.Endpoint == "" {
			return nil, ErrNoEndpoint
		}
		values, err := req.Values()
		if err != nil {
			return nil, err
		}
		if Verbose {
			log.Printf("POST %s %s", req.Endpoint, values.Encode())
		}
		hreq, err := http.NewRequest("POST", req.Endpoint, strings.NewReader(values.Encode()))
		if err != nil {
			return nil, err
		}
		hreq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return hreq, nil
	}
	link, err := req.URL()
	if err != nil {
		return nil, err
	}
	if Verbose {
		log.Println(link)
	}
	return http.NewRequest("GET", link, nil)
}
