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

import "errors"

// ErrTooManyRequests is returned, if a list operation exceeds MaxRequests.
var ErrTooManyRequests = errors.New("too many requests")

// Selection narrows a list harvest. The zero value selects everything a
// repository has, in its default rendering.
type Selection struct {
	// Prefix is the metadata format, required for records and identifiers.
	Prefix string
	// Set limits the harvest to a single set.
	Set string
	// From and Until bound the datestamps of the selected items, both
	// inclusive and both optional.
	From  Datestamp
	Until Datestamp
	// Granularity overrides the client granularity for this harvest.
	Granularity Granularity
}

// Identify fetches the repository self description once and caches it for
// the lifetime of the client.
func (c *Client) Identify() (*Identify, error) {
	if c.identity != nil {
		return c.identity, nil
	}
	resp, err := c.Do(Request{Verb: "Identify"})
	if err != nil {
		return nil, err
	}
	c.identity = resp.Identify
	return c.identity, nil
}

// ListMetadataFormats returns the formats a repository can disseminate, for
// a nonempty identifier only those available for a single item.
func (c *Client) ListMetadataFormats(identifier string) ([]MetadataFormat, error) {
	resp, err := c.Do(Request{Verb: "ListMetadataFormats", Identifier: identifier})
	if err != nil {
		return nil, err
	}
	return resp.ListMetadataFormats.Formats, nil
}

// GetRecord fetches a single record in the given format.
func (c *Client) GetRecord(identifier, prefix string) (*Record, error) {
	resp, err := c.Do(Request{Verb: "GetRecord", Identifier: identifier, Prefix: prefix})
	if err != nil {
		return nil, err
	}
	return &resp.GetRecord.Record, nil
}

// ListRecords starts a record harvest. Pages are fetched on demand, as the
// iterator advances.
func (c *Client) ListRecords(sel Selection) *RecordIter {
	return &RecordIter{h: c.newHarvest("ListRecords", sel)}
}

// ListIdentifiers is like ListRecords, with headers only.
func (c *Client) ListIdentifiers(sel Selection) *HeaderIter {
	return &HeaderIter{h: c.newHarvest("ListIdentifiers", sel)}
}

// ListSets lists the set hierarchy of a repository.
func (c *Client) ListSets() *SetIter {
	return &SetIter{h: c.newHarvest("ListSets", Selection{})}
}

// newHarvest prepares the paging state for one list operation.
func (c *Client) newHarvest(verb string, sel Selection) *harvest {
	return &harvest{
		c: c,
		req: Request{
			Verb:        verb,
			Prefix:      sel.Prefix,
			Set:         sel.Set,
			From:        sel.From,
			Until:       sel.Until,
			Granularity: c.resolveGranularity(sel.Granularity),
		},
	}
}

// resolveGranularity picks the datestamp layout: per call beats per client
// beats what a previously fetched Identify announced. No extra request is
// made here, an unknown repository stays on auto.
func (c *Client) resolveGranularity(g Granularity) Granularity {
	if g != GranularityAuto {
		return g
	}
	if c.Granularity != GranularityAuto {
		return c.Granularity
	}
	if c.identity != nil && c.identity.DatestampGranularity() == GranularityDay {
		return GranularityDay
	}
	return GranularityAuto
}

// harvest drives the resumption loop for one list verb. After the first
// page, the token is the only argument sent along with the verb (3.5).
type harvest struct {
	c     *Client
	req   Request
	calls int
	done  bool
}

// next fetches one page. It returns nil, nil after the last page.
func (h *harvest) next() (*Response, error) {
	if h.done {
		return nil, nil
	}
	if h.c.MaxRequests > 0 && h.calls >= h.c.MaxRequests {
		h.done = true
		return nil, ErrTooManyRequests
	}
	h.calls++
	resp, err := h.c.Do(h.req)
	if err != nil {
		h.done = true
		return nil, err
	}
	token := resp.token()
	if token == nil || token.Value == "" {
		h.done = true
	} else {
		h.req = Request{Verb: h.req.Verb, ResumptionToken: token.Value}
	}
	return resp, nil
}

// RecordIter walks records across page boundaries.
//
//	it := client.ListRecords(oaih.Selection{Prefix: "oai_dc"})
//	for it.Next() {
//		r := it.Record()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// Dropping the iterator abandons the harvest, no further pages are fetched.
type RecordIter struct {
	h    *harvest
	page []Record
	i    int
	err  error
}

// Next advances to the next record, fetching a page when necessary. It
// returns false when the list is exhausted or an error occurred.
func (it *RecordIter) Next() bool {
	if it.err != nil {
		return false
	}
	for it.i >= len(it.page) {
		resp, err := it.h.next()
		if err != nil {
			it.err = err
			return false
		}
		if resp == nil {
			return false
		}
		it.page, it.i = resp.ListRecords.Records, 0
	}
	it.i++
	return true
}

// Record returns the current record.
func (it *RecordIter) Record() Record {
	return it.page[it.i-1]
}

// Err returns the first error encountered while iterating.
func (it *RecordIter) Err() error {
	return it.err
}

// HeaderIter walks headers across page boundaries.
type HeaderIter struct {
	h    *harvest
	page []Header
	i    int
	err  error
}

// Next advances to the next header, fetching a page when necessary.
func (it *HeaderIter) Next() bool {
	if it.err != nil {
		return false
	}
	for it.i >= len(it.page) {
		resp, err := it.h.next()
		if err != nil {
			it.err = err
			return false
		}
		if resp == nil {
			return false
		}
		it.page, it.i = resp.ListIdentifiers.Headers, 0
	}
	it.i++
	return true
}

// Header returns the current header.
func (it *HeaderIter) Header() Header {
	return it.page[it.i-1]
}

// Err returns the first error encountered while iterating.
func (it *HeaderIter) Err() error {
	return it.err
}

// SetIter walks sets across page boundaries.
type SetIter struct {
	h    *harvest
	page []Set
	i    int
	err  error
}

// Next advances to the next set, fetching a page when necessary.
func (it *SetIter) Next() bool {
	if it.err != nil {
		return false
	}
	for it.i >= len(it.page) {
		resp, err := it.h.next()
		if err != nil {
			it.err = err
			return false
		}
		if resp == nil {
			return false
		}
		it.page, it.i = resp.ListSets.Sets, 0
	}
	it.i++
	return true
}

// Set returns the current set.
func (it *SetIter) Set() Set {
	return it.page[it.i-1]
}

// Err returns the first error encountered while iterating.
func (it *SetIter) Err() error {
	return it.err
}
