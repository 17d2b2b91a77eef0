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
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// StatusDeleted marks records removed from a repository (2.5.1).
const StatusDeleted = "deleted"

// Delete policies a repository may announce in Identify.
const (
	DeletePolicyNo         = "no"
	DeletePolicyTransient  = "transient"
	DeletePolicyPersistent = "persistent"
)

// Payload is a verbatim slice of a response, e.g. the metadata of a record.
// Interpretation is up to the caller.
type Payload struct {
	Verbatim string `xml:",innerxml"`
}

func (p Payload) String() string {
	return p.Verbatim
}

// MarshalJSON renders the fragment as a string.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Verbatim)
}

// Header carries identity, datestamp and set membership of an item. It is
// the unit of ListIdentifiers responses and part of every record.
type Header struct {
	Identifier string    `xml:"identifier" json:"identifier"`
	Datestamp  Datestamp `xml:"datestamp" json:"datestamp"`
	SetSpecs   []string  `xml:"setSpec" json:"sets,omitempty"`
	Status     string    `xml:"status,attr" json:"status,omitempty"`
}

// Deleted returns true, if the repository marked the item as deleted.
func (h Header) Deleted() bool {
	return h.Status == StatusDeleted
}

// Record combines a header with the requested metadata. For deleted records
// Metadata and About are empty, whatever the repository sent along. Raw
// still carries the verbatim transcript.
type Record struct {
	Header   Header    `xml:"header" json:"header"`
	Metadata Payload   `xml:"metadata" json:"metadata,omitempty"`
	About    []Payload `xml:"about" json:"about,omitempty"`
	Raw      string    `xml:",innerxml" json:"-"`
}

func (r *Record) suppress() {
	if r.Header.Deleted() {
		r.Metadata = Payload{}
		r.About = nil
	}
}

// Set describes one entry of the set hierarchy.
type Set struct {
	Spec        string  `xml:"setSpec" json:"spec"`
	Name        string  `xml:"setName" json:"name,omitempty"`
	Description Payload `xml:"setDescription" json:"description,omitempty"`
}

// MetadataFormat describes one format a repository can disseminate.
type MetadataFormat struct {
	Prefix    string `xml:"metadataPrefix" json:"prefix"`
	Schema    string `xml:"schema" json:"schema,omitempty"`
	Namespace string `xml:"metadataNamespace" json:"namespace,omitempty"`
}

// ResumptionToken is part of OAI flow control (3.5). An empty Value on a
// partial list marks the last page.
type ResumptionToken struct {
	Value string `xml:",chardata" json:"value,omitempty"`
	// A UTCdatetime indicating when the token ceases to be valid.
	ExpirationDate Datestamp `xml:"expirationDate,attr" json:"expirationDate,omitempty"`
	// A count of the number of elements of the complete list thus far
	// returned (i.e. cursor starts at 0). Kept as a string, since some
	// repositories send malformed numbers.
	Cursor string `xml:"cursor,attr" json:"cursor,omitempty"`
	// An integer indicating the cardinality of the complete list. The
	// value may be only an estimate and may be revised during the list
	// request sequence.
	CompleteListSize string `xml:"completeListSize,attr" json:"size,omitempty"`
}

// Identify is the self description of a repository.
type Identify struct {
	Name              string        `xml:"repositoryName" json:"name,omitempty"`
	URL               string        `xml:"baseURL" json:"url,omitempty"`
	Version           string        `xml:"protocolVersion" json:"version,omitempty"`
	AdminEmails       []string      `xml:"adminEmail" json:"emails,omitempty"`
	EarliestDatestamp Datestamp     `xml:"earliestDatestamp" json:"earliest,omitempty"`
	DeletePolicy      string        `xml:"deletedRecord" json:"delete,omitempty"`
	Granularity       string        `xml:"granularity" json:"granularity,omitempty"`
	Compression       []string      `xml:"compression" json:"compression,omitempty"`
	Descriptions      []Description `xml:"description" json:"descriptions,omitempty"`
}

// DatestampGranularity parses the announced granularity. Repositories
// announcing nothing or something unknown report auto.
func (id Identify) DatestampGranularity() Granularity {
	return ParseGranularity(id.Granularity)
}

// Description is an open container in Identify. The common oai-identifier
// and friends parts are mapped, everything else is available verbatim.
type Description struct {
	Friends    []string `xml:"friends>baseURL" json:"friends,omitempty"`
	Identifier struct {
		Scheme               string `xml:"scheme" json:"scheme,omitempty"`
		RepositoryIdentifier string `xml:"repositoryIdentifier" json:"repositoryIdentifier,omitempty"`
		Delimiter            string `xml:"delimiter" json:"delimiter,omitempty"`
		SampleIdentifier     string `xml:"sampleIdentifier" json:"sampleIdentifier,omitempty"`
	} `xml:"oai-identifier" json:"identifier,omitempty"`
	Verbatim string `xml:",innerxml" json:"-"`
}

// ListMetadataFormats response.
type ListMetadataFormats struct {
	Formats []MetadataFormat `xml:"metadataFormat" json:"formats,omitempty"`
}

// ListSets response.
type ListSets struct {
	Sets  []Set            `xml:"set" json:"sets,omitempty"`
	Token *ResumptionToken `xml:"resumptionToken" json:"token,omitempty"`
}

// ListIdentifiers response.
type ListIdentifiers struct {
	Headers []Header         `xml:"header" json:"headers,omitempty"`
	Token   *ResumptionToken `xml:"resumptionToken" json:"token,omitempty"`
}

// ListRecords response.
type ListRecords struct {
	Records []Record         `xml:"record" json:"records,omitempty"`
	Token   *ResumptionToken `xml:"resumptionToken" json:"token,omitempty"`
}

// GetRecord response.
type GetRecord struct {
	Record Record `xml:"record" json:"record"`
}

// Response is the envelope of a single reply (3.2). Exactly one of the verb
// sections is set on success. A nil token pointer means the section carried
// no resumptionToken element at all, which on a first page signals a
// complete list.
type Response struct {
	Date    Datestamp `xml:"responseDate" json:"responseDate,omitempty"`
	Request struct {
		Verb     string `xml:"verb,attr" json:"verb,omitempty"`
		Endpoint string `xml:",chardata" json:"endpoint,omitempty"`
	} `xml:"request" json:"request,omitempty"`
	Errors []struct {
		Code    string `xml:"code,attr"`
		Message string `xml:",chardata"`
	} `xml:"error" json:"-"`
	Identify            *Identify            `xml:"Identify" json:"identify,omitempty"`
	ListMetadataFormats *ListMetadataFormats `xml:"ListMetadataFormats" json:"listMetadataFormats,omitempty"`
	ListSets            *ListSets            `xml:"ListSets" json:"listSets,omitempty"`
	ListIdentifiers     *ListIdentifiers     `xml:"ListIdentifiers" json:"listIdentifiers,omitempty"`
	ListRecords         *ListRecords         `xml:"ListRecords" json:"listRecords,omitempty"`
	GetRecord           *GetRecord           `xml:"GetRecord" json:"getRecord,omitempty"`
}

// token returns the resumption token of the list section, nil if none.
func (resp *Response) token() *ResumptionToken {
	switch {
	case resp.ListSets != nil:
		return resp.ListSets.Token
	case resp.ListIdentifiers != nil:
		return resp.ListIdentifiers.Token
	case resp.ListRecords != nil:
		return resp.ListRecords.Token
	}
	return nil
}

// checkSection verifies the element matching the verb arrived. Repositories
// occasionally answer with an HTML error page and status 200, which would
// otherwise decode into an empty envelope.
func (resp *Response) checkSection(verb string) error {
	var ok bool
	switch verb {
	case "Identify":
		ok = resp.Identify != nil
	case "ListMetadataFormats":
		ok = resp.ListMetadataFormats != nil
	case "ListSets":
		ok = resp.ListSets != nil
	case "ListIdentifiers":
		ok = resp.ListIdentifiers != nil
	case "ListRecords":
		ok = resp.ListRecords != nil
	case "GetRecord":
		ok = resp.GetRecord != nil
	default:
		return nil
	}
	if !ok {
		return ParseError{Verb: verb, Err: fmt.Errorf("missing %s element", verb)}
	}
	return nil
}

func (resp *Response) suppressDeleted() {
	if resp.ListRecords != nil {
		for i := range resp.ListRecords.Records {
			resp.ListRecords.Records[i].suppress()
		}
	}
	if resp.GetRecord != nil {
		resp.GetRecord.Record.suppress()
	}
}

// decode parses a single response body for the given verb. An error in the
// envelope comes back as OAIError, the first code wins. Bodies without the
// section for the verb come back as ParseError.
func decode(r io.Reader, verb string) (*Response, error) {
	var resp Response
	if err := xml.NewDecoder(r).Decode(&resp); err != nil {
		return nil, ParseError{Verb: verb, Err: err}
	}
	if len(resp.Errors) > 0 {
		e := resp.Errors[0]
		return nil, OAIError{Code: e.Code, Message: strings.TrimSpace(e.Message)}
	}
	if err := resp.checkSection(verb); err != nil {
		return nil, err
	}
	resp.suppressDeleted()
	// Some repositories pad the token with whitespace, which must not end
	// up in the next request.
	if t := resp.token(); t != nil {
		t.Value = strings.TrimSpace(t.Value)
	}
	return &resp, nil
}
