package oaih

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOpen(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestDecodeIdentify(t *testing.T) {
	resp, err := decode(mustOpen(t, "identify.xml"), "Identify")
	require.NoError(t, err)
	require.NotNil(t, resp.Identify)

	id := resp.Identify
	assert.Equal(t, "Library of Congress Open Archive Initiative Repository 1", id.Name)
	assert.Equal(t, "http://memory.loc.gov/cgi-bin/oai", id.URL)
	assert.Equal(t, "2.0", id.Version)
	assert.Equal(t, []string{"somebody@loc.gov", "anybody@loc.gov"}, id.AdminEmails)
	assert.Equal(t, DeletePolicyTransient, id.DeletePolicy)
	assert.Equal(t, GranularitySeconds, id.DatestampGranularity())
	assert.Equal(t, []string{"deflate"}, id.Compression)
	assert.Equal(t, "1990-02-01T12:00:00Z", id.EarliestDatestamp.String())

	require.Len(t, id.Descriptions, 2)
	assert.Equal(t, "oai", id.Descriptions[0].Identifier.Scheme)
	assert.Equal(t, "lcoa1.loc.gov", id.Descriptions[0].Identifier.RepositoryIdentifier)
	assert.Equal(t, []string{"http://oai.east.org/foo/", "http://oai.hq.org/bar/"}, id.Descriptions[1].Friends)

	assert.Equal(t, "Identify", resp.Request.Verb)
	assert.Equal(t, "2024-03-05T15:00:00Z", resp.Date.String())
}

func TestDecodeListRecords(t *testing.T) {
	resp, err := decode(mustOpen(t, "list_records.xml"), "ListRecords")
	require.NoError(t, err)
	require.NotNil(t, resp.ListRecords)
	require.Len(t, resp.ListRecords.Records, 2)

	active := resp.ListRecords.Records[0]
	assert.Equal(t, "oai:example.com:1", active.Header.Identifier)
	assert.Equal(t, "2024-01-05", active.Header.Datestamp.String())
	assert.Equal(t, []string{"physics", "physics:hep"}, active.Header.SetSpecs)
	assert.False(t, active.Header.Deleted())
	assert.Contains(t, active.Metadata.Verbatim, "On Something")
	require.Len(t, active.About, 1)
	assert.Contains(t, active.About[0].Verbatim, "originDescription")

	deleted := resp.ListRecords.Records[1]
	assert.True(t, deleted.Header.Deleted())
	assert.Equal(t, StatusDeleted, deleted.Header.Status)
	assert.Empty(t, deleted.Metadata.Verbatim)
	assert.Empty(t, deleted.About)
	assert.Contains(t, deleted.Raw, "Should Be Ignored")

	token := resp.ListRecords.Token
	require.NotNil(t, token)
	assert.Equal(t, "token123", token.Value)
	assert.Equal(t, "6", token.CompleteListSize)
	assert.Equal(t, "0", token.Cursor)
	assert.Equal(t, "2024-03-06T15:00:00Z", token.ExpirationDate.String())
}

func TestDecodeGetRecord(t *testing.T) {
	resp, err := decode(mustOpen(t, "get_record.xml"), "GetRecord")
	require.NoError(t, err)
	require.NotNil(t, resp.GetRecord)

	r := resp.GetRecord.Record
	assert.Equal(t, "oai:arXiv.org:quant-ph/9901001", r.Header.Identifier)
	assert.Equal(t, []string{"physics:quant-ph"}, r.Header.SetSpecs)
	assert.Contains(t, r.Metadata.Verbatim, "Quantum Computing")
}

func TestDecodeListMetadataFormats(t *testing.T) {
	resp, err := decode(mustOpen(t, "list_formats.xml"), "ListMetadataFormats")
	require.NoError(t, err)
	require.NotNil(t, resp.ListMetadataFormats)

	formats := resp.ListMetadataFormats.Formats
	require.Len(t, formats, 2)
	assert.Equal(t, "oai_dc", formats[0].Prefix)
	assert.Equal(t, "http://www.openarchives.org/OAI/2.0/oai_dc.xsd", formats[0].Schema)
	assert.Equal(t, "http://www.openarchives.org/OAI/2.0/oai_dc/", formats[0].Namespace)
	assert.Equal(t, "marcxml", formats[1].Prefix)
}

func TestDecodeListSets(t *testing.T) {
	resp, err := decode(mustOpen(t, "list_sets.xml"), "ListSets")
	require.NoError(t, err)
	require.NotNil(t, resp.ListSets)

	sets := resp.ListSets.Sets
	require.Len(t, sets, 2)
	assert.Equal(t, "music", sets[0].Spec)
	assert.Equal(t, "Music collection", sets[0].Name)
	assert.Contains(t, sets[0].Description.Verbatim, "audio recordings")
	assert.Equal(t, "music:(elec)", sets[1].Spec)
	assert.Nil(t, resp.ListSets.Token)
}

func TestDecodeErrorEnvelope(t *testing.T) {
	_, err := decode(mustOpen(t, "error.xml"), "ListRecords")
	require.Error(t, err)

	var oaiErr OAIError
	require.True(t, errors.As(err, &oaiErr))
	assert.Equal(t, "badArgument", oaiErr.Code)
	assert.Equal(t, "Illegal date format", oaiErr.Message)
	assert.True(t, errors.Is(err, ErrBadArgument))
	// The first code wins, the second error element is dropped.
	assert.False(t, errors.Is(err, ErrBadVerb))
}

func TestDecodeUnknownErrorCode(t *testing.T) {
	body := `<OAI-PMH><responseDate>2024-01-01</responseDate><error code="serverBusy">retry</error></OAI-PMH>`
	_, err := decode(strings.NewReader(body), "Identify")
	require.Error(t, err)

	var oaiErr OAIError
	require.True(t, errors.As(err, &oaiErr))
	assert.Equal(t, "serverBusy", oaiErr.Code)
	for _, kind := range errorKinds {
		assert.False(t, errors.Is(err, kind))
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := decode(strings.NewReader("<html><body>gateway error"), "Identify")
	require.Error(t, err)

	var perr ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Identify", perr.Verb)
}

func TestDecodeMissingSection(t *testing.T) {
	// Well formed, but not an answer to the verb that was sent.
	body := `<OAI-PMH><responseDate>2024-01-01</responseDate><Identify><repositoryName>X</repositoryName></Identify></OAI-PMH>`
	_, err := decode(strings.NewReader(body), "GetRecord")
	require.Error(t, err)

	var perr ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "GetRecord", perr.Verb)
	assert.Contains(t, perr.Error(), "missing GetRecord element")
}

func TestDecodeTokenTriState(t *testing.T) {
	body := `<OAI-PMH><ListSets><set><setSpec>a</setSpec><setName>A</setName></set></ListSets></OAI-PMH>`
	resp, err := decode(strings.NewReader(body), "ListSets")
	require.NoError(t, err)
	assert.Nil(t, resp.ListSets.Token)

	body = `<OAI-PMH><ListSets><set><setSpec>a</setSpec></set><resumptionToken/></ListSets></OAI-PMH>`
	resp, err = decode(strings.NewReader(body), "ListSets")
	require.NoError(t, err)
	require.NotNil(t, resp.ListSets.Token)
	assert.Equal(t, "", resp.ListSets.Token.Value)

	body = `<OAI-PMH><ListSets><set><setSpec>a</setSpec></set><resumptionToken>
	  abc
	</resumptionToken></ListSets></OAI-PMH>`
	resp, err = decode(strings.NewReader(body), "ListSets")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.ListSets.Token.Value)
}

func TestDecodeBrokenDatestamp(t *testing.T) {
	body := `<OAI-PMH><ListIdentifiers><header><identifier>x</identifier><datestamp>23rd of May</datestamp></header></ListIdentifiers></OAI-PMH>`
	resp, err := decode(strings.NewReader(body), "ListIdentifiers")
	require.NoError(t, err)
	require.Len(t, resp.ListIdentifiers.Headers, 1)

	d := resp.ListIdentifiers.Headers[0].Datestamp
	assert.True(t, d.Time.IsZero())
	assert.Equal(t, "23rd of May", d.Raw)
	assert.Equal(t, "23rd of May", d.String())
}
