package oaih

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAboutEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("verb") {
		case "Identify":
			writeIdentify(w, r)
		case "ListMetadataFormats":
			fmt.Fprint(w, `<OAI-PMH><request verb="ListMetadataFormats">x</request><ListMetadataFormats><metadataFormat><metadataPrefix>oai_dc</metadataPrefix><schema>s</schema><metadataNamespace>n</metadataNamespace></metadataFormat></ListMetadataFormats></OAI-PMH>`)
		case "ListSets":
			fmt.Fprint(w, `<OAI-PMH><error code="noSetHierarchy">This repository does not support sets</error></OAI-PMH>`)
		}
	}))
	defer srv.Close()

	about, err := AboutEndpoint(srv.URL, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, about.Endpoint)
	require.NotNil(t, about.Identify)
	assert.Equal(t, "Test Repository", about.Identify.Name)
	require.Len(t, about.Formats, 1)
	assert.Equal(t, "oai_dc", about.Formats[0].Prefix)
	assert.Empty(t, about.Sets)
	require.Len(t, about.Errors, 1)
	assert.Contains(t, about.Errors[0], "ListSets")
	assert.Contains(t, about.Errors[0], "noSetHierarchy")
}

func TestAboutEndpointTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("verb") {
		case "ListSets":
			<-release
		default:
			writeIdentify(w, r)
		}
	}))
	defer srv.Close()
	defer close(release)

	about, err := AboutEndpoint(srv.URL, 500*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	// Whatever arrived before the deadline is kept.
	assert.Equal(t, srv.URL, about.Endpoint)
	assert.NotNil(t, about.Identify)
}
