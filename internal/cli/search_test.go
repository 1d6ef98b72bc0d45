package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "index": "books",
  "mode": "and",
  "records": [{"id": "1", "score": 1.5, "fields": {"title": "Dune"}}],
  "pagination": {"total_entries": 3, "per_page": 1, "current_page": 1, "total_pages": 3, "next_page": 2}
}`

func newSearchServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		check(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchText(t *testing.T) {
	srv := newSearchServer(t, func(r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/indexes/books/search", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status_eq"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		assert.Equal(t, "title", r.URL.Query().Get("fields"))
	})

	buf := &bytes.Buffer{}
	cmd := NewSearchCommand(&RootOptions{Format: "text", Server: srv.URL})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"books", "status_eq=open", "--per-page", "1", "--fields", "title"})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "3 entries, page 1 of 3")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Dune")
}

func TestSearchJSONInput(t *testing.T) {
	srv := newSearchServer(t, func(r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"params":{"z_eq":"1","a_eq":"2"}}`, string(body))
	})

	buf := &bytes.Buffer{}
	cmd := NewSearchCommand(&RootOptions{Format: "json", Server: srv.URL})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"books", "--json", `{"z_eq":"1","a_eq":"2"}`})

	require.NoError(t, cmd.Execute())

	var got struct {
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Records, 1)
	assert.Equal(t, "1", got.Records[0].ID)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"index_not_found","message":"index not found"}`))
	}))
	defer srv.Close()

	cmd := NewSearchCommand(&RootOptions{Format: "text", Server: srv.URL})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"missing"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index not found")
}

func TestSearchRequiresIndex(t *testing.T) {
	cmd := NewSearchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
