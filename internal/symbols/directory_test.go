package symbols

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Directory Tests
// ==========================

func TestDirectory_Lookups(t *testing.T) {
	d := NewStatic()

	tests := []struct {
		name     string
		lookup   func() (string, bool)
		expected string
		found    bool
	}{
		{"ticker exact", func() (string, bool) { return d.LookupTicker("AAPL") }, "Apple", true},
		{"ticker lowercase", func() (string, bool) { return d.LookupTicker("aapl") }, "Apple", true},
		{"dotted ticker", func() (string, bool) { return d.LookupTicker("BRK.B") }, "Berkshire Hathaway", true},
		{"unknown ticker", func() (string, bool) { return d.LookupTicker("ZZZZ") }, "", false},
		{"company lowercase", func() (string, bool) { return d.LookupCompany("apple") }, "AAPL", true},
		{"company mixed case", func() (string, bool) { return d.LookupCompany("JPMorgan Chase") }, "JPM", true},
		{"alias", func() (string, bool) { return d.LookupCompany("alphabet") }, "GOOGL", true},
		{"alias facebook", func() (string, bool) { return d.LookupCompany("facebook") }, "META", true},
		{"unknown company", func() (string, bool) { return d.LookupCompany("acme corp") }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.lookup()
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDirectory_MaxCompanyWords(t *testing.T) {
	d := NewDirectory(map[string]string{"AAPL": "Apple"})
	assert.Equal(t, 1, d.MaxCompanyWords())

	d.AddAlias("AAPL", "apple incorporated of cupertino")
	assert.Equal(t, 4, d.MaxCompanyWords())
}

func TestDirectory_EmptyEntriesIgnored(t *testing.T) {
	d := NewDirectory(map[string]string{
		"":     "Nameless",
		"TICK": "",
	})

	assert.Equal(t, 1, d.Size())
	_, ok := d.LookupTicker("TICK")
	assert.True(t, ok)
	_, ok = d.LookupCompany("")
	assert.False(t, ok)
}

// ==========================
// Elasticsearch Hydration Tests
// ==========================

func newESTestServer(t *testing.T, body string, status int) (*elasticsearch.Client, *httptest.Server) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	if err != nil {
		server.Close()
		t.Fatalf("failed to create es client: %v", err)
	}
	return client, server
}

func TestLoadFromElasticsearch(t *testing.T) {
	body := `{"hits":{"hits":[
		{"_source":{"symbol":"AAPL","company":"Apple","aliases":["apple inc"]}},
		{"_source":{"symbol":"MSFT","company":"Microsoft"}},
		{"_source":{"symbol":"","company":"Ghost"}}
	]}}`
	client, server := newESTestServer(t, body, http.StatusOK)
	defer server.Close()

	d, err := LoadFromElasticsearch(context.Background(), client, "symbols", 100)

	assert.NoError(t, err)
	assert.Equal(t, 2, d.Size())

	symbol, ok := d.LookupCompany("apple inc")
	assert.True(t, ok)
	assert.Equal(t, "AAPL", symbol)

	company, ok := d.LookupTicker("MSFT")
	assert.True(t, ok)
	assert.Equal(t, "Microsoft", company)
}

func TestLoadFromElasticsearch_EmptyIndex(t *testing.T) {
	client, server := newESTestServer(t, `{"hits":{"hits":[]}}`, http.StatusOK)
	defer server.Close()

	d, err := LoadFromElasticsearch(context.Background(), client, "symbols", 100)

	assert.Error(t, err)
	assert.Nil(t, d)
	assert.Contains(t, err.Error(), "no documents")
}

func TestLoadFromElasticsearch_SearchError(t *testing.T) {
	client, server := newESTestServer(t, `{"error":"index_not_found_exception"}`, http.StatusNotFound)
	defer server.Close()

	d, err := LoadFromElasticsearch(context.Background(), client, "missing", 100)

	assert.Error(t, err)
	assert.Nil(t, d)
}
