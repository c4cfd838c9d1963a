package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// esSymbolDoc is the document shape of the symbols index.
type esSymbolDoc struct {
	Symbol  string   `json:"symbol"`
	Company string   `json:"company"`
	Aliases []string `json:"aliases,omitempty"`
}

// LoadFromElasticsearch hydrates a directory from the given index. The
// index is reference data that changes rarely; a single bounded search at
// startup is sufficient, no scrolling.
func LoadFromElasticsearch(ctx context.Context, es *elasticsearch.Client, index string, maxDocs int) (*Directory, error) {
	if maxDocs <= 0 {
		maxDocs = 1000
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithSize(maxDocs),
		es.Search.WithBody(strings.NewReader(`{"query":{"match_all":{}}}`)),
	)
	if err != nil {
		return nil, fmt.Errorf("symbols search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("symbols search error: %s", res.Status())
	}

	var body struct {
		Hits struct {
			Hits []struct {
				Source esSymbolDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode symbols response: %w", err)
	}

	d := NewDirectory(nil)
	for _, hit := range body.Hits.Hits {
		doc := hit.Source
		if doc.Symbol == "" {
			continue
		}
		d.add(doc.Symbol, doc.Company)
		for _, alias := range doc.Aliases {
			d.AddAlias(doc.Symbol, alias)
		}
	}

	if d.Size() == 0 {
		return nil, fmt.Errorf("symbols index %q returned no documents", index)
	}
	return d, nil
}
