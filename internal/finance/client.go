package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"finchat/internal/models"
)

var (
	ErrDataFetchFailed  = errors.New("DATA_FETCH_FAILED")
	ErrDataFetchTimeout = errors.New("DATA_FETCH_TIMEOUT")
	ErrUnsupportedQuery = errors.New("UNSUPPORTED_QUERY")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Config holds the market data API connection settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the HTTP market data collaborator.
type Client struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewClient(config *Config, log Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"component": "finance-client",
		}),
	}
}

// Fetch retrieves the data the intent needs. Unsupported intents fail fast
// with ErrUnsupportedQuery; transient API failures are retried with
// exponential backoff inside the configured timeout.
func (c *Client) Fetch(ctx context.Context, intent models.Intent, slots map[string][]string) (*Result, error) {
	path, params, schema, err := requestFor(intent, slots)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	payload, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if err := validatePayload(schema, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataFetchFailed, err)
	}

	var result Result
	raw, _ := json.Marshal(payload)
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrDataFetchFailed, err)
	}

	c.logger.Info("market data fetched", map[string]interface{}{
		"intent":     string(intent),
		"path":       path,
		"quoteCount": len(result.Quotes),
	})

	return &result, nil
}

func requestFor(intent models.Intent, slots map[string][]string) (string, url.Values, map[string]interface{}, error) {
	params := url.Values{}

	switch intent {
	case models.IntentStockPrice:
		symbols := slots["ticker"]
		if len(symbols) == 0 {
			return "", nil, nil, fmt.Errorf("%w: no symbols requested", ErrUnsupportedQuery)
		}
		params.Set("symbols", strings.Join(symbols, ","))
		return "/api/v1/quotes", params, quotesSchema, nil

	case models.IntentMarketSummary:
		if ranges := slots["range"]; len(ranges) > 0 {
			params.Set("range", ranges[0])
		}
		return "/api/v1/market/summary", params, summarySchema, nil

	case models.IntentPortfolioView:
		return "/api/v1/portfolio", params, portfolioSchema, nil

	default:
		return "", nil, nil, fmt.Errorf("%w: intent %s has no data source", ErrUnsupportedQuery, intent)
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (map[string]interface{}, error) {
	endpoint := c.config.BaseURL + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {

		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrDataFetchTimeout
			}
		}

		resp, lastErr = c.client.Do(req)

		// if the context expired during the request, report timeout
		// immediately instead of burning the remaining retries
		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {

			return nil, ErrDataFetchTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrDataFetchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrDataFetchFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrDataFetchFailed)
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrDataFetchFailed, err)
	}
	return payload, nil
}

// validatePayload checks the API response against the expected shape before
// it is trusted by the response composer.
func validatePayload(schema map[string]interface{}, payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("invalid payload: %s", strings.Join(details, "; "))
	}
	return nil
}

var quotesSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"quotes"},
	"properties": map[string]interface{}{
		"quotes": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"symbol", "price"},
				"properties": map[string]interface{}{
					"symbol":        map[string]interface{}{"type": "string"},
					"price":         map[string]interface{}{"type": "number"},
					"changePercent": map[string]interface{}{"type": "number"},
				},
			},
		},
	},
}

var summarySchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"marketStatus", "indices"},
	"properties": map[string]interface{}{
		"marketStatus": map[string]interface{}{"type": "string"},
		"indices": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"name", "value"},
				"properties": map[string]interface{}{
					"name":          map[string]interface{}{"type": "string"},
					"value":         map[string]interface{}{"type": "number"},
					"changePercent": map[string]interface{}{"type": "number"},
				},
			},
		},
	},
}

var portfolioSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"portfolio"},
	"properties": map[string]interface{}{
		"portfolio": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"totalValue"},
			"properties": map[string]interface{}{
				"totalValue":       map[string]interface{}{"type": "number"},
				"dayChangePercent": map[string]interface{}{"type": "number"},
				"holdings":         map[string]interface{}{"type": "array"},
			},
		},
	},
}
