package finance

import (
	"context"
	"fmt"
	"strings"

	"finchat/internal/models"
)

// Stub is a deterministic in-process collaborator. It backs tests and local
// runs where no market data API is configured.
type Stub struct {
	// Prices overrides the built-in quote table per symbol.
	Prices map[string]float64
	// Err, when set, is returned by every Fetch call.
	Err error
}

var stubQuotes = map[string]Quote{
	"AAPL":  {Symbol: "AAPL", Price: 150.00, ChangePercent: 1.2},
	"MSFT":  {Symbol: "MSFT", Price: 378.50, ChangePercent: -0.4},
	"AMZN":  {Symbol: "AMZN", Price: 145.80, ChangePercent: 0.9},
	"GOOGL": {Symbol: "GOOGL", Price: 139.60, ChangePercent: 0.3},
	"TSLA":  {Symbol: "TSLA", Price: 248.40, ChangePercent: -2.1},
}

// Fetch returns canned data shaped like the live API responses.
func (s *Stub) Fetch(_ context.Context, intent models.Intent, slots map[string][]string) (*Result, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	switch intent {
	case models.IntentStockPrice:
		symbols := slots["ticker"]
		if len(symbols) == 0 {
			return nil, fmt.Errorf("%w: no symbols requested", ErrUnsupportedQuery)
		}
		quotes := make([]Quote, 0, len(symbols))
		for _, symbol := range symbols {
			symbol = strings.ToUpper(symbol)
			if q, ok := stubQuotes[symbol]; ok {
				if price, override := s.Prices[symbol]; override {
					q.Price = price
				}
				quotes = append(quotes, q)
				continue
			}
			price, ok := s.Prices[symbol]
			if !ok {
				price = 100.00
			}
			quotes = append(quotes, Quote{Symbol: symbol, Price: price})
		}
		return &Result{Quotes: quotes}, nil

	case models.IntentMarketSummary:
		return &Result{
			MarketStatus: "open",
			Indices: []Index{
				{Name: "S&P 500", Value: 5026.61, ChangePercent: 0.6},
				{Name: "Dow Jones", Value: 38671.69, ChangePercent: 0.3},
				{Name: "Nasdaq", Value: 15990.66, ChangePercent: 1.2},
			},
		}, nil

	case models.IntentPortfolioView:
		return &Result{
			Portfolio: &Portfolio{
				TotalValue:       52430.75,
				DayChangePercent: 0.8,
				Holdings: []Holding{
					{Symbol: "AAPL", Shares: 50, Value: 7500.00},
					{Symbol: "MSFT", Shares: 30, Value: 11355.00},
					{Symbol: "TSLA", Shares: 20, Value: 4968.00},
				},
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: intent %s has no data source", ErrUnsupportedQuery, intent)
	}
}
