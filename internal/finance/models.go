// Package finance provides the market data collaborator consulted when a
// resolved intent needs external data. The dialogue manager only depends on
// the Collaborator interface; failures are surfaced as typed errors so the
// engine can degrade instead of aborting the turn.
package finance

import (
	"context"

	"finchat/internal/models"
)

// Quote is a single-symbol price snapshot.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// Index is a market index snapshot.
type Index struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	ChangePercent float64 `json:"changePercent"`
}

// Holding is one position in the demo portfolio.
type Holding struct {
	Symbol string  `json:"symbol"`
	Shares float64 `json:"shares"`
	Value  float64 `json:"value"`
}

// Portfolio is the aggregate account view.
type Portfolio struct {
	TotalValue       float64   `json:"totalValue"`
	DayChangePercent float64   `json:"dayChangePercent"`
	Holdings         []Holding `json:"holdings,omitempty"`
}

// Result carries whatever data the intent asked for; unrelated fields stay
// zero.
type Result struct {
	Quotes       []Quote    `json:"quotes,omitempty"`
	Indices      []Index    `json:"indices,omitempty"`
	MarketStatus string     `json:"marketStatus,omitempty"`
	Portfolio    *Portfolio `json:"portfolio,omitempty"`
}

// Collaborator fetches the external data an intent needs. Slots carry the
// normalized slot values collected by the dialogue manager, keyed by slot
// name.
type Collaborator interface {
	Fetch(ctx context.Context, intent models.Intent, slots map[string][]string) (*Result, error)
}
