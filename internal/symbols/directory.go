// Package symbols holds the known-symbol and company name reference data
// consulted during entity extraction. The directory is built once at
// startup and treated as read-only afterwards, so it is safe to share
// across concurrent turns without locking.
package symbols

import "strings"

// Directory maps ticker symbols to company names and lowercased company
// names to their ticker.
type Directory struct {
	tickers         map[string]string
	companies       map[string]string
	maxCompanyWords int
}

// NewDirectory builds a directory from a symbol→company map. Company names
// are indexed lowercased so lookups are case-insensitive.
func NewDirectory(entries map[string]string) *Directory {
	d := &Directory{
		tickers:   make(map[string]string, len(entries)),
		companies: make(map[string]string, len(entries)),
	}
	for symbol, company := range entries {
		d.add(symbol, company)
	}
	return d
}

func (d *Directory) add(symbol, company string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}
	d.tickers[symbol] = company
	name := strings.ToLower(strings.TrimSpace(company))
	if name == "" {
		return
	}
	d.companies[name] = symbol
	if words := len(strings.Fields(name)); words > d.maxCompanyWords {
		d.maxCompanyWords = words
	}
}

// AddAlias registers an extra company-name spelling for an existing symbol.
func (d *Directory) AddAlias(symbol, alias string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	alias = strings.ToLower(strings.TrimSpace(alias))
	if symbol == "" || alias == "" {
		return
	}
	d.companies[alias] = symbol
	if words := len(strings.Fields(alias)); words > d.maxCompanyWords {
		d.maxCompanyWords = words
	}
}

// LookupTicker returns the company name for a known symbol.
func (d *Directory) LookupTicker(symbol string) (string, bool) {
	company, ok := d.tickers[strings.ToUpper(symbol)]
	return company, ok
}

// LookupCompany returns the ticker for a known company name or alias.
func (d *Directory) LookupCompany(name string) (string, bool) {
	symbol, ok := d.companies[strings.ToLower(strings.TrimSpace(name))]
	return symbol, ok
}

// MaxCompanyWords is the longest company name in the directory, in words.
// The extractor uses it to bound its longest-match window.
func (d *Directory) MaxCompanyWords() int {
	return d.maxCompanyWords
}

// Size returns the number of known symbols.
func (d *Directory) Size() int {
	return len(d.tickers)
}

// NewStatic returns the built-in seed directory. It covers the symbols the
// stub market data uses plus the most commonly asked large caps.
func NewStatic() *Directory {
	d := NewDirectory(map[string]string{
		"AAPL":  "Apple",
		"MSFT":  "Microsoft",
		"AMZN":  "Amazon",
		"GOOGL": "Google",
		"TSLA":  "Tesla",
		"META":  "Meta",
		"NVDA":  "Nvidia",
		"NFLX":  "Netflix",
		"JPM":   "JPMorgan Chase",
		"BRK.B": "Berkshire Hathaway",
		"V":     "Visa",
		"DIS":   "Disney",
	})
	d.AddAlias("GOOGL", "alphabet")
	d.AddAlias("META", "facebook")
	d.AddAlias("JPM", "jpmorgan")
	d.AddAlias("BRK.B", "berkshire")
	return d
}
