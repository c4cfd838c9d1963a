package extractor

import "regexp"

// All pattern matching is case-insensitive against the original text so
// byte offsets stay valid; lowercasing happens only on captured values.
var (
	// $150, $1,250.50, 150 dollars, 150.00 USD
	amountPattern = regexp.MustCompile(`(?i)\$\s?\d[\d,]*(?:\.\d+)?|\b\d[\d,]*(?:\.\d+)?\s?(?:dollars|usd|bucks)\b`)

	// 5%, 3.5 percent
	percentPattern = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:%|percent\b)`)

	// 2024-01-31
	isoDatePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

	// last 30 days, past 7 days
	relativeDaysPattern = regexp.MustCompile(`(?i)\b(?:last|past)\s+(\d+)\s+days?\b`)

	// today, yesterday, this week, last month, year to date, ...
	datePhrasePattern = regexp.MustCompile(`(?i)\b(?:today|yesterday|tomorrow|(?:this|last)\s+(?:week|month|quarter|year)|year\s+to\s+date|ytd)\b`)

	// syntactic ticker fallback: standalone 1-5 uppercase letters
	fallbackTickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

	digitsOnly = regexp.MustCompile(`[\d.]+`)
)

// Uppercase tokens that look like tickers but almost never are. A directory
// hit still wins over this list.
var tickerStopwords = map[string]bool{
	"A": true, "I": true, "OK": true, "US": true, "AM": true, "PM": true,
	"CEO": true, "CFO": true, "IPO": true, "ETF": true, "USD": true,
	"FAQ": true, "ASAP": true, "YTD": true,
}
