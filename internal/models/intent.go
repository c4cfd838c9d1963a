package models

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentStockPrice      Intent = "STOCK_PRICE"
	IntentMarketSummary   Intent = "MARKET_SUMMARY"
	IntentPortfolioView   Intent = "PORTFOLIO_VIEW"
	IntentFinancialAdvice Intent = "FINANCIAL_ADVICE"
	IntentGeneralQuestion Intent = "GENERAL_QUESTION"
	IntentGreeting        Intent = "GREETING"
	IntentGoodbye         Intent = "GOODBYE"
	IntentUnknown         Intent = "UNKNOWN"
)

// Classification is the outcome of intent scoring. MatchedPattern names the
// trigger pattern that produced the score, so every decision can be traced
// back to its rule.
type Classification struct {
	Intent         Intent  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	MatchedPattern string  `json:"matchedPattern,omitempty"`
}
