package dialogue

import (
	"fmt"
	"strings"

	"finchat/internal/finance"
	"finchat/internal/models"
)

const (
	fallbackResponse = "I didn't understand that. Could you rephrase?"
	degradedResponse = "I couldn't retrieve live data right now. Please try again shortly."
	greetingResponse = "Hello! I can help with stock prices, market summaries, your portfolio, and general financial questions."
	goodbyeResponse  = "Goodbye! Happy investing."

	adviceDisclaimer = "This is general information, not personalized financial advice."
)

// adviceTopics maps trigger words in the message to canned guidance. The
// first matching topic wins; order matters.
var adviceTopics = []struct {
	triggers []string
	text     string
}{
	{
		triggers: []string{"retire", "retirement"},
		text:     "For retirement, a common approach is steady contributions to tax-advantaged accounts and a diversified mix that gets more conservative as you approach your target date.",
	},
	{
		triggers: []string{"beginner", "start", "starting", "new"},
		text:     "A common starting point is low-cost index funds, an emergency fund covering a few months of expenses, and investing only money you won't need soon.",
	},
	{
		triggers: []string{"dividend", "dividends"},
		text:     "Dividend investing focuses on companies with a history of stable payouts. Look at payout ratios and dividend growth, not just the headline yield.",
	},
	{
		triggers: []string{"diversify", "diversification"},
		text:     "Diversification means spreading investments across asset classes and sectors so a single position can't sink the whole portfolio.",
	},
}

const adviceGeneral = "A sound general strategy is to diversify, keep costs low, and invest for the long term rather than timing the market."

// glossary backs GENERAL_QUESTION with short educational answers.
var glossary = []struct {
	triggers []string
	text     string
}{
	{
		triggers: []string{"dividend"},
		text:     "A dividend is a portion of a company's earnings paid out to shareholders, usually quarterly.",
	},
	{
		triggers: []string{"etf"},
		text:     "An ETF is an exchange-traded fund: a basket of securities that trades on an exchange like a single stock.",
	},
	{
		triggers: []string{"bond"},
		text:     "A bond is a loan to a company or government that pays interest and returns the principal at maturity.",
	},
	{
		triggers: []string{"stock", "share", "shares"},
		text:     "A stock is a share of ownership in a company. Its price reflects what buyers and sellers currently agree it is worth.",
	},
	{
		triggers: []string{"index"},
		text:     "A market index tracks a group of stocks, like the S&P 500, to summarize how a slice of the market is doing.",
	},
}

const glossaryFallback = "That's a broad question. I can explain terms like dividends, ETFs, bonds and indexes, or look up prices and market data for you."

// composeDataResponse renders the collaborator result for the intent.
func composeDataResponse(intent models.Intent, result *finance.Result) string {
	switch intent {
	case models.IntentStockPrice:
		parts := make([]string, 0, len(result.Quotes))
		for _, q := range result.Quotes {
			parts = append(parts, fmt.Sprintf("%s is trading at $%.2f.", q.Symbol, q.Price))
		}
		if len(parts) == 0 {
			return degradedResponse
		}
		return strings.Join(parts, " ")

	case models.IntentMarketSummary:
		parts := make([]string, 0, len(result.Indices))
		for _, idx := range result.Indices {
			parts = append(parts, fmt.Sprintf("%s at %.2f (%s)", idx.Name, idx.Value, formatChange(idx.ChangePercent)))
		}
		status := result.MarketStatus
		if status == "" {
			status = "unknown"
		}
		return fmt.Sprintf("Markets are %s. %s.", status, strings.Join(parts, ", "))

	case models.IntentPortfolioView:
		p := result.Portfolio
		if p == nil {
			return degradedResponse
		}
		direction := "up"
		change := p.DayChangePercent
		if change < 0 {
			direction = "down"
			change = -change
		}
		return fmt.Sprintf("Your portfolio is worth $%.2f, %s %.2f%% today across %d holdings.",
			p.TotalValue, direction, change, len(p.Holdings))

	default:
		return degradedResponse
	}
}

func formatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// composeLocalResponse handles intents answered without external data.
func composeLocalResponse(intent models.Intent, text string) string {
	switch intent {
	case models.IntentGreeting:
		return greetingResponse
	case models.IntentGoodbye:
		return goodbyeResponse
	case models.IntentFinancialAdvice:
		return composeAdvice(text)
	case models.IntentGeneralQuestion:
		return composeDefinition(text)
	default:
		return fallbackResponse
	}
}

func composeAdvice(text string) string {
	lower := strings.ToLower(text)
	for _, topic := range adviceTopics {
		for _, trigger := range topic.triggers {
			if strings.Contains(lower, trigger) {
				return topic.text + " " + adviceDisclaimer
			}
		}
	}
	return adviceGeneral + " " + adviceDisclaimer
}

func composeDefinition(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range glossary {
		for _, trigger := range entry.triggers {
			if strings.Contains(lower, trigger) {
				return entry.text
			}
		}
	}
	return glossaryFallback
}
