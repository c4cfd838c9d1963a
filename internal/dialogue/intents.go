package dialogue

import "finchat/internal/models"

// slotSpec describes one named input an intent accepts. Accepts lists the
// entity types that can fill it, in preference order.
type slotSpec struct {
	Name       string
	Accepts    []models.EntityType
	Required   bool
	MultiValue bool
	Prompt     string
}

// intentSpec describes how the manager handles a resolved intent: the slot
// frame it collects and whether acting on it needs the market data
// collaborator.
type intentSpec struct {
	Slots     []slotSpec
	NeedsData bool
}

// intentSpecs is the dialogue policy table. Intents absent from the table
// (GREETING, GOODBYE, GENERAL_QUESTION, FINANCIAL_ADVICE) collect no slots
// and respond locally.
var intentSpecs = map[models.Intent]intentSpec{
	models.IntentStockPrice: {
		Slots: []slotSpec{
			{
				Name:       "ticker",
				Accepts:    []models.EntityType{models.EntityTicker, models.EntityCompany},
				Required:   true,
				MultiValue: true,
				Prompt:     "Which stock are you asking about?",
			},
		},
		NeedsData: true,
	},
	models.IntentMarketSummary: {
		Slots: []slotSpec{
			{
				Name:    "range",
				Accepts: []models.EntityType{models.EntityDateRange},
			},
		},
		NeedsData: true,
	},
	models.IntentPortfolioView: {
		NeedsData: true,
	},
}

func specFor(intent models.Intent) intentSpec {
	return intentSpecs[intent]
}

// accepts reports whether the slot can be filled by the given entity type.
func (s slotSpec) accepts(t models.EntityType) bool {
	for _, a := range s.Accepts {
		if a == t {
			return true
		}
	}
	return false
}

// acceptsAny reports whether any slot of the intent can take one of the
// extracted entities. Used to decide if a low-confidence turn is a
// follow-up slot answer.
func acceptsAny(intent models.Intent, entities []models.Entity) bool {
	spec := specFor(intent)
	for _, slot := range spec.Slots {
		for _, e := range entities {
			if slot.accepts(e.Type) {
				return true
			}
		}
	}
	return false
}
