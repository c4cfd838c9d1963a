package models

// EntityType identifies the kind of financial entity found in a message.
type EntityType string

const (
	EntityTicker    EntityType = "TICKER"
	EntityCompany   EntityType = "COMPANY"
	EntityAmount    EntityType = "AMOUNT"
	EntityDateRange EntityType = "DATE_RANGE"
	EntityPercent   EntityType = "PERCENT"
)

// Priority returns the claim priority used when two entity candidates
// overlap in the source text. Lower value wins.
func (t EntityType) Priority() int {
	switch t {
	case EntityTicker:
		return 0
	case EntityCompany:
		return 1
	case EntityAmount:
		return 2
	case EntityDateRange:
		return 3
	case EntityPercent:
		return 4
	default:
		return 5
	}
}

// Entity is a typed, located piece of information extracted from a message.
// Start and End are byte offsets into the source text; Value holds the
// normalized form (e.g. the ticker symbol for a company name match).
type Entity struct {
	Type       EntityType `json:"type"`
	Text       string     `json:"text"`
	Value      string     `json:"value"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Confidence float64    `json:"confidence"`
}

// Overlaps reports whether two entities claim intersecting spans.
func (e Entity) Overlaps(other Entity) bool {
	return e.Start < other.End && other.Start < e.End
}
