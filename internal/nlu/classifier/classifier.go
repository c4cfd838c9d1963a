// Package classifier maps normalized message text plus extracted entities
// to an intent with a confidence score. It is a deterministic rule engine,
// not a trained model: every decision is traceable to the pattern that
// produced it.
package classifier

import (
	"strings"
	"unicode"

	"finchat/internal/models"
)

const (
	// DefaultThreshold is the minimum confidence below which the intent
	// resolves to UNKNOWN regardless of the raw score.
	DefaultThreshold = 0.3

	// DefaultEntityBonus is added when an intent's expected entity type is
	// present in the extracted entities.
	DefaultEntityBonus = 0.25
)

// Config carries the product-tunable scoring knobs.
type Config struct {
	Threshold   float64
	EntityBonus float64
}

// Classifier scores messages against an ordered rule table. The table is
// immutable after construction, so one instance serves all turns.
type Classifier struct {
	rules     []Rule
	threshold float64
	bonus     float64
}

// New builds a classifier over the default rule table.
func New(cfg Config) *Classifier {
	return NewWithRules(DefaultRules(), cfg)
}

// NewWithRules builds a classifier over a caller-supplied table. Rule order
// is the tie-break priority.
func NewWithRules(rules []Rule, cfg Config) *Classifier {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.EntityBonus <= 0 {
		cfg.EntityBonus = DefaultEntityBonus
	}
	return &Classifier{rules: rules, threshold: cfg.Threshold, bonus: cfg.EntityBonus}
}

// Threshold returns the configured minimum confidence.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify scores text plus entities against every rule and returns the
// best intent. Exact ties keep the earlier rule. A best score below the
// threshold resolves to UNKNOWN while preserving the raw confidence and
// matched pattern for traceability.
func (c *Classifier) Classify(text string, entities []models.Entity) models.Classification {
	norm := normalize(text)

	best := models.Classification{Intent: models.IntentUnknown}
	for _, rule := range c.rules {
		pattern := matchPattern(norm, rule.Patterns)
		if pattern == "" {
			continue
		}

		score := rule.Weight
		if hasExpectedEntity(rule, entities) {
			score += c.bonus
		}
		if score > 1 {
			score = 1
		}

		if score > best.Confidence {
			best = models.Classification{
				Intent:         rule.Intent,
				Confidence:     score,
				MatchedPattern: pattern,
			}
		}
	}

	if best.Confidence < c.threshold {
		best.Intent = models.IntentUnknown
	}
	return best
}

// matchPattern returns the longest pattern found in the normalized text,
// or "" when none match.
func matchPattern(norm string, patterns []string) string {
	matched := ""
	for _, p := range patterns {
		if strings.Contains(norm, " "+p+" ") && len(p) > len(matched) {
			matched = p
		}
	}
	return matched
}

func hasExpectedEntity(rule Rule, entities []models.Entity) bool {
	if len(rule.ExpectedEntities) == 0 {
		return false
	}
	for _, want := range rule.ExpectedEntities {
		for _, e := range entities {
			if e.Type == want {
				return true
			}
		}
	}
	return false
}

// normalize case-folds and strips punctuation, returning the message as a
// space-padded token string so patterns match on word boundaries.
func normalize(text string) string {
	var b strings.Builder
	b.WriteByte(' ')
	inToken := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			inToken = true
			continue
		}
		if inToken {
			b.WriteByte(' ')
			inToken = false
		}
	}
	if inToken {
		b.WriteByte(' ')
	}
	return b.String()
}
