// Package extractor scans raw message text for financial entities: ticker
// symbols, company names, monetary amounts, date ranges and percentages.
// Extraction is pure and deterministic; the same text always yields the
// same ordered, non-overlapping entity sequence.
package extractor

import (
	"sort"
	"strings"
	"unicode"

	"finchat/internal/models"
)

// FallbackTickerConfidence tags syntactic ticker matches that are not in
// the known-symbol directory.
const FallbackTickerConfidence = 0.6

// Lookup is the read-only reference-data view the extractor consults.
// *symbols.Directory satisfies it.
type Lookup interface {
	LookupTicker(symbol string) (string, bool)
	LookupCompany(name string) (string, bool)
	MaxCompanyWords() int
}

// Extractor finds entities by lookup and pattern matching. It holds only
// immutable reference data, so one instance serves all turns concurrently.
type Extractor struct {
	dir Lookup
}

func New(dir Lookup) *Extractor {
	return &Extractor{dir: dir}
}

type token struct {
	text  string
	start int
	end   int
}

// tokenize splits text into alphanumeric tokens, keeping dots and
// apostrophes only between alphanumerics (BRK.B, 4200.50) and recording
// byte offsets.
func tokenize(text string) []token {
	var out []token
	runes := []rune(text)
	// byte offset of each rune, plus the terminating offset
	offsets := make([]int, len(runes)+1)
	pos := 0
	for i, r := range runes {
		offsets[i] = pos
		pos += len(string(r))
	}
	offsets[len(runes)] = pos

	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

	i := 0
	for i < len(runes) {
		if !isWord(runes[i]) {
			i++
			continue
		}
		j := i
		for j < len(runes) {
			r := runes[j]
			if isWord(r) {
				j++
				continue
			}
			// keep internal joiners between alphanumerics
			if (r == '.' || r == '\'') && j+1 < len(runes) && isWord(runes[j+1]) {
				j++
				continue
			}
			break
		}
		out = append(out, token{
			text:  string(runes[i:j]),
			start: offsets[i],
			end:   offsets[j],
		})
		i = j
	}
	return out
}

// Extract returns all entities found in text, ordered by start offset with
// non-overlapping spans. Overlap conflicts are resolved by entity-type
// priority (TICKER > COMPANY > AMOUNT > DATE_RANGE > PERCENT); among
// company candidates the longest span wins, then the earliest.
func (e *Extractor) Extract(text string) []models.Entity {
	if strings.TrimSpace(text) == "" {
		return []models.Entity{}
	}

	tokens := tokenize(text)

	var candidates []models.Entity
	candidates = append(candidates, e.tickerCandidates(tokens)...)
	candidates = append(candidates, e.companyCandidates(text, tokens)...)
	candidates = append(candidates, amountCandidates(text)...)
	candidates = append(candidates, dateRangeCandidates(text)...)
	candidates = append(candidates, percentCandidates(text)...)

	return resolveOverlaps(candidates)
}

func (e *Extractor) tickerCandidates(tokens []token) []models.Entity {
	var out []models.Entity
	for _, tok := range tokens {
		upper := strings.ToUpper(tok.text)

		// Directory match is case-insensitive, but single-letter symbols
		// must appear uppercase in the source to count; otherwise every
		// stray "v" becomes Visa.
		if _, ok := e.dir.LookupTicker(upper); ok && (len(tok.text) > 1 || tok.text == upper) {
			out = append(out, models.Entity{
				Type:       models.EntityTicker,
				Text:       tok.text,
				Value:      upper,
				Start:      tok.start,
				End:        tok.end,
				Confidence: 1.0,
			})
			continue
		}

		if fallbackTickerPattern.MatchString(tok.text) && !tickerStopwords[upper] {
			out = append(out, models.Entity{
				Type:       models.EntityTicker,
				Text:       tok.text,
				Value:      upper,
				Start:      tok.start,
				End:        tok.end,
				Confidence: FallbackTickerConfidence,
			})
		}
	}
	return out
}

func (e *Extractor) companyCandidates(text string, tokens []token) []models.Entity {
	maxWords := e.dir.MaxCompanyWords()
	if maxWords == 0 {
		return nil
	}

	var out []models.Entity
	for width := maxWords; width >= 1; width-- {
		for i := 0; i+width <= len(tokens); i++ {
			first, last := tokens[i], tokens[i+width-1]
			phrase := strings.ToLower(text[first.start:last.end])
			symbol, ok := e.dir.LookupCompany(phrase)
			if !ok {
				continue
			}
			out = append(out, models.Entity{
				Type:       models.EntityCompany,
				Text:       text[first.start:last.end],
				Value:      symbol,
				Start:      first.start,
				End:        last.end,
				Confidence: 1.0,
			})
		}
	}
	return out
}

func amountCandidates(text string) []models.Entity {
	var out []models.Entity
	for _, span := range amountPattern.FindAllStringIndex(text, -1) {
		surface := text[span[0]:span[1]]
		out = append(out, models.Entity{
			Type:       models.EntityAmount,
			Text:       surface,
			Value:      normalizeNumber(surface),
			Start:      span[0],
			End:        span[1],
			Confidence: 1.0,
		})
	}
	return out
}

func percentCandidates(text string) []models.Entity {
	var out []models.Entity
	for _, span := range percentPattern.FindAllStringIndex(text, -1) {
		surface := text[span[0]:span[1]]
		out = append(out, models.Entity{
			Type:       models.EntityPercent,
			Text:       surface,
			Value:      normalizeNumber(surface),
			Start:      span[0],
			End:        span[1],
			Confidence: 1.0,
		})
	}
	return out
}

func dateRangeCandidates(text string) []models.Entity {
	var out []models.Entity

	for _, span := range isoDatePattern.FindAllStringIndex(text, -1) {
		out = append(out, models.Entity{
			Type:       models.EntityDateRange,
			Text:       text[span[0]:span[1]],
			Value:      text[span[0]:span[1]],
			Start:      span[0],
			End:        span[1],
			Confidence: 1.0,
		})
	}

	for _, m := range relativeDaysPattern.FindAllStringSubmatchIndex(text, -1) {
		surface := text[m[0]:m[1]]
		days := text[m[2]:m[3]]
		out = append(out, models.Entity{
			Type:       models.EntityDateRange,
			Text:       surface,
			Value:      "last_" + days + "_days",
			Start:      m[0],
			End:        m[1],
			Confidence: 1.0,
		})
	}

	for _, span := range datePhrasePattern.FindAllStringIndex(text, -1) {
		surface := text[span[0]:span[1]]
		normalized := strings.Join(strings.Fields(strings.ToLower(surface)), "_")
		if normalized == "ytd" {
			normalized = "year_to_date"
		}
		out = append(out, models.Entity{
			Type:       models.EntityDateRange,
			Text:       surface,
			Value:      normalized,
			Start:      span[0],
			End:        span[1],
			Confidence: 1.0,
		})
	}

	return out
}

func normalizeNumber(surface string) string {
	cleaned := strings.ReplaceAll(surface, ",", "")
	return digitsOnly.FindString(cleaned)
}

// resolveOverlaps greedily claims spans in priority order: entity type
// first, then longer spans, then earlier ones. A span claimed by one type
// can never be claimed again.
func resolveOverlaps(candidates []models.Entity) []models.Entity {
	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if pa, pb := ca.Type.Priority(), cb.Type.Priority(); pa != pb {
			return pa < pb
		}
		if la, lb := ca.End-ca.Start, cb.End-cb.Start; la != lb {
			return la > lb
		}
		return ca.Start < cb.Start
	})

	claimed := make([]models.Entity, 0, len(candidates))
	for _, cand := range candidates {
		conflict := false
		for _, kept := range claimed {
			if cand.Overlaps(kept) {
				conflict = true
				break
			}
		}
		if !conflict {
			claimed = append(claimed, cand)
		}
	}

	sort.Slice(claimed, func(a, b int) bool { return claimed[a].Start < claimed[b].Start })
	return claimed
}
