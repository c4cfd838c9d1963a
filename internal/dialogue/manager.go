// Package dialogue is the turn engine: it wires entity extraction, intent
// classification, slot filling and response composition into a single
// ProcessTurn call. A turn never mutates the caller's context; the updated
// copy travels out on the TurnResult for the caller to persist.
package dialogue

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finchat/internal/finance"
	"finchat/internal/models"
)

// DefaultEntityHistorySize bounds the per-conversation entity history.
const DefaultEntityHistorySize = 5

// EntityExtractor finds typed entities in raw message text.
type EntityExtractor interface {
	Extract(text string) []models.Entity
}

// IntentClassifier scores message text plus entities into an intent.
type IntentClassifier interface {
	Classify(text string, entities []models.Entity) models.Classification
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Config carries the dialogue tunables.
type Config struct {
	EntityHistorySize int
}

// Manager runs turns. It holds no per-conversation state, so one instance
// serves all conversations concurrently.
type Manager struct {
	extractor  EntityExtractor
	classifier IntentClassifier
	data       finance.Collaborator
	cfg        Config
	logger     Logger
}

func NewManager(extractor EntityExtractor, classifier IntentClassifier, data finance.Collaborator, cfg Config, log Logger) *Manager {
	if cfg.EntityHistorySize <= 0 {
		cfg.EntityHistorySize = DefaultEntityHistorySize
	}
	return &Manager{
		extractor:  extractor,
		classifier: classifier,
		data:       data,
		cfg:        cfg,
		logger: log.With(map[string]interface{}{
			"component": "dialogue-manager",
		}),
	}
}

// ProcessTurn runs one utterance against the prior context and returns the
// complete turn outcome. The prior context is never mutated; calling twice
// with the same inputs yields an identical result, turn id included.
func (m *Manager) ProcessTurn(ctx context.Context, utterance models.Utterance, prior *models.ConversationContext) *models.TurnResult {
	next := prior.Clone()
	if next.Version != models.ContextVersion {
		next = models.NewConversationContext()
	}

	entities := m.extractor.Extract(utterance.Text)
	cls := m.classifier.Classify(utterance.Text, entities)

	intent := cls.Intent
	confidence := cls.Confidence
	continuation := false

	switch {
	case intent == models.IntentUnknown:
		// a low-confidence turn that carries an entity the previous
		// intent can use is a follow-up answer, not a new request
		if next.LastIntent != "" && acceptsAny(next.LastIntent, entities) {
			intent = next.LastIntent
			continuation = true
			confidence = maxEntityConfidence(entities)
		}
	case intent == next.LastIntent:
		continuation = true
	default:
		// a new intent pre-empts whatever frame was pending
		next.Slots = make(map[string]models.Slot)
		next.AwaitingSlot = ""
	}

	result := &models.TurnResult{
		TurnID:     newTurnID(utterance.ConversationID, next.Turn, utterance.Text),
		Intent:     intent,
		Confidence: confidence,
		Entities:   entities,
		Context:    next,
	}

	if intent == models.IntentUnknown {
		m.finishTurn(next, entities)
		if next.AwaitingSlot != "" {
			// still waiting on the earlier question; ask again
			result.State = models.StateAwaitingSlot
			result.Slots = next.Slots
			result.Response = promptFor(next.LastIntent, next.AwaitingSlot)
		} else {
			// the exchange is over; a later bare entity must not
			// resurrect it as a follow-up
			next.LastIntent = models.IntentUnknown
			next.Slots = make(map[string]models.Slot)
			result.State = models.StateFailed
			result.Response = fallbackResponse
		}
		m.logTurn(utterance, result)
		return result
	}

	spec := specFor(intent)
	frame := fillSlots(spec, next.Slots, entities, continuation)
	next.Slots = frame
	next.LastIntent = intent
	result.Slots = frame

	if missing := firstMissingSlot(spec, frame); missing != nil {
		next.AwaitingSlot = missing.Name
		m.finishTurn(next, entities)
		result.State = models.StateAwaitingSlot
		result.Response = missing.Prompt
		m.logTurn(utterance, result)
		return result
	}
	next.AwaitingSlot = ""

	if spec.NeedsData {
		data, err := m.data.Fetch(ctx, intent, slotValues(frame))
		if err != nil {
			m.logger.Warn("data fetch failed, responding degraded", map[string]interface{}{
				"conversationId": utterance.ConversationID,
				"intent":         string(intent),
				"error":          err.Error(),
			})
			result.State = models.StateReadyToAct
			result.DataUnavailable = true
			result.Response = degradedResponse
		} else {
			result.State = models.StateReadyToAct
			result.Response = composeDataResponse(intent, data)
		}
	} else {
		result.State = models.StateReadyToAct
		result.Response = composeLocalResponse(intent, utterance.Text)
	}

	m.finishTurn(next, entities)
	m.logTurn(utterance, result)
	return result
}

// newTurnID derives a stable v5 UUID from the turn inputs, so replaying the
// same utterance against the same context yields an identical result.
func newTurnID(conversationID string, turn int, text string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d/%s", conversationID, turn, text))).String()
}

// finishTurn applies the per-turn context bookkeeping.
func (m *Manager) finishTurn(next *models.ConversationContext, entities []models.Entity) {
	next.Turn++
	next.RememberEntities(entities, m.cfg.EntityHistorySize)
}

func (m *Manager) logTurn(utterance models.Utterance, result *models.TurnResult) {
	m.logger.Info("turn processed", map[string]interface{}{
		"conversationId": utterance.ConversationID,
		"turnId":         result.TurnID,
		"intent":         string(result.Intent),
		"confidence":     result.Confidence,
		"state":          string(result.State),
		"entityCount":    len(result.Entities),
		"degraded":       result.DataUnavailable,
	})
}

// fillSlots builds the turn's slot frame: fresh entities first, carried
// prior values second. Fresh values always replace carried ones.
func fillSlots(spec intentSpec, prior map[string]models.Slot, entities []models.Entity, continuation bool) map[string]models.Slot {
	frame := make(map[string]models.Slot, len(spec.Slots))
	claimed := make([]bool, len(entities))

	for _, ss := range spec.Slots {
		slot := models.Slot{Name: ss.Name, State: models.SlotUnfilled}

		picked := pickEntities(ss, entities, claimed)
		if len(picked) > 0 {
			primary := picked[0]
			slot.State = models.SlotFilled
			slot.Entity = &primary
			if len(picked) > 1 {
				slot.Alternates = picked[1:]
			}
		} else if continuation {
			if p, ok := prior[ss.Name]; ok && p.Filled() {
				slot = p
				slot.State = models.SlotCarried
			}
		}

		frame[ss.Name] = slot
	}
	return frame
}

// pickEntities claims the entities that fill one slot. Multi-value slots
// take every accepted entity in textual order; single-value slots take the
// first match in type preference order. Duplicate normalized values are
// collapsed.
func pickEntities(ss slotSpec, entities []models.Entity, claimed []bool) []models.Entity {
	var picked []models.Entity
	seen := make(map[string]bool)

	if ss.MultiValue {
		for i, e := range entities {
			if claimed[i] || !ss.accepts(e.Type) || seen[e.Value] {
				continue
			}
			claimed[i] = true
			seen[e.Value] = true
			picked = append(picked, e)
		}
		return picked
	}

	for _, accept := range ss.Accepts {
		for i, e := range entities {
			if claimed[i] || e.Type != accept {
				continue
			}
			claimed[i] = true
			return []models.Entity{e}
		}
	}
	return nil
}

func firstMissingSlot(spec intentSpec, frame map[string]models.Slot) *slotSpec {
	for i, ss := range spec.Slots {
		if !ss.Required {
			continue
		}
		if slot, ok := frame[ss.Name]; !ok || !slot.Filled() {
			return &spec.Slots[i]
		}
	}
	return nil
}

func promptFor(intent models.Intent, slotName string) string {
	for _, ss := range specFor(intent).Slots {
		if ss.Name == slotName {
			return ss.Prompt
		}
	}
	return fallbackResponse
}

func slotValues(frame map[string]models.Slot) map[string][]string {
	out := make(map[string][]string, len(frame))
	for name, slot := range frame {
		if slot.Filled() {
			out[name] = slot.Values()
		}
	}
	return out
}

func maxEntityConfidence(entities []models.Entity) float64 {
	best := 0.0
	for _, e := range entities {
		if e.Confidence > best {
			best = e.Confidence
		}
	}
	return best
}
