package models

// ContextVersion guards the serialized context shape; bump on breaking
// changes so stale Redis entries are discarded instead of misread.
const ContextVersion = 1

// SlotState tracks how a slot value arrived in the frame.
type SlotState string

const (
	SlotUnfilled SlotState = "unfilled"
	SlotFilled   SlotState = "filled"
	SlotCarried  SlotState = "carried"
)

// Slot is a named, typed input required (or optionally accepted) by an
// intent. Alternates holds extra same-type entities for intents that allow
// multi-value slots, preserved in textual order.
type Slot struct {
	Name       string    `json:"name"`
	State      SlotState `json:"state"`
	Entity     *Entity   `json:"entity,omitempty"`
	Alternates []Entity  `json:"alternates,omitempty"`
}

// Filled reports whether the slot carries a usable value.
func (s Slot) Filled() bool {
	return s.State != SlotUnfilled && s.Entity != nil
}

// Values returns the normalized slot values, primary first.
func (s Slot) Values() []string {
	if s.Entity == nil {
		return nil
	}
	out := []string{s.Entity.Value}
	for _, alt := range s.Alternates {
		out = append(out, alt.Value)
	}
	return out
}

// ConversationContext is the carried-over state scoping a multi-turn
// exchange. It is owned by the dialogue manager for the duration of a turn
// and persisted by the surrounding service between turns; the engine never
// holds it across calls.
type ConversationContext struct {
	Version      int             `json:"version"`
	LastIntent   Intent          `json:"lastIntent"`
	Slots        map[string]Slot `json:"slots,omitempty"`
	AwaitingSlot string          `json:"awaitingSlot,omitempty"`
	Turn         int             `json:"turn"`
	History      []Entity        `json:"history,omitempty"`
}

// NewConversationContext returns the empty default context used for the
// first turn of a conversation.
func NewConversationContext() *ConversationContext {
	return &ConversationContext{
		Version: ContextVersion,
		Slots:   make(map[string]Slot),
	}
}

// Clone deep-copies the context so a turn can build its result without
// mutating the caller's copy.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return NewConversationContext()
	}
	out := &ConversationContext{
		Version:      c.Version,
		LastIntent:   c.LastIntent,
		AwaitingSlot: c.AwaitingSlot,
		Turn:         c.Turn,
		Slots:        make(map[string]Slot, len(c.Slots)),
	}
	for name, slot := range c.Slots {
		copied := slot
		if slot.Entity != nil {
			ent := *slot.Entity
			copied.Entity = &ent
		}
		if len(slot.Alternates) > 0 {
			copied.Alternates = append([]Entity(nil), slot.Alternates...)
		}
		out.Slots[name] = copied
	}
	if len(c.History) > 0 {
		out.History = append([]Entity(nil), c.History...)
	}
	return out
}

// RememberEntities appends entities to the bounded history ring, evicting
// the oldest entries once bound is exceeded.
func (c *ConversationContext) RememberEntities(entities []Entity, bound int) {
	if bound <= 0 {
		return
	}
	c.History = append(c.History, entities...)
	if excess := len(c.History) - bound; excess > 0 {
		c.History = append([]Entity(nil), c.History[excess:]...)
	}
}
