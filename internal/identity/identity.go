// Package identity derives stable, filesystem-safe display labels for
// conversations and resolves raw sender identifiers (phone numbers, service
// ids, free text) to those labels.
package identity

import (
	"regexp"
	"strings"
)

const (
	maxLabelLen   = 120
	fallbackLabel = "unknown"
)

var (
	unsafeChars    = regexp.MustCompile(`[/\\:*?"<>|]+`)
	nameSeparators = regexp.MustCompile(`[\s·•|,]+`)
	phonePattern   = regexp.MustCompile(`^\+?\d[\d\s\-()]{3,}$`)
	hexIDPattern   = regexp.MustCompile(`^[0-9a-fA-F-]{8,}$`)
)

// Safe sanitizes a label for use as a path segment and lookup key: strips
// filesystem-hostile characters, caps the length, defaults on empty input.
func Safe(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackLabel
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	if r := []rune(name); len(r) > maxLabelLen {
		name = string(r[:maxLabelLen])
	}
	if name == "" {
		return fallbackLabel
	}
	return name
}

// FirstName extracts the leading token of a full label.
func FirstName(full string) string {
	full = strings.TrimSpace(full)
	if full == "" {
		return ""
	}
	parts := nameSeparators.Split(full, -1)
	for _, p := range parts {
		if p != "" {
			return p
		}
	}
	return full
}

// LooksUnknown reports whether a label is a machine identifier rather than a
// readable name: the synthetic conv fallback, a phone-number-like string, or
// a hex/uuid-like identifier.
func LooksUnknown(label string) bool {
	if label == "" || strings.HasPrefix(label, "conv:") {
		return true
	}
	if phonePattern.MatchString(label) {
		return true
	}
	return hexIDPattern.MatchString(label)
}

// Conversation carries the candidate display-name sources of one
// conversations row, priority ordered in the struct field order.
type Conversation struct {
	ID              string
	Name            string
	ProfileFullName string
	ProfileName     string
	E164            string
	ServiceID       string
	Type            string
}

// Resolver accumulates per-conversation display labels and forward indexes
// from phone/service identifiers to short names, so individual message
// senders resolve without re-deriving from the message's own fields.
type Resolver struct {
	names     map[string]string
	groups    map[string]bool
	byPhone   map[string]string
	byService map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{
		names:     make(map[string]string),
		groups:    make(map[string]bool),
		byPhone:   make(map[string]string),
		byService: make(map[string]string),
	}
}

// Add derives the display label for a conversation, records it, and returns
// it. Groups keep the raw label verbatim; individuals are shortened to the
// first name token.
func (r *Resolver) Add(c Conversation) string {
	raw := firstNonEmpty(c.Name, c.ProfileFullName, c.ProfileName, c.E164, c.ServiceID)
	if raw == "" {
		raw = "conv:" + c.ID
	}
	group := strings.HasPrefix(strings.ToLower(c.Type), "group")

	display := raw
	if !group {
		if fn := FirstName(raw); fn != "" {
			display = fn
		}
	}
	r.names[c.ID] = display
	r.groups[c.ID] = group

	short := FirstName(raw)
	if short == "" {
		short = display
	}
	if c.E164 != "" {
		r.byPhone[c.E164] = short
	}
	if c.ServiceID != "" {
		r.byService[c.ServiceID] = short
	}
	return display
}

// Label returns the recorded display label, or a synthetic fallback for a
// conversation never seen in the conversations table.
func (r *Resolver) Label(conversationID string) string {
	if name, ok := r.names[conversationID]; ok {
		return name
	}
	return "conv:" + conversationID
}

func (r *Resolver) IsGroup(conversationID string) bool {
	return r.groups[conversationID]
}

// ResolveSender maps a raw sender identifier to a short human label. Service
// ids are checked before phone numbers; an unindexed identifier falls back to
// its own first token.
func (r *Resolver) ResolveSender(identifier string) string {
	if identifier == "" {
		return "other"
	}
	if s, ok := r.byService[identifier]; ok {
		return s
	}
	if s, ok := r.byPhone[identifier]; ok {
		return s
	}
	if fn := FirstName(identifier); fn != "" {
		return fn
	}
	return identifier
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
