// Package calls decides whether a message record represents a voice or video
// call event and normalizes it, whether it came from an inline message row or
// a callsHistory row.
package calls

import (
	"strings"

	"github.com/leorami/signal-export/internal/models"
)

// callPhrases is deliberately limited to call-specific wording. The bare word
// "call" inside ordinary prose ("thanks for calling earlier") must not match.
var callPhrases = []string{
	"incoming call", "outgoing call", "missed call",
	"incoming voice call", "outgoing voice call", "missed voice call",
	"incoming video call", "outgoing video call", "missed video call",
	"voice call", "video call",
}

// exactBodies are whole-body matches accepted after trimming and folding.
var exactBodies = map[string]bool{
	"call":  true,
	"audio": true,
	"video": true,
}

// Classify inspects a message's structured type tag and free-text body.
// Returns nil when the message is not a call event. Missed status forces the
// direction to incoming regardless of the outgoing flag.
func Classify(rawType, body string, outgoing bool) *models.CallEvent {
	t := strings.ToLower(strings.TrimSpace(rawType))
	lb := strings.ToLower(strings.TrimSpace(body))

	isCall := strings.Contains(t, "call")
	if !isCall {
		for _, p := range callPhrases {
			if strings.Contains(lb, p) {
				isCall = true
				break
			}
		}
	}
	if !isCall {
		isCall = exactBodies[lb]
	}
	if !isCall {
		return nil
	}

	ev := &models.CallEvent{
		Outgoing: outgoing,
		Video:    strings.Contains(t, "video") || strings.Contains(lb, "video"),
		Missed:   strings.Contains(t, "miss") || strings.Contains(lb, "miss"),
	}
	if ev.Missed {
		ev.Outgoing = false
	}
	return ev
}

// ClassifyHistory normalizes a callsHistory type/direction/status column,
// whose vocabulary is looser than message types. The second result is false
// when the value names a call but encodes no direction at all.
func ClassifyHistory(rawType string) (models.CallEvent, bool) {
	t := strings.ToLower(rawType)
	ev := models.CallEvent{
		Video:    strings.Contains(t, "video"),
		Missed:   strings.Contains(t, "miss"),
		Outgoing: strings.Contains(t, "out") || strings.Contains(t, "placed"),
	}
	switch {
	case ev.Missed:
		ev.Outgoing = false
		return ev, true
	case ev.Outgoing:
		return ev, true
	case strings.Contains(t, "in") || strings.Contains(t, "received"):
		return ev, true
	}
	return ev, false
}
