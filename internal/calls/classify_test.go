package calls

import (
	"testing"

	"github.com/leorami/signal-export/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		rawType  string
		body     string
		outgoing bool
		want     *models.CallEvent
	}{
		{
			name:    "call-history type incoming voice",
			rawType: "call-history",
			body:    "Incoming voice call",
			want:    &models.CallEvent{Outgoing: false, Video: false, Missed: false},
		},
		{
			name:     "call-history type outgoing voice",
			rawType:  "call-history",
			body:     "Outgoing voice call",
			outgoing: true,
			want:     &models.CallEvent{Outgoing: true},
		},
		{
			name:     "missed video overrides outgoing flag",
			rawType:  "",
			body:     "Missed video call",
			outgoing: true,
			want:     &models.CallEvent{Outgoing: false, Video: true, Missed: true},
		},
		{
			name:    "prose mentioning a call is not an event",
			rawType: "incoming",
			body:    "Thanks for calling earlier",
			want:    nil,
		},
		{
			name:    "plain text message",
			rawType: "incoming",
			body:    "see you tomorrow",
			want:    nil,
		},
		{
			name:    "exact body call",
			rawType: "incoming",
			body:    "  Call  ",
			want:    &models.CallEvent{},
		},
		{
			name:    "exact body video",
			rawType: "incoming",
			body:    "video",
			want:    &models.CallEvent{Video: true},
		},
		{
			name:    "video call phrase in body",
			rawType: "incoming",
			body:    "Incoming video call",
			want:    &models.CallEvent{Video: true},
		},
		{
			name:     "type token alone suffices",
			rawType:  "outgoing-video-call",
			body:     "",
			outgoing: true,
			want:     &models.CallEvent{Outgoing: true, Video: true},
		},
		{
			name:    "empty everything",
			rawType: "",
			body:    "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.rawType, tt.body, tt.outgoing)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Classify() = %+v, want %+v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPhrase(t *testing.T) {
	tests := []struct {
		ev   models.CallEvent
		want string
	}{
		{models.CallEvent{}, "Incoming voice call"},
		{models.CallEvent{Video: true}, "Incoming video call"},
		{models.CallEvent{Outgoing: true}, "Outgoing voice call"},
		{models.CallEvent{Outgoing: true, Video: true}, "Outgoing video call"},
		{models.CallEvent{Missed: true}, "Missed voice call"},
		{models.CallEvent{Missed: true, Video: true}, "Missed video call"},
		// Missed wins even if the direction flag survived somehow.
		{models.CallEvent{Missed: true, Outgoing: true}, "Missed voice call"},
	}
	for _, tt := range tests {
		if got := tt.ev.Phrase(); got != tt.want {
			t.Errorf("Phrase(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestClassifyHistory(t *testing.T) {
	tests := []struct {
		rawType  string
		want     models.CallEvent
		directed bool
	}{
		{"Outgoing", models.CallEvent{Outgoing: true}, true},
		{"placed-video", models.CallEvent{Outgoing: true, Video: true}, true},
		{"Missed", models.CallEvent{Missed: true}, true},
		{"missed-outgoing", models.CallEvent{Missed: true}, true},
		{"Incoming", models.CallEvent{}, true},
		{"received-video", models.CallEvent{Video: true}, true},
		{"Call", models.CallEvent{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.rawType, func(t *testing.T) {
			got, directed := ClassifyHistory(tt.rawType)
			if got != tt.want || directed != tt.directed {
				t.Errorf("ClassifyHistory(%q) = %+v, %v; want %+v, %v",
					tt.rawType, got, directed, tt.want, tt.directed)
			}
		})
	}
}
