package identity

import (
	"strings"
	"testing"
)

func TestSafe(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Maya Rivera", "Maya Rivera"},
		{"hostile characters", `a/b\c:d*e?f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{"empty", "", "unknown"},
		{"whitespace only", "   ", "unknown"},
		{"trimmed", "  Maya  ", "Maya"},
		{"long input capped", strings.Repeat("x", 300), strings.Repeat("x", 120)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Safe(tt.in); got != tt.want {
				t.Errorf("Safe(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Maya Rivera", "Maya"},
		{"Maya·Rivera", "Maya"},
		{"Maya|Rivera", "Maya"},
		{"Maya , Rivera", "Maya"},
		{"Maya", "Maya"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FirstName(tt.in); got != tt.want {
			t.Errorf("FirstName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLooksUnknown(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Maya", false},
		{"", true},
		{"conv:abc123", true},
		{"+15551234567", true},
		{"+1 (555) 123-4567", true},
		{"9f3c2a1b-77aa-4f00-b1de-0123456789ab", true},
		{"deadbeefcafe", true},
		{"Bright Owls", false},
	}
	for _, tt := range tests {
		if got := LooksUnknown(tt.label); got != tt.want {
			t.Errorf("LooksUnknown(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestResolverLabels(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		conv Conversation
		want string
	}{
		{
			name: "explicit name wins, shortened for individuals",
			conv: Conversation{ID: "c1", Name: "Maya Rivera", ProfileFullName: "Other Name", Type: "private"},
			want: "Maya",
		},
		{
			name: "group keeps the full label",
			conv: Conversation{ID: "c2", Name: "Bright Owls", Type: "group"},
			want: "Bright Owls",
		},
		{
			name: "profile full name next",
			conv: Conversation{ID: "c3", ProfileFullName: "Noah Chen", Type: "private"},
			want: "Noah",
		},
		{
			name: "profile name next",
			conv: Conversation{ID: "c4", ProfileName: "Priya", Type: "private"},
			want: "Priya",
		},
		{
			name: "phone number when nothing readable",
			conv: Conversation{ID: "c5", E164: "+15551234567", Type: "private"},
			want: "+15551234567",
		},
		{
			name: "service id as last resort",
			conv: Conversation{ID: "c6", ServiceID: "9f3c2a1b-77aa", Type: "private"},
			want: "9f3c2a1b-77aa",
		},
		{
			name: "synthetic fallback",
			conv: Conversation{ID: "c7", Type: "private"},
			want: "conv:c7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Add(tt.conv); got != tt.want {
				t.Errorf("Add() = %q, want %q", got, tt.want)
			}
			if got := r.Label(tt.conv.ID); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}

	if !r.IsGroup("c2") {
		t.Error("c2 should be a group")
	}
	if r.IsGroup("c1") {
		t.Error("c1 should not be a group")
	}
	if got := r.Label("missing"); got != "conv:missing" {
		t.Errorf("Label(missing) = %q", got)
	}
}

func TestResolveSender(t *testing.T) {
	r := NewResolver()
	r.Add(Conversation{ID: "c1", Name: "Maya Rivera", E164: "+15551234567", ServiceID: "svc-maya", Type: "private"})

	tests := []struct {
		identifier string
		want       string
	}{
		{"svc-maya", "Maya"},
		{"+15551234567", "Maya"},
		{"", "other"},
		{"Unknown Person", "Unknown"},
		{"+19998887777", "+19998887777"},
	}
	for _, tt := range tests {
		if got := r.ResolveSender(tt.identifier); got != tt.want {
			t.Errorf("ResolveSender(%q) = %q, want %q", tt.identifier, got, tt.want)
		}
	}
}
