package keymat

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
)

func TestExtractKey(t *testing.T) {
	key := bytes.Repeat([]byte{0xAB}, 32)
	long := bytes.Repeat([]byte{0xCD}, 48)

	tests := []struct {
		name       string
		candidates []string
		want       []byte
	}{
		{
			name:       "base64 32 bytes",
			candidates: []string{base64.StdEncoding.EncodeToString(key)},
			want:       key,
		},
		{
			name:       "base64 stripped padding",
			candidates: []string{strings.TrimRight(base64.StdEncoding.EncodeToString(key), "=")},
			want:       key,
		},
		{
			name:       "longer key truncated",
			candidates: []string{base64.StdEncoding.EncodeToString(long)},
			want:       long[:32],
		},
		{
			name:       "second candidate wins when first too short",
			candidates: []string{base64.StdEncoding.EncodeToString([]byte("short")), base64.StdEncoding.EncodeToString(key)},
			want:       key,
		},
		{
			name:       "empty candidates skipped",
			candidates: []string{"", base64.StdEncoding.EncodeToString(key)},
			want:       key,
		},
		{
			name:       "all too short",
			candidates: []string{"YWJj", hex.EncodeToString([]byte("tiny"))},
			want:       nil,
		},
		{
			name:       "garbage",
			candidates: []string{"!!not key material!!"},
			want:       nil,
		},
		{
			name:       "no candidates",
			candidates: nil,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKey(tt.candidates...)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ExtractKey() = %x, want %x", got, tt.want)
			}
			// Idempotent: same inputs, same output.
			if again := ExtractKey(tt.candidates...); !bytes.Equal(again, got) {
				t.Errorf("ExtractKey() not stable: %x then %x", got, again)
			}
		})
	}
}

func TestExtractKeyLength(t *testing.T) {
	if got := ExtractKey(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 40))); len(got) != KeySize {
		t.Errorf("key length = %d, want %d", len(got), KeySize)
	}
}

func TestParseAvatarJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AvatarInfo
	}{
		{
			name: "bare string container",
			raw:  `{"profileAvatarPath": "ab/abc123"}`,
			want: AvatarInfo{Path: "ab/abc123"},
		},
		{
			name: "secondary container name",
			raw:  `{"avatarPath": "cd/def456"}`,
			want: AvatarInfo{Path: "cd/def456"},
		},
		{
			name: "nested object with aliases",
			raw:  `{"profileAvatar": {"filePath": "ef/xyz", "localKey": "a2V5MQ==", "profileKey": "a2V5Mg=="}}`,
			want: AvatarInfo{Path: "ef/xyz", Key1: "a2V5MQ==", Key2: "a2V5Mg=="},
		},
		{
			name: "first container wins path",
			raw:  `{"profileAvatarPath": "first", "avatarPath": "second"}`,
			want: AvatarInfo{Path: "first"},
		},
		{
			name: "duplicate key values collapse",
			raw:  `{"profileAvatar": {"path": "p", "localKey": "same", "key": "same"}}`,
			want: AvatarInfo{Path: "p", Key1: "same"},
		},
		{
			name: "keys across containers",
			raw:  `{"avatarPath": {"path": "p", "key": "k1"}, "profileAvatar": {"attachmentKey": "k2"}}`,
			want: AvatarInfo{Path: "p", Key1: "k1", Key2: "k2"},
		},
		{
			name: "malformed json",
			raw:  `{"profileAvatarPath": `,
			want: AvatarInfo{},
		},
		{
			name: "empty input",
			raw:  "",
			want: AvatarInfo{},
		},
		{
			name: "non-string values ignored",
			raw:  `{"profileAvatarPath": 42, "profileAvatar": {"path": true}}`,
			want: AvatarInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAvatarJSON(tt.raw); got != tt.want {
				t.Errorf("ParseAvatarJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
