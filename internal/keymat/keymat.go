// Package keymat recovers symmetric key material from the loosely-structured
// places Signal Desktop stores it: attachment columns and conversation JSON
// blobs whose field names drift across schema versions.
package keymat

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// KeySize is the AES-256 key length every candidate is normalized to.
const KeySize = 32

// decode tries base64 first (with zero, one and two trailing pad characters,
// since stored values often have padding stripped), then hex.
func decode(s string) []byte {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, pad := range []string{"", "=", "=="} {
		if b, err := base64.StdEncoding.DecodeString(s + pad); err == nil && len(b) > 0 {
			return b
		}
	}
	if b, err := hex.DecodeString(s); err == nil && len(b) > 0 {
		return b
	}
	return nil
}

// ExtractKey returns the first candidate that decodes to at least KeySize
// bytes, truncated to exactly KeySize. Candidates are tried in priority
// order; nil when none qualifies.
func ExtractKey(candidates ...string) []byte {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if b := decode(s); len(b) >= KeySize {
			return b[:KeySize]
		}
	}
	return nil
}

// AvatarInfo is what can be pulled out of a conversation's JSON column: a
// relative path into the attachment store plus up to two key candidates.
type AvatarInfo struct {
	Path string
	Key1 string
	Key2 string
}

// Known container keys and field aliases, in lookup order. No schema version
// populates all of them; whichever appears first wins its slot.
var (
	containerKeys = []string{"profileAvatarPath", "avatarPath", "profileAvatar"}
	pathFields    = []string{"path", "avatarPath", "filePath"}
	keyFields     = []string{"localKey", "key", "profileKey", "attachmentKey", "keyMaterial"}
)

// ParseAvatarJSON extracts avatar path and key material from a conversation
// JSON blob. Each known container may hold either a bare path string or a
// nested object with aliased path/key fields. Malformed or absent JSON is not
// an error: the result is simply empty.
func ParseAvatarJSON(raw string) AvatarInfo {
	var info AvatarInfo
	if strings.TrimSpace(raw) == "" {
		return info
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return info
	}
	for _, ck := range containerKeys {
		switch v := obj[ck].(type) {
		case string:
			if info.Path == "" {
				info.Path = v
			}
		case map[string]any:
			for _, f := range pathFields {
				if s, ok := v[f].(string); ok && info.Path == "" {
					info.Path = s
				}
			}
			for _, f := range keyFields {
				s, ok := v[f].(string)
				if !ok || s == "" {
					continue
				}
				switch {
				case info.Key1 == "":
					info.Key1 = s
				case info.Key2 == "" && s != info.Key1:
					info.Key2 = s
				}
			}
		}
	}
	return info
}
