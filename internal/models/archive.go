package models

// Thread is one conversation in the archive, ordered for rendering.
// Field names follow the JSON layout the renderer consumes.
type Thread struct {
	Label           string    `json:"thread"`
	Unknown         bool      `json:"unknown"`
	Avatar          string    `json:"avatar"`
	AvatarEncrypted bool      `json:"avatarEncrypted"`
	Messages        []Message `json:"messages"`
}

type Message struct {
	ID     string       `json:"-"`
	TS     int64        `json:"ts"`
	Sender string       `json:"sender"`
	Out    bool         `json:"out"`
	Body   string       `json:"body"`
	Atts   []Attachment `json:"atts"`
	Group  bool         `json:"group"`
	Kind   string       `json:"kind,omitempty"`
	Video  bool         `json:"video"`
	Missed bool         `json:"missed"`
}

// Attachment is the resolved form of one attachment record. Path is empty when
// the source blob could not be copied at all. When decryption succeeded, Path
// points at the decrypted file and OriginalPath at the verbatim copy.
type Attachment struct {
	Name            string `json:"name"`
	Path            string `json:"path"`
	MIME            string `json:"mime"`
	Icon            string `json:"icon"`
	LikelyEncrypted bool   `json:"likelyEncrypted"`
	OriginalPath    string `json:"originalPath,omitempty"`
}

// CallEvent is the normalized shape shared by inline call messages and
// callsHistory rows.
type CallEvent struct {
	Outgoing bool
	Video    bool
	Missed   bool
}

// Phrase returns the canonical display text for the event. A missed call is
// never rendered as outgoing.
func (e CallEvent) Phrase() string {
	dir := "Incoming"
	switch {
	case e.Missed:
		dir = "Missed"
	case e.Outgoing:
		dir = "Outgoing"
	}
	media := "voice"
	if e.Video {
		media = "video"
	}
	return dir + " " + media + " call"
}

// AuditRecord is one line of the decrypt-assets audit log.
type AuditRecord struct {
	Run           string `json:"run"`
	Path          string `json:"path"`
	Encrypted     bool   `json:"encrypted"`
	Mode          string `json:"mode,omitempty"`
	DecryptedPath string `json:"decryptedPath,omitempty"`
	MIME          string `json:"mime"`
	Error         string `json:"error,omitempty"`
}

type ArchiveStats struct {
	Threads        int `json:"threads"`
	Messages       int `json:"messages"`
	Attachments    int `json:"attachments"`
	Calls          int `json:"calls"`
	StillEncrypted int `json:"still_encrypted"`
	Unknown        int `json:"unknown_threads"`
	WithAvatar     int `json:"threads_with_avatar"`
}
