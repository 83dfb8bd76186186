// Package exporter drives the whole archive pipeline: it walks the source
// database once, resolves identities, classifies call events, copies and
// best-effort-decrypts attachment blobs, and emits ordered threads for the
// rendering stage.
package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/leorami/signal-export/internal/calls"
	"github.com/leorami/signal-export/internal/crypt"
	"github.com/leorami/signal-export/internal/identity"
	"github.com/leorami/signal-export/internal/models"
	"github.com/leorami/signal-export/internal/storage"
)

// Options configures one export run.
type Options struct {
	DBPath    string
	SourceDir string
	OutDir    string
	OpenSSL   string

	// Provider overrides the openssl subprocess, mainly for tests.
	Provider crypt.Provider
	// Log receives per-record diagnostics; nil disables them.
	Log *zerolog.Logger
	// Progress receives progress lines; nil disables them.
	Progress io.Writer
}

// Summary is what one run produced.
type Summary struct {
	Threads           int
	Messages          int
	Attachments       int
	Decrypted         int
	DecryptionEnabled bool
	ArchivePath       string
}

// Timestamps at or below this are taken to be seconds and scaled to millis.
const millisCutoff = 10000

type run struct {
	opts     Options
	resolver *identity.Resolver
	provider crypt.Provider
	log      zerolog.Logger

	assetsDir  string
	avatarsDir string

	threads         map[string][]*models.Message
	msgIndex        map[string]*models.Message
	avatarRel       map[string]string
	avatarEnc       map[string]bool
	threadAvatar    map[string]string
	threadAvatarEnc map[string]bool

	attachments int
	decrypted   int
}

// Run executes a full export. Only a missing database or an unwritable
// output tree is fatal; every per-record failure degrades that record and
// the pass continues.
func Run(opts Options) (*Summary, error) {
	src, err := storage.Open(opts.DBPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	r := &run{
		opts:            opts,
		resolver:        identity.NewResolver(),
		provider:        opts.Provider,
		log:             nopIfNil(opts.Log),
		assetsDir:       filepath.Join(opts.OutDir, "assets"),
		avatarsDir:      filepath.Join(opts.OutDir, "assets", "avatars"),
		threads:         make(map[string][]*models.Message),
		msgIndex:        make(map[string]*models.Message),
		avatarRel:       make(map[string]string),
		avatarEnc:       make(map[string]bool),
		threadAvatar:    make(map[string]string),
		threadAvatarEnc: make(map[string]bool),
	}
	if r.provider == nil {
		r.provider = crypt.NewOpenSSLProvider(opts.OpenSSL)
	}
	if !r.provider.Available() {
		r.log.Warn().Msg("cryptographic primitive unavailable, decryption disabled for this run")
	}

	if err := os.MkdirAll(r.avatarsDir, 0755); err != nil {
		return nil, fmt.Errorf("exporter: create output tree: %w", err)
	}

	if err := r.conversationsPass(src); err != nil {
		return nil, err
	}
	if err := r.messagesPass(src); err != nil {
		return nil, err
	}
	if err := r.callsPass(src); err != nil {
		return nil, err
	}

	threads := r.assemble()
	archivePath := filepath.Join(opts.OutDir, "archive.json")
	if err := writeArchive(archivePath, threads); err != nil {
		return nil, err
	}

	messages := 0
	for _, t := range threads {
		messages += len(t.Messages)
	}
	return &Summary{
		Threads:           len(threads),
		Messages:          messages,
		Attachments:       r.attachments,
		Decrypted:         r.decrypted,
		DecryptionEnabled: r.provider.Available(),
		ArchivePath:       archivePath,
	}, nil
}

func (r *run) conversationsPass(src *storage.Source) error {
	total, err := src.CountConversations()
	if err != nil {
		return fmt.Errorf("exporter: count conversations: %w", err)
	}
	start := time.Now()
	done := 0
	r.progress("Conversations", done, total, start)

	err = src.EachConversation(func(row storage.ConversationRow) error {
		done++
		display := r.resolver.Add(identity.Conversation{
			ID:              row.ID,
			Name:            row.Name,
			ProfileFullName: row.ProfileFullName,
			ProfileName:     row.ProfileName,
			E164:            row.E164,
			ServiceID:       row.ServiceID,
			Type:            row.Type,
		})
		r.processAvatar(row, display)
		if done == total || done%25 == 0 {
			r.progress("Conversations", done, total, start)
		}
		return nil
	})
	r.progressDone()
	return err
}

func (r *run) messagesPass(src *storage.Source) error {
	total, err := src.CountMessages()
	if err != nil {
		return fmt.Errorf("exporter: count messages: %w", err)
	}
	start := time.Now()
	seen := 0
	r.progress("Messages", seen, total, start)

	err = src.EachMessage(func(row storage.MessageRow) error {
		label := identity.Safe(r.resolver.Label(row.ConversationID))
		if _, ok := r.threads[label]; !ok {
			r.threads[label] = nil
		}
		if _, ok := r.threadAvatar[label]; !ok {
			if rel, found := r.avatarRel[row.ConversationID]; found {
				r.threadAvatar[label] = rel
				if r.avatarEnc[row.ConversationID] {
					r.threadAvatarEnc[label] = true
				}
			}
		}

		msg, ok := r.msgIndex[row.ID]
		if !ok {
			msg = r.buildMessage(row)
			r.msgIndex[row.ID] = msg
			r.threads[label] = append(r.threads[label], msg)
			seen++
			if seen == total || seen%25 == 0 {
				r.progress("Messages", seen, total, start)
			}
		}

		if row.RelPath != "" {
			msg.Atts = append(msg.Atts, r.processAttachment(label, row))
			r.attachments++
		}
		return nil
	})
	r.progressDone()
	return err
}

func (r *run) buildMessage(row storage.MessageRow) *models.Message {
	t := strings.ToLower(row.Type)
	out := strings.Contains(t, "out") || row.IsMeChange
	sender := "me"
	if !out {
		sender = r.resolver.ResolveSender(firstNonEmpty(row.SourceService, row.Source))
	}

	msg := &models.Message{
		ID:     row.ID,
		TS:     row.SentAt,
		Sender: sender,
		Out:    out,
		Body:   strings.TrimSpace(row.Body),
		Atts:   []models.Attachment{},
		Group:  r.resolver.IsGroup(row.ConversationID),
	}
	if ev := calls.Classify(row.Type, row.Body, out); ev != nil {
		msg.Kind = "call"
		msg.Video = ev.Video
		msg.Missed = ev.Missed
		msg.Out = ev.Outgoing
		msg.Body = ev.Phrase()
	}
	return msg
}

func (r *run) callsPass(src *storage.Source) error {
	return src.EachCall(func(row storage.CallRow) error {
		var label string
		group := false
		if row.ConversationID != "" {
			label = identity.Safe(r.resolver.Label(row.ConversationID))
			group = r.resolver.IsGroup(row.ConversationID)
		} else {
			name := r.resolver.ResolveSender(row.PeerID)
			if name == "" {
				name = "Call"
			}
			label = identity.Safe(name)
		}

		ev, directed := calls.ClassifyHistory(row.Type)
		body := "Call"
		if directed {
			body = ev.Phrase()
		}

		ts := row.Timestamp
		if ts <= millisCutoff {
			ts *= 1000
		}
		sender := ""
		if ev.Outgoing {
			sender = "me"
		}

		r.threads[label] = append(r.threads[label], &models.Message{
			ID:     fmt.Sprintf("call-%d", ts),
			TS:     ts,
			Sender: sender,
			Out:    ev.Outgoing,
			Body:   body,
			Kind:   "call",
			Video:  ev.Video,
			Missed: ev.Missed,
			Atts:   []models.Attachment{},
			Group:  group,
		})
		return nil
	})
}

// survivable drops messages with nothing to show: empty body and no
// attachment that resolved to a path.
func survivable(m *models.Message) bool {
	if strings.TrimSpace(m.Body) != "" {
		return true
	}
	for _, a := range m.Atts {
		if a.Path != "" {
			return true
		}
	}
	return false
}

func (r *run) assemble() []models.Thread {
	labels := make([]string, 0, len(r.threads))
	for label := range r.threads {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})

	threads := []models.Thread{}
	for _, label := range labels {
		var kept []*models.Message
		for _, m := range r.threads[label] {
			if survivable(m) {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			continue
		}
		sort.SliceStable(kept, func(i, j int) bool {
			if kept[i].TS != kept[j].TS {
				return kept[i].TS < kept[j].TS
			}
			return kept[i].ID < kept[j].ID
		})

		msgs := make([]models.Message, len(kept))
		for i, m := range kept {
			msgs[i] = *m
		}
		threads = append(threads, models.Thread{
			Label:           label,
			Unknown:         identity.LooksUnknown(label),
			Avatar:          r.threadAvatar[label],
			AvatarEncrypted: r.threadAvatarEnc[label],
			Messages:        msgs,
		})
	}
	return threads
}

func writeArchive(path string, threads []models.Thread) error {
	data, err := json.MarshalIndent(threads, "", "  ")
	if err != nil {
		return fmt.Errorf("exporter: marshal archive: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("exporter: write archive: %w", err)
	}
	return nil
}

// ReadArchive loads a previously written archive.json, for the browse and
// stats commands.
func ReadArchive(path string) ([]models.Thread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("exporter: read archive: %w", err)
	}
	var threads []models.Thread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("exporter: parse archive: %w", err)
	}
	return threads, nil
}

func (r *run) progress(label string, done, total int, start time.Time) {
	if r.opts.Progress == nil {
		return
	}
	fmt.Fprint(r.opts.Progress, "\r"+renderProgress(label, done, total, start, time.Now()))
}

func (r *run) progressDone() {
	if r.opts.Progress == nil {
		return
	}
	fmt.Fprintln(r.opts.Progress)
}

func nopIfNil(l *zerolog.Logger) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return *l
}
