// Package storage reads the decrypted Signal Desktop SQLite database. The
// database is strictly a read-only input; schema differences across versions
// are absorbed by a one-shot capability probe at open time.
package storage

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

type Source struct {
	db   *sql.DB
	caps Capabilities
}

// Open connects read-only to the source database and probes its schema.
// A missing file is fatal to the run.
func Open(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("storage: source database: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Source{db: db}
	if err := s.probe(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Source) Capabilities() Capabilities { return s.caps }

func (s *Source) Close() error { return s.db.Close() }

func (s *Source) CountConversations() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM conversations").Scan(&n)
	return n, err
}

func (s *Source) CountMessages() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(DISTINCT id) FROM messages").Scan(&n)
	return n, err
}

// ConversationRow is one conversations row with every display-name source
// the schema may carry.
type ConversationRow struct {
	ID              string
	JSON            string
	Name            string
	ProfileFullName string
	ProfileName     string
	E164            string
	ServiceID       string
	Type            string
}

// EachConversation streams the conversations table in a single pass.
func (s *Source) EachConversation(fn func(ConversationRow) error) error {
	rows, err := s.db.Query(`
		SELECT id, json, name, profileFullName, profileName, e164, serviceId, type
		FROM conversations`)
	if err != nil {
		return fmt.Errorf("storage: query conversations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id                                       string
			js, name, pfull, pname, e164, sid, ctype sql.NullString
		)
		if err := rows.Scan(&id, &js, &name, &pfull, &pname, &e164, &sid, &ctype); err != nil {
			return fmt.Errorf("storage: scan conversation: %w", err)
		}
		row := ConversationRow{
			ID:              id,
			JSON:            js.String,
			Name:            name.String,
			ProfileFullName: pfull.String,
			ProfileName:     pname.String,
			E164:            e164.String,
			ServiceID:       sid.String,
			Type:            ctype.String,
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// MessageRow is one row of the messages/message_attachments left join. An
// empty RelPath means the message row carried no attachment. Key columns the
// schema lacks come back empty.
type MessageRow struct {
	ID             string
	ConversationID string
	SentAt         int64
	Type           string
	Source         string
	SourceService  string
	IsMeChange     bool
	Body           string

	FileName    string
	RelPath     string
	Order       int64
	LocalKey    string
	AltKey      string
	ContentType string
}

// EachMessage streams messages joined with their attachments, ordered by
// conversation, timestamp, and per-message attachment order, so the caller
// can assemble threads in one pass.
func (s *Source) EachMessage(fn func(MessageRow) error) error {
	selLocal := "NULL"
	if s.caps.AttachmentLocalKey {
		selLocal = "ma.localKey"
	}
	selKey := "NULL"
	if s.caps.AttachmentKey {
		selKey = `ma."key"`
	}
	selCT := "NULL"
	if s.caps.AttachmentContentType {
		selCT = "ma.contentType"
	}

	query := fmt.Sprintf(`
		SELECT
			m.id, m.conversationId, m.sent_at, m.type,
			m.source, m.sourceServiceId, m.isChangeCreatedByUs, m.body,
			ma.fileName, ma.path, ma.orderInMessage,
			%s, %s, %s
		FROM messages m
		LEFT JOIN message_attachments ma ON ma.messageId = m.id
		ORDER BY m.conversationId, m.sent_at, ma.orderInMessage`,
		selLocal, selKey, selCT)

	rows, err := s.db.Query(query)
	if err != nil {
		return fmt.Errorf("storage: query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, cid                string
			sentAt, ord, isMe      sql.NullInt64
			mtype, src, ssid, body sql.NullString
			fname, rel, lkey, akey sql.NullString
			ctype                  sql.NullString
		)
		if err := rows.Scan(&id, &cid, &sentAt, &mtype, &src, &ssid, &isMe, &body,
			&fname, &rel, &ord, &lkey, &akey, &ctype); err != nil {
			return fmt.Errorf("storage: scan message: %w", err)
		}
		row := MessageRow{
			ID:             id,
			ConversationID: cid,
			SentAt:         sentAt.Int64,
			Type:           mtype.String,
			Source:         src.String,
			SourceService:  ssid.String,
			IsMeChange:     isMe.Int64 == 1,
			Body:           body.String,
			FileName:       fname.String,
			RelPath:        rel.String,
			Order:          ord.Int64,
			LocalKey:       lkey.String,
			AltKey:         akey.String,
			ContentType:    ctype.String,
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AttachmentKeyRow maps a stored blob back to its key material, used by the
// decrypt-assets audit scan.
type AttachmentKeyRow struct {
	FileName    string
	RelPath     string
	LocalKey    string
	AltKey      string
	ContentType string
}

func (s *Source) AttachmentKeys() ([]AttachmentKeyRow, error) {
	selLocal := "NULL"
	if s.caps.AttachmentLocalKey {
		selLocal = "localKey"
	}
	selKey := "NULL"
	if s.caps.AttachmentKey {
		selKey = `"key"`
	}
	selCT := "NULL"
	if s.caps.AttachmentContentType {
		selCT = "contentType"
	}

	query := fmt.Sprintf(`
		SELECT fileName, path, %s, %s, %s
		FROM message_attachments
		WHERE path IS NOT NULL`, selLocal, selKey, selCT)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("storage: query attachment keys: %w", err)
	}
	defer rows.Close()

	var out []AttachmentKeyRow
	for rows.Next() {
		var fname, rel, lkey, akey, ctype sql.NullString
		if err := rows.Scan(&fname, &rel, &lkey, &akey, &ctype); err != nil {
			return nil, fmt.Errorf("storage: scan attachment key: %w", err)
		}
		out = append(out, AttachmentKeyRow{
			FileName:    fname.String,
			RelPath:     rel.String,
			LocalKey:    lkey.String,
			AltKey:      akey.String,
			ContentType: ctype.String,
		})
	}
	return out, rows.Err()
}

// CallRow is one callsHistory row normalized to whichever binding the probe
// found: ConversationID for the direct convention, PeerID for the peer-keyed
// one.
type CallRow struct {
	ConversationID string
	PeerID         string
	Timestamp      int64
	Type           string
}

// EachCall streams the optional callsHistory table. A schema without the
// table, or without a usable column binding, yields no rows and no error.
func (s *Source) EachCall(fn func(CallRow) error) error {
	var query string
	switch {
	case s.caps.CallsByConversation:
		query = fmt.Sprintf(
			`SELECT %s, %s, %s FROM callsHistory ORDER BY %s, %s`,
			s.caps.callCID, s.caps.callTS, s.caps.callType, s.caps.callCID, s.caps.callTS)
	case s.caps.CallsByPeer:
		query = fmt.Sprintf(
			`SELECT %s, %s, %s FROM callsHistory ORDER BY %s`,
			s.caps.callPeer, s.caps.callTS, s.caps.callType, s.caps.callTS)
	default:
		return nil
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return fmt.Errorf("storage: query calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ident sql.NullString
			ts    sql.NullInt64
			ctype sql.NullString
		)
		if err := rows.Scan(&ident, &ts, &ctype); err != nil {
			return fmt.Errorf("storage: scan call: %w", err)
		}
		row := CallRow{Timestamp: ts.Int64, Type: ctype.String}
		if s.caps.CallsByConversation {
			row.ConversationID = ident.String
		} else {
			row.PeerID = ident.String
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}
