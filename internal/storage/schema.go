package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Capabilities records which optional schema surfaces the probed database
// actually has, so row handling binds to a fixed shape instead of
// per-row conditionals.
type Capabilities struct {
	AttachmentLocalKey    bool
	AttachmentKey         bool
	AttachmentContentType bool

	CallsByConversation bool
	CallsByPeer         bool

	// Bound callsHistory column names, valid when the matching flag is set.
	callCID  string
	callTS   string
	callType string
	callPeer string
}

// Column-name conventions seen across Signal Desktop schema versions.
var (
	callCIDColumns  = []string{"conversationId", "cid", "threadId"}
	callTSColumns   = []string{"timestamp", "startedAt", "startTimestamp", "sent_at", "time"}
	callTypeColumns = []string{"type", "callType", "direction", "status"}
	callPeerColumns = []string{"peerId", "ringerId", "startedById"}
)

// probe runs once per Source and binds the optional schema surfaces.
func (s *Source) probe() error {
	maCols, err := s.tableColumns("message_attachments")
	if err != nil {
		return err
	}
	s.caps.AttachmentLocalKey = maCols["localKey"]
	s.caps.AttachmentKey = maCols["key"]
	s.caps.AttachmentContentType = maCols["contentType"]

	hasCalls, err := s.tableExists("callsHistory")
	if err != nil {
		return err
	}
	if !hasCalls {
		return nil
	}

	callCols, err := s.tableColumns("callsHistory")
	if err != nil {
		return err
	}
	s.caps.callCID = firstPresent(callCols, callCIDColumns)
	s.caps.callTS = firstPresent(callCols, callTSColumns)
	s.caps.callType = firstPresent(callCols, callTypeColumns)
	s.caps.callPeer = firstPresent(callCols, callPeerColumns)

	switch {
	case s.caps.callCID != "" && s.caps.callTS != "" && s.caps.callType != "":
		s.caps.CallsByConversation = true
	case s.caps.callPeer != "" && s.caps.callTS != "" && s.caps.callType != "":
		s.caps.CallsByPeer = true
	}
	return nil
}

func (s *Source) tableColumns(table string) (map[string]bool, error) {
	rows, err := s.db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("storage: probe %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("storage: probe %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func (s *Source) tableExists(name string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM sqlite_master WHERE type='table' AND name=? LIMIT 1", name,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("storage: probe table %s: %w", name, err)
}

func firstPresent(cols map[string]bool, candidates []string) string {
	for _, c := range candidates {
		if cols[c] {
			return c
		}
	}
	return ""
}
