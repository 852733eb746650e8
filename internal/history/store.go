package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
)

// Record kinds in a session file.
const (
	recordSession = "session" // header: session metadata, first line of the file
	recordEntry   = "entry"   // an appended history entry
	recordState   = "state"   // an active-entry move from explicit navigation
)

// record is one line of a session file.
type record struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Entry     *Entry    `json:"entry,omitempty"`
	ActiveID  string    `json:"active_id,omitempty"`
}

// SessionInfo is the metadata carried by a session file's header line.
type SessionInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Store persists sessions as one JSONL file per session. Entry and
// state records are appended as operations happen; loading replays the
// file in order to rebuild the tree and the active pointer.
type Store struct {
	dir string
	mu  sync.Mutex
	log *logging.Logger
}

// NewStore creates a store rooted at dir, creating the directory if
// needed.
func NewStore(dir string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}
	return &Store{dir: dir, log: log}, nil
}

// Dir returns the directory session files are written under.
func (s *Store) Dir() string {
	return s.dir
}

// CreateSession writes the header line for a new session and attaches
// the store to it so later mutations persist themselves. Any entries
// already present (a fork) are written after the header, followed by a
// state record pinning the fork point.
func (s *Store) CreateSession(sess *Session) error {
	path := s.sessionPath(sess.ID)
	if _, err := os.Stat(path); err == nil {
		return errors.NewAlreadyExistsError("session", sess.ID)
	}

	if err := s.appendRecord(sess.ID, record{
		Kind:      recordSession,
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
	}); err != nil {
		return err
	}
	for _, e := range sess.Entries() {
		if err := s.AppendEntry(sess.ID, e); err != nil {
			return err
		}
	}
	if active := sess.ActiveID(); active != "" {
		if err := s.SaveState(sess.ID, active); err != nil {
			return err
		}
	}

	sess.mu.Lock()
	sess.store = s
	sess.mu.Unlock()
	return nil
}

// AppendEntry appends an entry record to the session's file.
func (s *Store) AppendEntry(sessionID string, e *Entry) error {
	return s.appendRecord(sessionID, record{Kind: recordEntry, Entry: e})
}

// SaveState appends a state record marking entryID as the active
// entry.
func (s *Store) SaveState(sessionID, entryID string) error {
	return s.appendRecord(sessionID, record{Kind: recordState, ActiveID: entryID})
}

// appendRecord marshals rec as a single line and appends it under the
// store mutex. Records are far smaller than PIPE_BUF, so each append
// lands as one atomic write and concurrent lines never interleave.
func (s *Store) appendRecord(sessionID string, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal record")
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.sessionPath(sessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open session file")
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "failed to append record")
	}
	return nil
}

// LoadSession rebuilds a session by replaying its file. Entry records
// advance the active pointer exactly as the original appends did;
// state records override it. Malformed lines are skipped with a
// warning so one bad write does not strand the whole session.
func (s *Store) LoadSession(id string) (*Session, error) {
	path := s.sessionPath(id)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("session", id).WithCause(errors.ErrSessionNotFound)
		}
		return nil, errors.Wrap(err, "failed to open session file")
	}
	defer f.Close()

	sess := &Session{entries: make(map[string]*Entry)}
	sawHeader := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			s.log.Warn("skipping malformed history record",
				"session_id", id, "line", lineNo, "error", err)
			continue
		}

		switch rec.Kind {
		case recordSession:
			sess.ID = rec.ID
			sess.Name = rec.Name
			sess.CreatedAt = rec.CreatedAt
			sawHeader = true
		case recordEntry:
			if rec.Entry == nil || rec.Entry.ID == "" {
				s.log.Warn("skipping entry record without entry",
					"session_id", id, "line", lineNo)
				continue
			}
			sess.restore(rec.Entry)
		case recordState:
			sess.restoreState(rec.ActiveID)
		default:
			s.log.Warn("skipping history record of unknown kind",
				"session_id", id, "line", lineNo, "kind", rec.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read session file")
	}

	if !sawHeader {
		return nil, errors.NewSessionError("session file has no header", errors.ErrSessionCorrupted).
			WithSessionID(id)
	}
	if active := sess.ActiveID(); active != "" {
		if _, ok := sess.Entry(active); !ok {
			s.log.Warn("active entry missing from tree, resetting",
				"session_id", id, "entry_id", active)
			sess.restoreState("")
		}
	}

	sess.store = s
	return sess, nil
}

// ListSessions reads the header line of every session file in the
// store directory. Files without a parseable header are skipped with a
// warning. Results are sorted by creation time, oldest first.
func (s *Store) ListSessions() ([]*SessionInfo, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read history directory")
	}

	var infos []*SessionInfo
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".jsonl" {
			continue
		}
		info, err := s.readHeader(filepath.Join(s.dir, de.Name()))
		if err != nil {
			s.log.Warn("skipping unreadable session file",
				"file", de.Name(), "error", err)
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos, nil
}

// readHeader parses the first non-empty line of a session file as its
// header.
func (s *Store) readHeader(path string) (*SessionInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("malformed header: %w", err)
		}
		if rec.Kind != recordSession {
			return nil, fmt.Errorf("first record is %q, want %q", rec.Kind, recordSession)
		}
		return &SessionInfo{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt}, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("empty session file")
}

// Rewrite replaces a session's file with a compact replay: header,
// entries in append order, and a final state record. The new content
// is written to a temp file, synced, and renamed over the original so
// readers never observe a partial file.
func (s *Store) Rewrite(sess *Session) error {
	var buf strings.Builder
	records := []record{{
		Kind:      recordSession,
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
	}}
	for _, e := range sess.Entries() {
		records = append(records, record{Kind: recordEntry, Entry: e})
	}
	if active := sess.ActiveID(); active != "" {
		records = append(records, record{Kind: recordState, ActiveID: active})
	}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "failed to marshal record")
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return atomicWriteFile(s.sessionPath(sess.ID), []byte(buf.String()), 0o644)
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.dir, id+".jsonl")
}

// atomicWriteFile writes data to a temp file in the target directory,
// syncs it, and renames it into place.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
