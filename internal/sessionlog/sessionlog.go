// Package sessionlog implements the JSON-file persisted state spec.md
// §6 names: a sessions directory (one file per conversation) and a
// single memory log, both read fresh on every operation and written
// back whole — "load on every operation, tolerate racing writers"
// (spec.md §5), accepting occasional lost updates under concurrent
// writers rather than taking a hard lock. This is distinct from the
// teacher's SQLite-backed store.Cache, which remains in place purely
// as a fetch/search result cache (see internal/store).
package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/symbcore/internal/convo"
)

// Session is one conversation's persisted state: the root agent's
// message history plus timestamps for listing.
type Session struct {
	ID       string         `json:"id"`
	Created  int64          `json:"created"`
	Updated  int64          `json:"updated"`
	Messages []convo.Message `json:"messages"`
}

// Store owns the sessions directory and memory log file, both under
// dataDir.
type Store struct {
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) sessionsDir() string {
	return filepath.Join(s.dataDir, "sessions")
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.sessionsDir(), id+".json")
}

// NewSession creates a fresh session with a uuid ID and persists it
// empty, returning the ID.
func (s *Store) NewSession() (string, error) {
	id := uuid.NewString()
	now := nowUnix()
	sess := &Session{ID: id, Created: now, Updated: now}
	if err := s.save(sess); err != nil {
		return "", err
	}
	return id, nil
}

// Load reads a session by ID.
func (s *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("sessionlog: corrupt session %s: %w", id, err)
	}
	return &sess, nil
}

// AppendMessages loads the session fresh, appends msgs, and saves —
// the load-then-append-then-save discipline spec.md §5 calls for.
// Concurrent writers may race and lose an update; this is accepted.
func (s *Store) AppendMessages(id string, msgs ...convo.Message) error {
	sess, err := s.Load(id)
	if err != nil {
		return err
	}
	sess.Messages = append(sess.Messages, msgs...)
	sess.Updated = nowUnix()
	return s.save(sess)
}

func (s *Store) save(sess *Session) error {
	if err := os.MkdirAll(s.sessionsDir(), 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	path := s.sessionPath(sess.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Summary is one entry in a session listing.
type Summary struct {
	ID      string
	Created int64
	Updated int64
}

// List returns every session under the sessions directory, most
// recently updated first.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.sessionsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := e.Name()[:len(e.Name())-len(".json")]
		sess, err := s.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("skipping unreadable session file")
			continue
		}
		out = append(out, Summary{ID: sess.ID, Created: sess.Created, Updated: sess.Updated})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Updated > out[i].Updated {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func nowUnix() int64 { return time.Now().Unix() }
