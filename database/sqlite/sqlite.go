// Package sqlite implements the catalog repository on sqlite.
package sqlite

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

type SqliteRepo struct {
	// Read db handle
	dbReadHandle *sqlx.DB
	// Handle specfically for writes
	dbWriteHandle *sqlx.DB

	// in-memory now playing state, one entry per user, never persisted.
	nowPlaying map[string]model.NowPlaying
	// in-memory scrobble submission fingerprints with the time they were
	// last accepted.
	submissions map[string]time.Time
	// window within which identical submissions are dropped and entries
	// count as "now playing".
	playWindow time.Duration
	// mutex to protect access to in-memory stores
	mu sync.Mutex
}

// ConfigFile holds configuration options
type ConfigFile struct {
	Filename string `yaml:"filename"`
}

// memDBSeq names in-memory databases so separate opens stay separate.
var memDBSeq uint64

// New initializes a sqlite database and creates schema if necssary.
func New(o *ConfigFile) (*SqliteRepo, error) {
	if o == nil || o.Filename == "" {
		return nil, model.ErrNoConfiguration
	}

	dsn := o.Filename
	readConns := max(4, runtime.NumCPU())
	if dsn == ":memory:" {
		// every pooled connection to a plain ":memory:" dsn gets its own
		// database; a named shared-cache db keeps both handles on the
		// same one without sharing it with other opens in the process
		dsn = fmt.Sprintf("file:memdb%d?mode=memory&cache=shared",
			atomic.AddUint64(&memDBSeq, 1))
		readConns = 1
	}

	dbHandle, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	dbHandle.SetMaxOpenConns(readConns)

	writeDB, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite needs to have a single writer
	writeDB.SetMaxOpenConns(1)

	if err := dbInitSchema(writeDB); err != nil {
		return nil, err
	}

	d := &SqliteRepo{
		dbReadHandle:  dbHandle,
		dbWriteHandle: writeDB,
		nowPlaying:    make(map[string]model.NowPlaying),
		submissions:   make(map[string]time.Time),
		playWindow:    10 * time.Minute,
	}
	return d, nil
}

// SetNowPlaying records what a user is currently playing.
func (s *SqliteRepo) SetNowPlaying(entry model.NowPlaying) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.At = time.Now().UTC()
	s.nowPlaying[entry.UserID.String()] = entry
}

// ListNowPlaying returns the entries still within the play window.
func (s *SqliteRepo) ListNowPlaying() []model.NowPlaying {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-s.playWindow)
	entries := make([]model.NowPlaying, 0, len(s.nowPlaying))
	for key, entry := range s.nowPlaying {
		if entry.At.Before(cutoff) {
			delete(s.nowPlaying, key)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// SeenSubmission reports whether a scrobble with this fingerprint was
// already accepted within the dedup window.
func (s *SqliteRepo) SeenSubmission(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.submissions[fingerprint]
	return ok && time.Now().UTC().Sub(last) < s.playWindow
}

// MarkSubmission records an accepted scrobble fingerprint. Called only
// after the play is durably recorded, so a failed write stays retryable.
func (s *SqliteRepo) MarkSubmission(fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	// drop stale fingerprints while we are here
	for key, at := range s.submissions {
		if now.Sub(at) >= s.playWindow {
			delete(s.submissions, key)
		}
	}
	s.submissions[fingerprint] = now
}
