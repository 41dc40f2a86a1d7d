package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/apothecary/internal/catalog"
)

// BackupTimeLayout formats the timestamp part of backup file names.
const BackupTimeLayout = "20060102_150405"

// Store holds the catalog document in memory and persists it to a JSON file.
type Store struct {
	path      string
	backupDir string
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger

	doc     *catalog.Document
	fresh   bool
	notices []catalog.Issue
}

// Option configures a Store.
type Option func(*Store)

// WithBackupDir sets the directory receiving a copy of the previous document
// on every save. Defaults to a "backups" directory next to the document.
func WithBackupDir(dir string) Option {
	return func(s *Store) { s.backupDir = dir }
}

// WithClock overrides the wall clock used for metadata and backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the generator of catalog ids for new documents.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewCatalogID returns a time-sortable UUIDv7 string.
func NewCatalogID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Open creates a store for the document at path and loads it.
//
// A missing document is not an error: the store starts from a default
// document and nothing is written until the first save. When the document
// exists but cannot be read or parsed, Open still returns a usable store
// holding a default document, together with an error satisfying IsLoadError
// that the caller should surface as a notice.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		backupDir: filepath.Join(filepath.Dir(path), "backups"),
		now:       time.Now,
		newID:     NewCatalogID,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(); err != nil {
		return s, err
	}
	return s, nil
}

// Load (re)reads the document from disk, replacing the in-memory state.
// See Open for the failure semantics.
func (s *Store) Load() error {
	s.fresh = false
	s.notices = nil

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no catalog on disk, starting fresh", "path", s.path)
		s.doc = catalog.NewDocument(s.now(), s.newID())
		s.fresh = true
		return nil
	}
	if err != nil {
		s.doc = catalog.NewDocument(s.now(), s.newID())
		return newLoadError(s.path, err)
	}

	doc, notices, err := Migrate(data, s.now(), s.newID())
	if err != nil {
		s.doc = catalog.NewDocument(s.now(), s.newID())
		return newLoadError(s.path, err)
	}

	for _, n := range notices {
		s.logger.Warn("catalog migration", "code", n.Code, "subject", n.Subject, "message", n.Message)
	}
	s.doc = doc
	s.notices = notices
	s.logger.Debug("catalog loaded",
		"path", s.path,
		"bases", len(doc.Bases),
		"ingredients", len(doc.Ingredients),
		"potions", len(doc.Potions),
	)
	return nil
}

// Document returns the live in-memory document. Callers that change it must
// go through Mutate so the change is persisted.
func (s *Store) Document() *catalog.Document {
	return s.doc
}

// Path returns the location of the document on disk.
func (s *Store) Path() string {
	return s.path
}

// BackupDir returns the directory receiving backups.
func (s *Store) BackupDir() string {
	return s.backupDir
}

// Fresh reports whether the last load found no document on disk.
func (s *Store) Fresh() bool {
	return s.fresh
}

// Notices returns the migration diagnostics of the last load.
func (s *Store) Notices() []catalog.Issue {
	return s.notices
}

// Save writes the document to disk.
//
// Order of operations: the previous file (if any) is copied into the backup
// directory, the metadata counts and last-modified time are recomputed, then
// the new content is written to a temporary file and renamed over the
// document. On error the in-memory document is left unchanged.
func (s *Store) Save() error {
	now := s.now()

	out := *s.doc
	out.Metadata.LastModified = catalog.NewTimestamp(now)
	out.RefreshCounts()

	data, err := encodeDocument(&out)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save: create data dir: %w", err)
	}

	backup, err := s.backup(now)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	s.doc.Metadata = out.Metadata
	s.fresh = false
	s.logger.Debug("catalog saved", "path", s.path, "backup", backup)
	return nil
}

// Mutate applies fn to the live document and saves it.
//
// If fn returns an error nothing is written and the error is returned as is.
// If fn succeeds but the save fails, the document is restored to its state
// before fn ran. Either way a failed Mutate leaves no partial change behind.
func (s *Store) Mutate(fn func(doc *catalog.Document) error) error {
	snapshot := s.doc.Clone()

	if err := fn(s.doc); err != nil {
		*s.doc = *snapshot
		return err
	}

	if err := s.Save(); err != nil {
		*s.doc = *snapshot
		return err
	}
	return nil
}

// backup copies the current file into the backup directory and returns the
// backup path, or "" when there was nothing to back up.
func (s *Store) backup(now time.Time) (string, error) {
	src, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("backup: create dir: %w", err)
	}

	dst, name, err := createBackupFile(s.backupDir, now)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(name)
		return "", fmt.Errorf("backup: copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("backup: close: %w", err)
	}
	return name, nil
}

// createBackupFile creates backup_<stamp>.json, or backup_<stamp>_<n>.json
// when several saves land within the same second.
func createBackupFile(dir string, now time.Time) (*os.File, string, error) {
	stamp := now.Format(BackupTimeLayout)
	for n := 0; ; n++ {
		name := fmt.Sprintf("backup_%s.json", stamp)
		if n > 0 {
			name = fmt.Sprintf("backup_%s_%d.json", stamp, n)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return f, path, nil
	}
}

// writeFileAtomic writes data next to path and renames it into place so a
// crash mid-write never leaves a truncated document behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// encodeDocument renders the document as indented UTF-8 JSON. HTML escaping is
// disabled so names like "Charm / Seduction & Co" stay readable on disk.
func encodeDocument(doc *catalog.Document) ([]byte, error) {
	doc.EnsureCollections()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeDocument renders doc exactly as Save writes it.
func EncodeDocument(doc *catalog.Document) ([]byte, error) {
	return encodeDocument(doc)
}
