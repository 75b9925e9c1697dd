package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/qrlogo/qrlogo/internal/domain/common/errorz"
	"github.com/qrlogo/qrlogo/internal/domain/entity"
	"github.com/qrlogo/qrlogo/pkg/logger/types"
	"github.com/spf13/afero"
)

const historyKey = "logo-history"

// document is the typed view of the history file. Other top-level keys are kept
// in extra and written back untouched.
type document struct {
	LogoHistory []string `toml:"logo-history"`
}

// Storage keeps the most-recently-used list of logo paths and persists it as TOML.
// It is not safe for concurrent use.
type Storage struct {
	fs      afero.Fs
	path    string
	logger  *types.Logger
	history entity.LogoHistory
	extra   map[string]any
}

func NewStorage(filesystem afero.Fs, path string, logger *types.Logger) *Storage {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	if logger == nil {
		logger = types.Nop()
	}
	return &Storage{
		fs:      filesystem,
		path:    path,
		logger:  logger,
		history: entity.LogoHistory{},
		extra:   map[string]any{},
	}
}

// Load reads the history file and sanitizes it. A missing or malformed file
// yields an empty history; the error is logged, never returned.
func (s *Storage) Load() entity.LogoHistory {
	doc, extra, err := s.read()
	if err != nil {
		if errors.Is(err, errorz.ErrConfigParse) {
			s.logger.Warnf("Starting with an empty logo history: %v", err)
		} else if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warnf("Failed to read logo history %s: %v", s.path, err)
		}
		doc, extra = document{}, map[string]any{}
	}

	s.extra = extra
	s.history = s.Sanitize(doc.LogoHistory)
	s.logger.Debugf("Loaded %d logo(s) from %s", len(s.history), s.path)
	return s.history.Clone()
}

// Sanitize keeps the entries that point at readable files, in their original order.
// Empty and repeated entries are dropped too.
func (s *Storage) Sanitize(list []string) entity.LogoHistory {
	out := make(entity.LogoHistory, 0, len(list))
	for _, p := range list {
		if p == "" || out.Contains(p) {
			continue
		}
		if !s.readable(p) {
			s.logger.Debugf("Dropping missing logo %s", p)
			continue
		}
		out = append(out, p)
	}
	return out
}

// RecordUse moves path to the front of the history. Empty paths are ignored.
func (s *Storage) RecordUse(path string) {
	s.history = s.history.Touch(path)
}

// List returns a snapshot of the current history.
func (s *Storage) List() entity.LogoHistory {
	return s.history.Clone()
}

// Save sanitizes the history and atomically replaces the file. On failure the
// in-memory history is kept as is.
func (s *Storage) Save() error {
	s.history = s.Sanitize(s.history)

	out := make(map[string]any, len(s.extra)+1)
	for k, v := range s.extra {
		out[k] = v
	}
	out[historyKey] = []string(s.history)

	data, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", errorz.ErrIO, s.path, err)
	}
	if err = s.writeAtomic(data); err != nil {
		return fmt.Errorf("%w: %v", errorz.ErrIO, err)
	}

	s.logger.Debugf("Saved %d logo(s) to %s", len(s.history), s.path)
	return nil
}

func (s *Storage) read() (document, map[string]any, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return document{}, nil, err
	}

	raw := map[string]any{}
	if err = toml.Unmarshal(data, &raw); err != nil {
		return document{}, nil, fmt.Errorf("%w: %s: %v", errorz.ErrConfigParse, s.path, err)
	}

	var doc document
	if err = toml.Unmarshal(data, &doc); err != nil {
		return document{}, nil, fmt.Errorf("%w: %s: %v", errorz.ErrConfigParse, s.path, err)
	}

	delete(raw, historyKey)
	return doc, raw, nil
}

func (s *Storage) readable(path string) bool {
	info, err := s.fs.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

func (s *Storage) writeAtomic(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure dir for %s: %v", s.path, err)
		}
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := s.writeSynced(tmp, data); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to write temp file %s: %v", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to rename temp file to %s: %v", s.path, err)
	}
	return nil
}

// writeSynced flushes data to stable storage before returning, so the rename that
// follows can never expose an empty file after a crash.
func (s *Storage) writeSynced(name string, data []byte) error {
	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
