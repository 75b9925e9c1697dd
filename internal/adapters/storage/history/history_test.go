package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/qrlogo/qrlogo/internal/domain/common/errorz"
	"github.com/qrlogo/qrlogo/internal/domain/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configPath = "/cfg/qrGenConfig.toml"

func newMemStorage(t *testing.T, logos ...string) (*Storage, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, l := range logos {
		require.NoError(t, afero.WriteFile(fs, l, []byte("png"), 0o644))
	}
	return NewStorage(fs, configPath, nil), fs
}

func writeConfig(t *testing.T, fs afero.Fs, body string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, configPath, []byte(body), 0o644))
}

func TestLoadMissingFile(t *testing.T) {
	s, fs := newMemStorage(t)

	assert.Equal(t, entity.LogoHistory{}, s.Load())
	exists, err := afero.Exists(fs, configPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoadDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed toml", "logo-history = [\"a.png\""},
		{"missing key", "theme = \"dark\"\n"},
		{"wrong type", "logo-history = 5\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fs := newMemStorage(t, "/logos/a.png")
			writeConfig(t, fs, tt.body)

			assert.Empty(t, s.Load())
			assert.Empty(t, s.List())
		})
	}
}

func TestLoadDropsMissingLogos(t *testing.T) {
	s, fs := newMemStorage(t, "b.png")
	writeConfig(t, fs, "logo-history = ['a.png', 'b.png']\n")

	assert.Equal(t, entity.LogoHistory{"b.png"}, s.Load())
}

func TestSanitize(t *testing.T) {
	s, fs := newMemStorage(t, "/logos/a.png", "/logos/b.png", "/logos/c.png")
	require.NoError(t, fs.MkdirAll("/logos/dir.png", 0o755))

	in := []string{"/logos/c.png", "", "/gone.png", "/logos/a.png", "/logos/dir.png", "/logos/c.png", "/logos/b.png"}
	want := entity.LogoHistory{"/logos/c.png", "/logos/a.png", "/logos/b.png"}

	once := s.Sanitize(in)
	assert.Equal(t, want, once)
	assert.Equal(t, once, s.Sanitize(once))
	assert.Equal(t, entity.LogoHistory{}, s.Sanitize(nil))
}

func TestRecordUse(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		use     []string
		want    entity.LogoHistory
	}{
		{"move to front", []string{"a.png", "b.png"}, []string{"b.png"}, entity.LogoHistory{"b.png", "a.png"}},
		{"already first", []string{"a.png", "b.png"}, []string{"a.png"}, entity.LogoHistory{"a.png", "b.png"}},
		{"new path", []string{"a.png"}, []string{"c.png"}, entity.LogoHistory{"c.png", "a.png"}},
		{"repeated use", []string{"a.png", "b.png"}, []string{"b.png", "b.png"}, entity.LogoHistory{"b.png", "a.png"}},
		{"empty path", []string{"a.png", "b.png"}, []string{""}, entity.LogoHistory{"a.png", "b.png"}},
		{"empty history", nil, []string{"a.png"}, entity.LogoHistory{"a.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fs := newMemStorage(t, "a.png", "b.png", "c.png")
			if tt.initial != nil {
				body, err := toml.Marshal(document{LogoHistory: tt.initial})
				require.NoError(t, err)
				writeConfig(t, fs, string(body))
			}
			s.Load()

			for _, p := range tt.use {
				s.RecordUse(p)
			}
			assert.Equal(t, tt.want, s.List())
		})
	}
}

func TestListIsSnapshot(t *testing.T) {
	s, _ := newMemStorage(t, "a.png")
	s.RecordUse("a.png")

	snapshot := s.List()
	snapshot[0] = "mutated.png"
	assert.Equal(t, entity.LogoHistory{"a.png"}, s.List())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, fs := newMemStorage(t, "/logos/a.png", "/logos/b.png")
	s.Load()
	s.RecordUse("/logos/a.png")
	s.RecordUse("/logos/gone.png")
	s.RecordUse("/logos/b.png")
	want := s.Sanitize(s.List())

	require.NoError(t, s.Save())
	assert.Equal(t, want, s.List())

	reloaded := NewStorage(fs, configPath, nil)
	assert.Equal(t, want, reloaded.Load())
	assert.Equal(t, entity.LogoHistory{"/logos/b.png", "/logos/a.png"}, reloaded.List())

	// no temp files left behind
	entries, err := afero.ReadDir(fs, filepath.Dir(configPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveOnDisk(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	path := filepath.Join(dir, "nested", "qrGenConfig.toml")
	fs := afero.NewOsFs()
	require.NoError(t, afero.WriteFile(fs, logo, []byte("png"), 0o644))

	s := NewStorage(fs, path, nil)
	s.Load()
	s.RecordUse(logo)
	require.NoError(t, s.Save())

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var doc document
	require.NoError(t, toml.Unmarshal(data, &doc))
	assert.Equal(t, []string{logo}, doc.LogoHistory)
}

func TestSavePreservesUnknownKeys(t *testing.T) {
	s, fs := newMemStorage(t, "a.png")
	writeConfig(t, fs, "theme = 'dark'\nlogo-history = ['a.png']\n\n[window]\nwidth = 640\n")
	s.Load()
	require.NoError(t, s.Save())

	data, err := afero.ReadFile(fs, configPath)
	require.NoError(t, err)
	raw := map[string]any{}
	require.NoError(t, toml.Unmarshal(data, &raw))
	assert.Equal(t, "dark", raw["theme"])
	assert.Equal(t, map[string]any{"width": int64(640)}, raw["window"])
	assert.Equal(t, []any{"a.png"}, raw["logo-history"])
}

func TestSaveEmptyHistory(t *testing.T) {
	s, fs := newMemStorage(t)
	s.Load()
	require.NoError(t, s.Save())

	data, err := afero.ReadFile(fs, configPath)
	require.NoError(t, err)
	var doc document
	require.NoError(t, toml.Unmarshal(data, &doc))
	assert.Empty(t, doc.LogoHistory)
	assert.Contains(t, string(data), "logo-history")
}

func TestSaveFailureKeepsHistory(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "a.png", []byte("png"), 0o644))
	s := NewStorage(afero.NewReadOnlyFs(base), configPath, nil)
	s.Load()
	s.RecordUse("a.png")

	err := s.Save()
	assert.ErrorIs(t, err, errorz.ErrIO)
	assert.Equal(t, entity.LogoHistory{"a.png"}, s.List())
}

// journalFs records file syncs and renames in the order they happen.
type journalFs struct {
	afero.Fs
	events  []string
	syncErr error
}

type journalFile struct {
	afero.File
	fs *journalFs
}

func (f *journalFile) Sync() error {
	f.fs.events = append(f.fs.events, "sync")
	if f.fs.syncErr != nil {
		return f.fs.syncErr
	}
	return f.File.Sync()
}

func (j *journalFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := j.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &journalFile{File: f, fs: j}, nil
}

func (j *journalFs) Rename(oldname, newname string) error {
	j.events = append(j.events, "rename")
	return j.Fs.Rename(oldname, newname)
}

func TestSaveSyncsBeforeRename(t *testing.T) {
	fs := &journalFs{Fs: afero.NewMemMapFs()}
	require.NoError(t, afero.WriteFile(fs.Fs, "a.png", []byte("png"), 0o644))
	s := NewStorage(fs, configPath, nil)
	s.Load()
	s.RecordUse("a.png")

	require.NoError(t, s.Save())
	assert.Equal(t, []string{"sync", "rename"}, fs.events)

	data, err := afero.ReadFile(fs, configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.png")
}

func TestSaveSyncFailure(t *testing.T) {
	fs := &journalFs{Fs: afero.NewMemMapFs(), syncErr: errors.New("i/o error")}
	require.NoError(t, afero.WriteFile(fs.Fs, "a.png", []byte("png"), 0o644))
	writeConfig(t, fs.Fs, "logo-history = []\n")
	s := NewStorage(fs, configPath, nil)
	s.Load()
	s.RecordUse("a.png")

	assert.ErrorIs(t, s.Save(), errorz.ErrIO)
	assert.Equal(t, []string{"sync"}, fs.events)
	assert.Equal(t, entity.LogoHistory{"a.png"}, s.List())

	// the previous file is untouched and no temp file is left behind
	data, err := afero.ReadFile(fs, configPath)
	require.NoError(t, err)
	assert.Equal(t, "logo-history = []\n", string(data))
	entries, err := afero.ReadDir(fs, filepath.Dir(configPath))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}
