package snapshot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sagenex/teamtree/pkg/errors"
)

// FileStore is a file-based snapshot store for CLI applications.
// Snapshots are stored as JSON files in a config directory, one
// subdirectory per owner.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.config/teamtree/snapshots (or the platform
// equivalent).
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate config dir")
	}
	return filepath.Join(dir, "teamtree", "snapshots"), nil
}

// NewFileStore creates a new file-based snapshot store.
// If baseDir is empty, [DefaultDir] is used.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create snapshot dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

// ownerDir returns the directory holding owner's snapshots. Member ids are
// arbitrary strings, so they are encoded into a filesystem-safe name.
// Snapshots without an owner live directly in the base directory.
func (s *FileStore) ownerDir(owner string) string {
	if owner == "" {
		return s.baseDir
	}
	return filepath.Join(s.baseDir, "m-"+base64.RawURLEncoding.EncodeToString([]byte(owner)))
}

// dirs lists the directories owner's snapshots can be in.
func (s *FileStore) dirs(owner string) ([]string, error) {
	if owner != "" {
		return []string{s.ownerDir(owner)}, nil
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read snapshot dir")
	}
	dirs := []string{s.baseDir}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "m-") {
			dirs = append(dirs, filepath.Join(s.baseDir, e.Name()))
		}
	}
	return dirs, nil
}

func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	if err := validateID(snap.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal snapshot")
	}

	dir := s.ownerDir(snap.Owner)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create snapshot dir")
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write snapshot")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write snapshot")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, snap.ID+".json")); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write snapshot")
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, owner, id string) (*Snapshot, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirs, err := s.dirs(owner)
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		snap, err := s.read(filepath.Join(dir, id+".json"), id)
		if errors.Is(err, errors.ErrCodeSnapshotNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !owns(owner, snap) {
			break
		}
		return snap, nil
	}
	return nil, notFound(id)
}

func (s *FileStore) read(path, id string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read snapshot file")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse snapshot %s", filepath.Base(path))
	}
	return &snap, nil
}

// List reads owner's snapshot files; unreadable files are skipped.
func (s *FileStore) List(_ context.Context, owner string, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirs, err := s.dirs(owner)
	if err != nil {
		return nil, err
	}

	var out []*Snapshot
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "read snapshot dir")
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".json" {
				continue
			}
			id := strings.TrimSuffix(name, ".json")
			if validateID(id) != nil {
				continue
			}
			snap, err := s.read(filepath.Join(dir, name), id)
			if err != nil || !owns(owner, snap) {
				continue
			}
			out = append(out, snap)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TakenAt.Equal(out[j].TakenAt) {
			return out[i].TakenAt.After(out[j].TakenAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FileStore) Latest(ctx context.Context, owner string) (*Snapshot, error) {
	snaps, err := s.List(ctx, owner, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshots in %s", s.baseDir)
	}
	return snaps[0], nil
}

func (s *FileStore) Delete(ctx context.Context, owner, id string) error {
	snap, err := s.Get(ctx, owner, id)
	if errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.ownerDir(snap.Owner), id+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove snapshot file")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
