package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrOutsideBase is returned when a relative path escapes the storage root.
var ErrOutsideBase = errors.New("path escapes storage root")

// FileInfo describes one stored file relative to the storage root.
type FileInfo struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./filedir"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save writes data to the relative path under the base dir.
func (s *LocalStorage) Save(rel string, data []byte) (string, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return rel, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(rel string) (*os.File, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

// List returns the regular files directly under dir, oldest modification first.
// A missing directory is an empty area, not an error.
func (s *LocalStorage) List(dir string) ([]FileInfo, error) {
	full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			Path:     path.Join(filepath.ToSlash(dir), entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Modified.Equal(files[j].Modified) {
			return files[i].Name < files[j].Name
		}
		return files[i].Modified.Before(files[j].Modified)
	})
	return files, nil
}

// DeleteDir removes a directory tree if present.
func (s *LocalStorage) DeleteDir(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if full == filepath.Clean(s.baseDir) {
		return ErrOutsideBase
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("delete directory: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", rel, ErrOutsideBase)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
