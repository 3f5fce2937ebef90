// Package localfs persists analysis artifacts on the local filesystem.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./outputs"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create outputs dir: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve outputs dir: %w", err)
	}
	return &Storage{basePath: abs}, nil
}

// Path returns the absolute destination for an artifact name without
// creating it.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

func (s *Storage) WriteFile(_ context.Context, name string, data []byte) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
