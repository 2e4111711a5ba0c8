package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/timer"
	"github.com/google/renameio/v2"
)

// FileStateRepo implements timer.StateStore as two JSON files in dir.
// Writes go through renameio so a crash mid-write leaves the previous file
// intact instead of a truncated one.
type FileStateRepo struct {
	dir string
}

// NewFileStateRepo creates dir if needed and returns a repo rooted there.
func NewFileStateRepo(dir string) (*FileStateRepo, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStateRepo{dir: dir}, nil
}

var _ timer.StateStore = (*FileStateRepo)(nil)

func (r *FileStateRepo) path(slot string) string {
	return filepath.Join(r.dir, slot+".json")
}

func (r *FileStateRepo) LoadActive(context.Context) (*domain.Session, error) {
	var s domain.Session
	found, err := r.read(slotActiveSession, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *FileStateRepo) SaveActive(_ context.Context, s *domain.Session) error {
	return r.write(slotActiveSession, s)
}

func (r *FileStateRepo) ClearActive(context.Context) error {
	if err := os.Remove(r.path(slotActiveSession)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", slotActiveSession, err)
	}
	return nil
}

func (r *FileStateRepo) LoadStack(context.Context) (*domain.StackState, error) {
	var st domain.StackState
	found, err := r.read(slotSuspendedStack, &st)
	if err != nil || !found {
		return nil, err
	}
	return &st, nil
}

func (r *FileStateRepo) SaveStack(_ context.Context, st *domain.StackState) error {
	return r.write(slotSuspendedStack, st)
}

func (r *FileStateRepo) read(slot string, v any) (bool, error) {
	data, err := os.ReadFile(r.path(slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", slot, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decoding %s: %v", timer.ErrCorruptState, slot, err)
	}
	return true, nil
}

func (r *FileStateRepo) write(slot string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", slot, err)
	}

	pending, err := renameio.NewPendingFile(r.path(slot), renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("creating pending %s file: %w", slot, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", slot, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing %s: %w", slot, err)
	}
	return nil
}
