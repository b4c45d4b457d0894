package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/config"
)

const (
	stagingSuffix = ".building"
	retiredSuffix = ".old"
)

// Staging is a Pair built in scratch directories beside the live indices.
// Nothing at the live paths changes until Commit, so a rebuild never
// inherits documents from the catalog it replaces.
type Staging struct {
	*Pair
	live   config.IndexConfig
	staged config.IndexConfig
	closed bool
}

// OpenStaging opens an empty pair for a full rebuild of the indices
// described by cfg. Leftovers from an interrupted rebuild are removed first.
// In-memory indices (empty paths) are built directly.
func OpenStaging(cfg config.IndexConfig) (*Staging, error) {
	staged := cfg
	staged.WordPath = stagingPath(cfg.WordPath)
	staged.PhrasePath = stagingPath(cfg.PhrasePath)
	for _, p := range []string{staged.WordPath, staged.PhrasePath} {
		if p == "" {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return nil, fmt.Errorf("clearing staging directory %s: %w", p, err)
		}
	}
	pair, err := OpenPair(staged)
	if err != nil {
		return nil, err
	}
	return &Staging{Pair: pair, live: cfg, staged: staged}, nil
}

// Commit closes the staged pair and moves it over the live paths. The
// previous indices are kept under a ".old" suffix until the swap succeeds.
func (s *Staging) Commit() error {
	if err := s.close(); err != nil {
		return fmt.Errorf("closing staged indices: %w", err)
	}
	for _, paths := range [][2]string{
		{s.staged.WordPath, s.live.WordPath},
		{s.staged.PhrasePath, s.live.PhrasePath},
	} {
		if err := swap(paths[0], paths[1]); err != nil {
			return err
		}
	}
	return nil
}

// Discard closes the staged pair and removes its directories, leaving the
// live indices untouched. It is safe to call after Commit.
func (s *Staging) Discard() error {
	err := s.close()
	for _, p := range []string{s.staged.WordPath, s.staged.PhrasePath} {
		if p == "" {
			continue
		}
		err = errors.Join(err, os.RemoveAll(p))
	}
	return err
}

func (s *Staging) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.Pair.Close()
}

func stagingPath(live string) string {
	if live == "" {
		return ""
	}
	return live + stagingSuffix
}

func swap(staged, live string) error {
	if live == "" {
		return nil
	}
	retired := live + retiredSuffix
	if err := os.RemoveAll(retired); err != nil {
		return fmt.Errorf("clearing %s: %w", retired, err)
	}
	hadLive := true
	if err := os.Rename(live, retired); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("retiring %s: %w", live, err)
		}
		hadLive = false
	}
	if err := os.Rename(staged, live); err != nil {
		if hadLive {
			if rerr := os.Rename(retired, live); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}
		return fmt.Errorf("installing %s: %w", live, err)
	}
	if hadLive {
		if err := os.RemoveAll(retired); err != nil {
			slog.Warn("failed to remove retired index", "path", retired, "error", err)
		}
	}
	return nil
}
