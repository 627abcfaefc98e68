// Package resolver turns free-text board names into single boards. The
// interactive disambiguation step is injected as a Chooser so the resolution
// rules are testable without a terminal.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/boardcopy/internal/ctxlog"
	"github.com/vk/boardcopy/internal/trello"
)

// MaxCandidates caps how many search matches are still treated as a real
// board name. Anything past this is assumed to be a junk query.
const MaxCandidates = 10

var (
	// ErrNotFound means the search returned no boards.
	ErrNotFound = errors.New("no board matches the name")

	// ErrTooManyMatches means the search returned more than MaxCandidates
	// boards.
	ErrTooManyMatches = errors.New("too many boards match the name")

	// ErrSkipped marks a destination board that could not be resolved to a
	// single board. Destination resolution failures are non-fatal; callers
	// skip the board and continue.
	ErrSkipped = errors.New("destination board skipped")
)

// Searcher is the slice of the Trello client the resolver needs.
type Searcher interface {
	SearchBoards(ctx context.Context, query string) ([]trello.Board, error)
}

// Chooser picks one board out of an ambiguous candidate set and returns its
// index. The console implementation blocks on keypresses; tests supply a
// scripted function.
type Chooser func(candidates []trello.Board) (int, error)

// Resolver resolves board names against a Searcher.
type Resolver struct {
	search Searcher
	choose Chooser
}

// New builds a Resolver. choose is only invoked for ambiguous template-board
// searches.
func New(search Searcher, choose Chooser) *Resolver {
	return &Resolver{search: search, choose: choose}
}

// Template resolves the template board. Zero matches and more than
// MaxCandidates matches are fatal; a single match is auto-selected; anything
// in between goes through the chooser.
func (r *Resolver) Template(ctx context.Context, name string) (*trello.Board, error) {
	boards, err := r.search.SearchBoards(ctx, name)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	switch {
	case len(boards) == 0:
		return nil, fmt.Errorf("template board %q: %w", name, ErrNotFound)
	case len(boards) > MaxCandidates:
		return nil, fmt.Errorf("template board %q: %d matches: %w", name, len(boards), ErrTooManyMatches)
	case len(boards) == 1:
		logger.Debug("Template board resolved by single match.", "name", name, "board", boards[0].ID)
		return &boards[0], nil
	}

	idx, err := r.choose(boards)
	if err != nil {
		return nil, fmt.Errorf("template board %q: choose among %d candidates: %w", name, len(boards), err)
	}
	if idx < 0 || idx >= len(boards) {
		return nil, fmt.Errorf("template board %q: chooser returned index %d out of range", name, idx)
	}
	logger.Debug("Template board resolved interactively.", "name", name, "board", boards[idx].ID)
	return &boards[idx], nil
}

// Destination resolves a destination board. A single match wins; among
// several matches an exact-name match wins; everything else returns
// ErrSkipped so the caller can drop the board and keep going.
func (r *Resolver) Destination(ctx context.Context, name string) (*trello.Board, error) {
	boards, err := r.search.SearchBoards(ctx, name)
	if err != nil {
		return nil, err
	}

	switch {
	case len(boards) == 0:
		return nil, fmt.Errorf("destination board %q: %w: %w", name, ErrNotFound, ErrSkipped)
	case len(boards) == 1:
		return &boards[0], nil
	}

	for i := range boards {
		if boards[i].Name == name {
			return &boards[i], nil
		}
	}
	return nil, fmt.Errorf("destination board %q: %d matches and none exact: %w", name, len(boards), ErrSkipped)
}
