// Package copier replicates the filtered template lists (and optionally
// their cards) onto destination boards with a bounded worker pool. Boards
// share no mutable state; each worker owns one destination board and its own
// source-list to destination-list id map, so no locking is needed beyond the
// concurrency gate itself.
package copier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/vk/boardcopy/internal/console"
	"github.com/vk/boardcopy/internal/copyplan"
	"github.com/vk/boardcopy/internal/ctxlog"
	"github.com/vk/boardcopy/internal/trello"
)

// API is the slice of the Trello client the engine mutates boards through.
type API interface {
	CreateList(ctx context.Context, boardID, name string) (*trello.List, error)
	ListCards(ctx context.Context, listID string) ([]trello.Card, error)
	BoardLabels(ctx context.Context, boardID string) ([]trello.Label, error)
	BoardMembers(ctx context.Context, boardID string) ([]trello.Member, error)
	CopyCard(ctx context.Context, sourceCardID, destListID string, labelIDs, memberIDs []string) (*trello.Card, error)
}

// BoardReport is the outcome of copying to one destination board. Err is set
// when the board's copy sequence aborted; whatever was created before the
// failure stays in place for manual inspection. Warnings are non-fatal
// findings like card-count mismatches.
type BoardReport struct {
	Board        trello.Board
	Err          error
	ListsCreated int
	CardsCopied  int
	Warnings     []string
}

// Engine drives the copy phase.
type Engine struct {
	api     API
	printer *console.Printer
	workers int64
}

// New builds an Engine copying through api with at most workers concurrent
// destination boards.
func New(api API, printer *console.Printer, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{api: api, printer: printer, workers: int64(workers)}
}

// CopyAll copies the plan to every destination board. Boards run
// concurrently up to the worker bound; a failure on one board never cancels
// the others. Reports come back in destination order.
func (e *Engine) CopyAll(ctx context.Context, plan copyplan.Plan, dests []trello.Board) []BoardReport {
	sem := semaphore.NewWeighted(e.workers)
	reports := make([]BoardReport, len(dests))

	var wg sync.WaitGroup
	for i := range dests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				reports[i] = BoardReport{Board: dests[i], Err: err}
				return
			}
			defer sem.Release(1)
			reports[i] = e.copyBoard(ctx, plan, dests[i])
		}(i)
	}
	wg.Wait()

	return reports
}

// copyBoard runs one destination board's strictly sequential copy sequence:
// spacer list first, then each template list in source order, then that
// list's cards in source order.
func (e *Engine) copyBoard(ctx context.Context, plan copyplan.Plan, board trello.Board) BoardReport {
	logger := ctxlog.FromContext(ctx).With("board", board.Name)
	report := BoardReport{Board: board}

	var (
		destLabels  map[string]string
		destMembers map[string]struct{}
	)
	if plan.CopyCards {
		var err error
		destLabels, destMembers, err = e.fetchReconcileSets(ctx, board.ID)
		if err != nil {
			report.Err = err
			return report
		}
	}

	e.printer.Plainf("%s: copying %d lists...", board.Name, len(plan.Lists))

	if _, err := e.api.CreateList(ctx, board.ID, plan.SpacerName); err != nil {
		report.Err = fmt.Errorf("create spacer list: %w", err)
		return report
	}

	// Local to this board's worker; later card copies address the new lists
	// through it.
	listIDs := make(map[string]string, len(plan.Lists))

	for _, src := range plan.Lists {
		created, err := e.api.CreateList(ctx, board.ID, src.Name)
		if err != nil {
			report.Err = fmt.Errorf("create list %q: %w", src.Name, err)
			return report
		}
		listIDs[src.ID] = created.ID
		report.ListsCreated++
		logger.Debug("List created on destination.", "list", src.Name)

		if !plan.CopyCards {
			continue
		}

		cards := plan.Cards[src.ID]
		for _, card := range cards {
			labelIDs := reconcileLabels(card.Labels, destLabels)
			memberIDs := reconcileMembers(card.IDMembers, destMembers)
			if _, err := e.api.CopyCard(ctx, card.ID, listIDs[src.ID], labelIDs, memberIDs); err != nil {
				report.Err = fmt.Errorf("copy card %q to list %q: %w", card.Name, src.Name, err)
				return report
			}
			report.CardsCopied++
		}

		e.verifyCardCount(ctx, board, src.Name, created.ID, len(cards), &report)
	}

	return report
}

// fetchReconcileSets loads the destination board's labels (by name) and
// member ids. Cards carry their source board's label and member ids, which
// mean nothing on the destination; labels of the same name migrate and
// members survive only when they are on the destination board.
func (e *Engine) fetchReconcileSets(ctx context.Context, boardID string) (map[string]string, map[string]struct{}, error) {
	labels, err := e.api.BoardLabels(ctx, boardID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch destination labels: %w", err)
	}
	byName := make(map[string]string, len(labels))
	for _, l := range labels {
		if l.Name == "" {
			continue
		}
		if _, ok := byName[l.Name]; !ok {
			byName[l.Name] = l.ID
		}
	}

	members, err := e.api.BoardMembers(ctx, boardID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch destination members: %w", err)
	}
	ids := make(map[string]struct{}, len(members))
	for _, m := range members {
		ids[m.ID] = struct{}{}
	}

	return byName, ids, nil
}

// verifyCardCount re-fetches the freshly copied list and warns when not all
// cards landed. Mismatches never stop the run.
func (e *Engine) verifyCardCount(ctx context.Context, board trello.Board, listName, listID string, want int, report *BoardReport) {
	got, err := e.api.ListCards(ctx, listID)
	if err != nil {
		warning := fmt.Sprintf("%s: could not verify card count on list %q: %v", board.Name, listName, err)
		report.Warnings = append(report.Warnings, warning)
		e.printer.Warnf("%s", warning)
		return
	}
	if len(got) != want {
		warning := fmt.Sprintf("%s: list %q has %d cards, expected %d", board.Name, listName, len(got), want)
		report.Warnings = append(report.Warnings, warning)
		e.printer.Warnf("%s", warning)
	}
}

func reconcileLabels(labels []trello.Label, destByName map[string]string) []string {
	var ids []string
	for _, l := range labels {
		if id, ok := destByName[l.Name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func reconcileMembers(memberIDs []string, destIDs map[string]struct{}) []string {
	var ids []string
	for _, id := range memberIDs {
		if _, ok := destIDs[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
