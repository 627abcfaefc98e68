// Package app wires the application together: it owns the logger, loads the
// file configuration, builds the Trello client, and drives the linear
// resolve-filter-confirm-copy workflow.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/boardcopy/internal/config"
	"github.com/vk/boardcopy/internal/console"
	"github.com/vk/boardcopy/internal/copier"
	"github.com/vk/boardcopy/internal/copyplan"
	"github.com/vk/boardcopy/internal/ctxlog"
	"github.com/vk/boardcopy/internal/resolver"
	"github.com/vk/boardcopy/internal/trello"
)

// spacerListName labels the marker list created at the bottom of every
// destination board before anything is copied, so manually added lists stay
// visually separated from the copied block.
const spacerListName = "=== copied below ==="

// api is the full Trello surface the workflow consumes. *trello.Client
// satisfies it; tests swap in a fake.
type api interface {
	Me(ctx context.Context) (*trello.Member, error)
	SearchBoards(ctx context.Context, query string) ([]trello.Board, error)
	BoardLists(ctx context.Context, boardID string) ([]trello.List, error)
	BoardLabels(ctx context.Context, boardID string) ([]trello.Label, error)
	BoardMembers(ctx context.Context, boardID string) ([]trello.Member, error)
	ListCards(ctx context.Context, listID string) ([]trello.Card, error)
	CreateList(ctx context.Context, boardID, name string) (*trello.List, error)
	CopyCard(ctx context.Context, sourceCardID, destListID string, labelIDs, memberIDs []string) (*trello.Card, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	printer *console.Printer
	keys    console.KeyReader
	cfg     *Config

	// dial builds the API client from credentials. Tests replace it.
	dial func(key, token string) api
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		printer: console.NewPrinter(outW),
		keys:    console.NewKeyReader(os.Stdin),
		cfg:     cfg,
		dial: func(key, token string) api {
			return trello.NewClient(key, token)
		},
	}
}

// Run executes the whole workflow. A nil return means the run completed,
// possibly with skipped boards or count-mismatch warnings; errors are fatal
// conditions that aborted the run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	fileCfg, err := config.Load(ctx, a.cfg.ConfigPath)
	if err != nil {
		return err
	}

	workers := fileCfg.Workers
	if a.cfg.Workers > 0 {
		workers = a.cfg.Workers
	}
	copyCards := fileCfg.CopyCards
	if a.cfg.CopyCards != nil {
		copyCards = *a.cfg.CopyCards
	}

	client := a.dial(fileCfg.APIKey, fileCfg.APIToken)
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	member, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	a.printer.Plainf("Authenticated as %s.", member.Username)

	res := resolver.New(client, a.printer.BoardChooser(a.keys))

	template, err := res.Template(ctx, fileCfg.TemplateBoard)
	if err != nil {
		return err
	}

	lists, err := client.BoardLists(ctx, template.ID)
	if err != nil {
		return err
	}

	selected, err := copyplan.Filter(lists, fileCfg.TargetLists, fileCfg.KeepListed)
	if err != nil {
		return err
	}

	plan := copyplan.Plan{
		TemplateBoard: *template,
		Lists:         selected,
		SpacerName:    spacerListName,
		CopyCards:     copyCards,
	}
	if copyCards {
		plan.Cards = make(map[string][]trello.Card, len(selected))
		for _, l := range selected {
			cards, err := client.ListCards(ctx, l.ID)
			if err != nil {
				return err
			}
			copyplan.SortCards(cards)
			plan.Cards[l.ID] = cards
		}
	}

	dests := a.resolveDestinations(ctx, res, fileCfg.DestinationBoards)
	if len(dests) == 0 {
		return errors.New("none of the destination boards could be resolved")
	}

	a.printPlan(plan, dests, len(fileCfg.DestinationBoards))

	if a.cfg.DryRun {
		a.printer.Successf("Dry run, nothing copied.")
		return nil
	}

	if !a.cfg.AssumeYes {
		a.printer.Plainf("Proceed? [y/N]")
		ok, err := console.Confirm(a.keys)
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if !ok {
			a.printer.Plainf("Aborted, nothing copied.")
			return nil
		}
	}

	engine := copier.New(client, a.printer, workers)
	reports := engine.CopyAll(ctx, plan, dests)

	completed := 0
	for _, r := range reports {
		if r.Err != nil {
			a.printer.Warnf("%s: copy failed: %v", r.Board.Name, r.Err)
			continue
		}
		a.printer.Successf("%s: copied %d lists (%d cards).", r.Board.Name, r.ListsCreated, r.CardsCopied)
		completed++
	}
	a.printer.Successf("Copied to %d of %d boards.", completed, len(fileCfg.DestinationBoards))

	a.logger.Debug("App.Run method finished.")
	return nil
}

// resolveDestinations resolves every configured destination name, warning
// about and skipping the ones that don't resolve to a single board.
func (a *App) resolveDestinations(ctx context.Context, res *resolver.Resolver, names []string) []trello.Board {
	dests := make([]trello.Board, 0, len(names))
	for _, name := range names {
		board, err := res.Destination(ctx, name)
		if err != nil {
			if errors.Is(err, resolver.ErrSkipped) {
				a.printer.Warnf("Skipping: %v", err)
				continue
			}
			a.printer.Warnf("Skipping %q: search failed: %v", name, err)
			continue
		}
		dests = append(dests, *board)
	}
	a.printer.Plainf("Found %d out of %d destination boards.", len(dests), len(names))
	return dests
}

// printPlan shows what a confirmation would mutate.
func (a *App) printPlan(plan copyplan.Plan, dests []trello.Board, totalConfigured int) {
	a.printer.Headerf("Plan")
	a.printer.Plainf("Template board: %s (%s)", plan.TemplateBoard.Name, plan.TemplateBoard.URL)
	for _, l := range plan.Lists {
		if plan.CopyCards {
			a.printer.Plainf("  - %s (%d cards)", l.Name, len(plan.Cards[l.ID]))
		} else {
			a.printer.Plainf("  - %s", l.Name)
		}
	}
	a.printer.Plainf("Destinations (%d of %d configured):", len(dests), totalConfigured)
	for _, b := range dests {
		a.printer.Plainf("  - %s (%s)", b.Name, b.URL)
	}
	a.printer.Mutedf("A %q spacer list is created on each destination first.", plan.SpacerName)
}
