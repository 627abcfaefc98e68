package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/boardcopy/internal/console"
	"github.com/vk/boardcopy/internal/trello"
)

// fakeTrello serves a small fixed world: one template board with three lists
// and whatever destination boards the test registers.
type fakeTrello struct {
	mu sync.Mutex

	searches map[string][]trello.Board
	lists    map[string][]trello.List
	cards    map[string][]trello.Card

	createdLists []string // "<boardID>/<name>" in call order
	copiedCards  int
	nextID       int
}

func (f *fakeTrello) Me(context.Context) (*trello.Member, error) {
	return &trello.Member{ID: "m1", Username: "copier"}, nil
}

func (f *fakeTrello) SearchBoards(_ context.Context, query string) ([]trello.Board, error) {
	return f.searches[query], nil
}

func (f *fakeTrello) BoardLists(_ context.Context, boardID string) ([]trello.List, error) {
	return f.lists[boardID], nil
}

func (f *fakeTrello) BoardLabels(context.Context, string) ([]trello.Label, error) {
	return nil, nil
}

func (f *fakeTrello) BoardMembers(context.Context, string) ([]trello.Member, error) {
	return nil, nil
}

func (f *fakeTrello) ListCards(_ context.Context, listID string) ([]trello.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cards[listID], nil
}

func (f *fakeTrello) CreateList(_ context.Context, boardID, name string) (*trello.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("new-%d", f.nextID)
	f.createdLists = append(f.createdLists, boardID+"/"+name)
	return &trello.List{ID: id, Name: name, IDBoard: boardID}, nil
}

func (f *fakeTrello) CopyCard(_ context.Context, sourceCardID, destListID string, _, _ []string) (*trello.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copiedCards++
	f.cards[destListID] = append(f.cards[destListID], trello.Card{ID: "copy-of-" + sourceCardID})
	return &trello.Card{ID: "copy-of-" + sourceCardID, IDList: destListID}, nil
}

func (f *fakeTrello) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createdLists) + f.copiedCards
}

func defaultWorld() *fakeTrello {
	return &fakeTrello{
		searches: map[string][]trello.Board{
			"Template": {{ID: "tpl", Name: "Template", URL: "https://trello.com/b/tpl"}},
			"Team A":   {{ID: "da", Name: "Team A", URL: "https://trello.com/b/da"}},
			"Team B":   {{ID: "db", Name: "Team B", URL: "https://trello.com/b/db"}},
		},
		lists: map[string][]trello.List{
			"tpl": {
				{ID: "l1", Name: "Backlog", IDBoard: "tpl", Pos: 1},
				{ID: "l2", Name: "Doing", IDBoard: "tpl", Pos: 2},
				{ID: "l3", Name: "Done", IDBoard: "tpl", Pos: 3},
			},
		},
		cards: map[string][]trello.Card{
			"l1": {{ID: "c1", Name: "Task", IDList: "l1", Pos: 1}},
		},
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boardcopy.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func configJSON(destinations ...string) string {
	quoted := make([]string, len(destinations))
	for i, d := range destinations {
		quoted[i] = fmt.Sprintf("%q", d)
	}
	return fmt.Sprintf(`{
		"api_key": "key",
		"api_token": "token",
		"template_board": "Template",
		"target_lists": ["Backlog", "Doing"],
		"destination_boards": [%s],
		"keep_listed": true,
		"copy_cards": true
	}`, strings.Join(quoted, ", "))
}

// newTestApp builds an App around a fake client and scripted key input.
func newTestApp(t *testing.T, fake *fakeTrello, cfg Config, input string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &App{
		outW:    out,
		logger:  newLogger("error", "text", out),
		printer: console.NewPrinter(out),
		keys:    console.StreamKeys(strings.NewReader(input)),
		cfg:     &cfg,
		dial:    func(_, _ string) api { return fake },
	}, out
}

func TestRun_CopiesToAllDestinations(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	a, out := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Team A", "Team B")),
		AssumeYes:  true,
	}, "")

	require.NoError(t, a.Run(context.Background()))

	printed := out.String()
	assert.Contains(t, printed, "Authenticated as copier.")
	assert.Contains(t, printed, "Found 2 out of 2 destination boards.")
	assert.Contains(t, printed, "Copied to 2 of 2 boards.")

	// Per destination: spacer + Backlog + Doing.
	assert.Len(t, fake.createdLists, 6)
	assert.Contains(t, fake.createdLists, "da/Backlog")
	assert.Contains(t, fake.createdLists, "db/Doing")
	// One card on Backlog, copied once per destination.
	assert.Equal(t, 2, fake.copiedCards)
}

func TestRun_UnresolvableDestinationIsSkipped(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	a, out := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Team A", "Ghost")),
		AssumeYes:  true,
	}, "")

	require.NoError(t, a.Run(context.Background()), "a skipped destination must not fail the run")

	printed := out.String()
	assert.Contains(t, printed, "Found 1 out of 2 destination boards.")
	assert.Contains(t, printed, "Copied to 1 of 2 boards.")
	assert.NotContains(t, strings.Join(fake.createdLists, " "), "Ghost")
}

func TestRun_TemplateNotFoundAbortsBeforeMutation(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	delete(fake.searches, "Template")
	a, _ := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Team A")),
		AssumeYes:  true,
	}, "")

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, fake.mutations(), "no destination may be touched when resolution fails")
}

func TestRun_DryRunMutatesNothing(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	a, out := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Team A")),
		DryRun:     true,
	}, "")

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Dry run, nothing copied.")
	assert.Equal(t, 0, fake.mutations())
}

func TestRun_ConfirmationGateAbortsOnAnyOtherKey(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	a, out := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Team A")),
	}, "n")

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Aborted, nothing copied.")
	assert.Equal(t, 0, fake.mutations())
}

func TestRun_ConfirmationGateAcceptsY(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	a, out := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Team A")),
	}, "y")

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Copied to 1 of 1 boards.")
	assert.Greater(t, fake.mutations(), 0)
}

func TestRun_AmbiguousTemplateUsesChooser(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	fake.searches["Template"] = []trello.Board{
		{ID: "other", Name: "Template Archive"},
		{ID: "tpl", Name: "Template"},
	}

	// First key picks candidate 1 (the real template), second confirms.
	a, out := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Team A")),
	}, "1y")

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Copied to 1 of 1 boards.")
	assert.Contains(t, fake.createdLists, "da/Backlog")
}

func TestRun_NoDestinationsResolvedIsFatal(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	a, _ := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, configJSON("Ghost")),
		AssumeYes:  true,
	}, "")

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the destination boards")
}

func TestRun_CardCopyDisabledByConfig(t *testing.T) {
	t.Parallel()

	fake := defaultWorld()
	a, _ := newTestApp(t, fake, Config{
		ConfigPath: writeConfig(t, `{
			"api_key": "key",
			"api_token": "token",
			"template_board": "Template",
			"target_lists": ["Backlog"],
			"destination_boards": ["Team A"],
			"keep_listed": true
		}`),
		AssumeYes: true,
	}, "")

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 0, fake.copiedCards)
	assert.Len(t, fake.createdLists, 2) // spacer + Backlog
}
