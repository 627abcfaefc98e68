// Package copyplan selects which template lists qualify for copying and
// carries the assembled plan into the copy phase.
package copyplan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/boardcopy/internal/trello"
)

// ErrEmptySelection means filtering left nothing to copy, which aborts the
// run before any destination is touched.
var ErrEmptySelection = errors.New("no template lists left after filtering")

// Filter returns the subset of lists to copy, sorted ascending by source
// position. With keepListed set, only lists whose name is in names survive;
// otherwise every list except those named survives. The input slice is not
// modified. Filter is a pure function: applying it twice yields the same
// result as applying it once.
func Filter(lists []trello.List, names []string, keepListed bool) ([]trello.List, error) {
	nameSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		nameSet[n] = struct{}{}
	}

	sorted := make([]trello.List, len(lists))
	copy(sorted, lists)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })

	selected := make([]trello.List, 0, len(sorted))
	for _, l := range sorted {
		_, listed := nameSet[l.Name]
		if listed == keepListed {
			selected = append(selected, l)
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("filter template lists: %w", ErrEmptySelection)
	}
	return selected, nil
}

// Plan is everything the copy engine needs from the template side. Cards is
// only populated when card copying is enabled, keyed by template list id and
// sorted by source position.
type Plan struct {
	TemplateBoard trello.Board
	Lists         []trello.List
	Cards         map[string][]trello.Card
	SpacerName    string
	CopyCards     bool
}

// SortCards orders a list's cards ascending by position, in place.
func SortCards(cards []trello.Card) {
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Pos < cards[j].Pos })
}
