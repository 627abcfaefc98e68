package console

import (
	"github.com/vk/boardcopy/internal/trello"
)

// BoardChooser returns a chooser that prints the ambiguous candidates once,
// indexed 0-9, and then blocks on numeric keypresses until one names a
// candidate. Invalid keys are ignored without a re-prompt.
func (p *Printer) BoardChooser(keys KeyReader) func(candidates []trello.Board) (int, error) {
	return func(candidates []trello.Board) (int, error) {
		p.Headerf("Several boards match; pick one:")
		for i, b := range candidates {
			p.Plainf("  [%d] %s", i, b.Name)
			p.Mutedf("      %s", b.URL)
		}

		for {
			key, err := keys.ReadKey()
			if err != nil {
				return 0, err
			}
			idx := int(key - '0')
			if idx >= 0 && idx < len(candidates) {
				return idx, nil
			}
		}
	}
}

// Confirm blocks for one keypress and reports whether it was the accept key.
// Anything other than y/Y aborts.
func Confirm(keys KeyReader) (bool, error) {
	key, err := keys.ReadKey()
	if err != nil {
		return false, err
	}
	return key == 'y' || key == 'Y', nil
}
