package console

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/term"
)

// KeyReader delivers one keypress at a time.
type KeyReader interface {
	ReadKey() (byte, error)
}

// NewKeyReader returns a KeyReader for f. When f is a real terminal the
// reader flips it into raw mode around each read so a single keypress is
// enough; otherwise (pipes, tests) it falls back to reading bytes from a
// buffered stream.
func NewKeyReader(f *os.File) KeyReader {
	if term.IsTerminal(int(f.Fd())) {
		return &terminalKeys{f: f}
	}
	return &streamKeys{r: bufio.NewReader(f)}
}

// StreamKeys wraps any reader as a KeyReader. Used by tests to script input.
func StreamKeys(r io.Reader) KeyReader {
	return &streamKeys{r: bufio.NewReader(r)}
}

type terminalKeys struct {
	f *os.File
}

func (t *terminalKeys) ReadKey() (byte, error) {
	fd := int(t.f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return 0, err
	}
	defer term.Restore(fd, oldState)

	var buf [1]byte
	if _, err := t.f.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

type streamKeys struct {
	r *bufio.Reader
}

// ReadKey skips line endings so scripted input can put one key per line.
func (s *streamKeys) ReadKey() (byte, error) {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == '\n' || b == '\r' {
			continue
		}
		return b, nil
	}
}
