package console

import (
	"fmt"
	"io"
	"sync"
)

// Printer writes styled status lines. It serializes writes so copy workers
// reporting progress concurrently never interleave partial lines.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter builds a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// Plainf prints an unstyled status line.
func (p *Printer) Plainf(format string, args ...any) {
	p.print(fmt.Sprintf(format, args...))
}

// Headerf prints a bold section line.
func (p *Printer) Headerf(format string, args ...any) {
	p.print(headerStyle.Render(fmt.Sprintf(format, args...)))
}

// Successf prints a green confirmation line.
func (p *Printer) Successf(format string, args ...any) {
	p.print(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Warnf prints a red warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.print(warningStyle.Render(fmt.Sprintf(format, args...)))
}

// Mutedf prints a faint detail line.
func (p *Printer) Mutedf(format string, args ...any) {
	p.print(mutedStyle.Render(fmt.Sprintf(format, args...)))
}
