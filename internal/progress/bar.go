package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const (
	defaultBarWidth = 30
	minTermWidth    = 40
)

// Bar draws a single-line progress bar on a terminal. On anything else it
// prints one plain line per update.
type Bar struct {
	out      io.Writer
	tty      bool
	width    int
	lastLine int
}

// NewBar creates a bar writing to out. TTY rendering is used only when out
// is an *os.File attached to a terminal.
func NewBar(out io.Writer) *Bar {
	b := &Bar{out: out, width: defaultBarWidth}
	if f, ok := out.(*os.File); ok && IsTerminal(f) {
		b.tty = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w >= minTermWidth {
			b.width = w / 3
		}
	}
	return b
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Report draws the update.
func (b *Bar) Report(percent float64, message string) {
	if !b.tty {
		fmt.Fprintf(b.out, "[%3.0f%%] %s\n", percent, message)
		return
	}
	filled := int(percent / 100 * float64(b.width))
	if filled > b.width {
		filled = b.width
	}
	if filled < 0 {
		filled = 0
	}
	line := fmt.Sprintf("[%s%s] %3.0f%% %s",
		strings.Repeat("=", filled), strings.Repeat(" ", b.width-filled), percent, message)
	pad := ""
	if n := b.lastLine - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	b.lastLine = len(line)
	fmt.Fprintf(b.out, "\r%s%s", line, pad)
}

// Done ends the bar line so following output starts on a fresh line.
func (b *Bar) Done() {
	if b.tty && b.lastLine > 0 {
		fmt.Fprintln(b.out)
		b.lastLine = 0
	}
}
