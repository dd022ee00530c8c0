package patch

import (
	"bufio"
	"os"

	"golang.org/x/term"
)

// TerminalKeyReader reads single keystrokes from stdin, switching the
// terminal into raw mode per read when stdin is a TTY. Piped input falls
// back to buffered reads so tests and scripts still work.
type TerminalKeyReader struct {
	reader *bufio.Reader
}

// NewTerminalKeyReader creates a keystroke reader over stdin.
func NewTerminalKeyReader() *TerminalKeyReader {
	return &TerminalKeyReader{reader: bufio.NewReader(os.Stdin)}
}

// ReadKey returns the next keystroke.
func (t *TerminalKeyReader) ReadKey() (rune, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err == nil {
			defer func() { _ = term.Restore(fd, state) }()
		}
	}
	r, _, err := t.reader.ReadRune()
	return r, err
}

// IsInteractive reports whether stdin is a terminal, i.e. whether
// interactive fix application can prompt the user at all.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
