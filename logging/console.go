package logging

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// consoleSink writes formatted lines straight to an io.Writer,
// matching the teacher's terminal_output.go habit of flushing each
// line immediately rather than buffering across calls. ANSI SGR color
// prefixes are only emitted when the destination was detected as a
// real terminal at construction time.
type consoleSink struct {
	out   io.Writer
	color bool
}

func newConsoleSink() *consoleSink {
	return &consoleSink{
		out:   os.Stdout,
		color: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (c *consoleSink) write(prefix string, level Level, message string) {
	if c.color {
		fmt.Fprintf(c.out, "%s[%s]\033[0m %s%s\n", level.ansiColor(), level, prefix, message)
		return
	}
	fmt.Fprintf(c.out, "[%s] %s%s\n", level, prefix, message)
}
