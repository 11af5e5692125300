package sink

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	styleFinal   = lipgloss.NewStyle().Bold(true)
	stylePartial = lipgloss.NewStyle().Faint(true)
)

// Console writes final results as newline-terminated lines and partial
// results as an in-place overwritten line. Purely a display affordance:
// session correctness does not depend on it.
type Console struct {
	out      *termenv.Output
	lineOpen bool
}

func NewConsole(w io.Writer) *Console {
	return &Console{out: termenv.NewOutput(w)}
}

func (c *Console) Deliver(r Result) error {
	if r.Final {
		c.clearPartialLine()
		_, err := c.out.WriteString(fmt.Sprintf("%s %s\n", styleFinal.Render("Final:"), r.Text))
		return err
	}

	c.clearPartialLine()
	_, err := c.out.WriteString(fmt.Sprintf("\r%s %s", stylePartial.Render("Partial:"), r.Text))
	c.lineOpen = true
	return err
}

// Close terminates a dangling partial line so the shell prompt starts clean.
func (c *Console) Close() error {
	if !c.lineOpen {
		return nil
	}
	c.lineOpen = false
	_, err := c.out.WriteString("\n")
	return err
}

func (c *Console) clearPartialLine() {
	if !c.lineOpen {
		return
	}
	c.out.WriteString("\r")
	c.out.ClearLine()
	c.lineOpen = false
}
