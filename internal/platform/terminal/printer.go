// Package terminal prints command replies to a console.
package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/models"
	"github.com/aleister1102/globalping-bots/internal/orchestrator"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// UseColor reports whether styled output should be written to w.
func UseColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(w)
}

// Printer writes replies, styled when color is on. Probe output itself is
// never styled so it can be copied verbatim.
type Printer struct {
	w     io.Writer
	color bool

	header  lipgloss.Style
	failed  lipgloss.Style
	errText lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		color:   color,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		failed:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		errText: r.NewStyle().Foreground(lipgloss.Color("9")),
		muted:   r.NewStyle().Faint(true),
	}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Print writes reply followed by a newline.
func (p *Printer) Print(reply orchestrator.Reply) error {
	var b strings.Builder

	switch {
	case reply.Kind == orchestrator.KindMeasurement:
		out := reply.Output
		for i, s := range out.Sections {
			if i > 0 {
				b.WriteString("\n")
			}
			header := "> " + s.Header
			if s.Failed {
				b.WriteString(p.style(p.failed, header+" (failed)"))
			} else {
				b.WriteString(p.style(p.header, header))
			}
			b.WriteString("\n")
			b.WriteString(s.Body)
			b.WriteString("\n")
		}
		if out.Hidden > 0 {
			b.WriteString("\n")
			b.WriteString(p.style(p.muted, fmt.Sprintf("%d more probe(s) not shown", out.Hidden)))
			b.WriteString("\n")
		}
		if out.Footer != "" {
			b.WriteString("\n")
			b.WriteString(p.style(p.muted, out.Footer))
			b.WriteString("\n")
		}
	case reply.IsError:
		b.WriteString(p.style(p.errText, reply.Text))
		b.WriteString("\n")
	default:
		b.WriteString(reply.Text)
		b.WriteString("\n")
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

// FormatRequest renders what a command would send: the measurement payload
// for measurements, the command name otherwise. Output is indented when
// pretty is set.
func FormatRequest(req models.Request, pretty bool) ([]byte, error) {
	var v interface{} = map[string]string{"command": req.Command()}
	if m, ok := req.(models.Measurement); ok {
		v = m.Payload()
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to encode request")
	}
	return data, nil
}
