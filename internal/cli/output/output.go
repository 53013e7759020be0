// Package output renders CLI results in one of three modes, auto-detected
// from whether stdout is a terminal (SPEC_FULL.md §10/§11, grounded on the
// teacher's `internal/cli/output`, generalized from model/DAG-specific
// renderers to manifest/compile/run results for this domain).
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode selects how a Renderer formats output.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Styles bundles the lipgloss styles a text-mode render uses.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles() Styles {
	return Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Renderer writes command output to out (and diagnostics to errOut) in one
// of Mode's formats.
type Renderer struct {
	out, errOut io.Writer
	mode        Mode
	styles      Styles
}

// NewRenderer creates a Renderer. A nil mode (empty string) behaves as
// ModeAuto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, styles: newStyles()}
}

// EffectiveMode resolves ModeAuto against whether out is a terminal: an
// interactive terminal gets styled text, anything piped or redirected gets
// markdown (agent- and script-friendly), matching the teacher's
// terminal-vs-piped convention.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		return ModeText
	}
	return ModeMarkdown
}

func (r *Renderer) Styles() Styles { return r.styles }
func (r *Renderer) Writer() io.Writer { return r.out }

func (r *Renderer) Println(s string)          { fmt.Fprintln(r.out, s) }
func (r *Renderer) Printf(f string, a ...any)  { fmt.Fprintf(r.out, f, a...) }
func (r *Renderer) Warning(s string)           { fmt.Fprintln(r.errOut, r.styles.Warning.Render("warning: "+s)) }
func (r *Renderer) ErrorLine(s string)         { fmt.Fprintln(r.errOut, r.styles.Error.Render("error: "+s)) }

// Header prints a level-N heading, styled in text mode.
func (r *Renderer) Header(level int, title string) {
	style := r.styles.Header2
	if level == 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(title))
}

// JSON encodes v to out with two-space indentation.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader renders a markdown heading of the given level.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown bullet "- **key**: value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}
