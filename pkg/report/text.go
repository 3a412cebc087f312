package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/crimsonvanitas/brew/pkg/toolchain"
	"github.com/crimsonvanitas/brew/pkg/types"
)

const absent = "(none)"

type textRenderer struct {
	w      io.Writer
	styles *Styles
}

func newText(w io.Writer, styled bool) *textRenderer {
	r := lipgloss.NewRenderer(w)
	if styled {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &textRenderer{w: w, styles: DefaultStyles(r)}
}

func (t *textRenderer) line(format string, args ...interface{}) {
	fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *textRenderer) rel(root, path string) string {
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

func show(v *string) string {
	if v == nil {
		return absent
	}
	return *v
}

func (t *textRenderer) Summary(s *types.Summary) error {
	st := t.styles
	header := fmt.Sprintf("%s  %s -> %s", st.Render("Header", s.Package), s.Mapping.Old, s.Mapping.New)
	if s.DryRun {
		header += "  " + st.Render("DryRunBanner", "(dry run)")
	}
	t.line("%s", header)

	switch {
	case s.SkippedByPolicy != "":
		t.line("  %s", st.Render("Warning", "skipped: "+s.SkippedByPolicy))
		return nil
	case s.Identity:
		t.line("  %s", st.Render("Muted", "prefixes are identical, nothing to relocate"))
		return nil
	}

	for _, c := range s.Relocated {
		t.line("  %s %s", st.Render("Success", "relocated"), st.Render("FilePath", t.rel(s.Root, c.Path)))
		if c.NewRPath != nil {
			t.line("    %s%s -> %s", st.Render("Label", "rpath"), show(c.OldRPath), show(c.NewRPath))
		}
		if c.NewInterpreter != nil {
			t.line("    %s%s -> %s", st.Render("Label", "interpreter"), show(c.OldInterpreter), show(c.NewInterpreter))
		}
	}
	for _, f := range s.Failed {
		t.line("  %s %s %s", st.Render("Error", "failed"), st.Render("FilePath", t.rel(s.Root, f.Path)), st.Render("Muted", f.Error))
	}

	t.line("%s", st.Render("Muted", fmt.Sprintf("%d relocated, %d unchanged, %d ignored, %d failed",
		len(s.Relocated), len(s.Unchanged), len(s.Ignored), len(s.Failed))))
	return nil
}

func (t *textRenderer) Runtimes(rep RuntimeReport) error {
	if len(rep.Runtimes) == 0 {
		t.line("%s: %s", t.styles.Render("Header", rep.Package), t.styles.Render("Muted", "no C++ runtime"))
		return nil
	}
	names := make([]string, len(rep.Runtimes))
	for i, r := range rep.Runtimes {
		names[i] = string(r)
	}
	t.line("%s: %s", t.styles.Render("Header", rep.Package), strings.Join(names, ", "))
	return nil
}

func (t *textRenderer) Dependencies(sel *toolchain.Selection) error {
	host := "none"
	if sel.HasHostCompiler {
		host = fmt.Sprint(sel.HostVersion)
	}
	t.line("%s%s %d", t.styles.Render("Label", "preferred"), sel.PreferredFormula, sel.PreferredVersion)
	t.line("%s%s", t.styles.Render("Label", "host"), host)
	t.line("%s%s", t.styles.Render("Label", "runtime"), sel.RuntimeLibDir)
	if len(sel.BottleDependencies) == 0 {
		t.line("%s%s", t.styles.Render("Label", "requires"), t.styles.Render("Muted", "nothing"))
		return nil
	}
	t.line("%s%s", t.styles.Render("Label", "requires"), strings.Join(sel.BottleDependencies, " "))
	return nil
}
