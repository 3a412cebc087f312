package report

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// RenderError prints err to w in the error style.
func RenderError(w *os.File, color string, err error) {
	r := lipgloss.NewRenderer(w)
	if DetectFormat(w, color) == FormatText {
		r.SetColorProfile(termenv.Ascii)
	}
	fmt.Fprintln(w, DefaultStyles(r).Render("Error", fmt.Sprintf("Error: %v", err)))
}
