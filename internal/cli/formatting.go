package cli

import (
	"os"
	"strings"
	"text/template"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crimsonvanitas/brew/pkg/report"
)

// usageStyled reports whether help output should carry terminal styling
// for the given --color setting. Help goes to stdout, so that is the stream
// that is probed in auto mode.
func usageStyled(color string) bool {
	return report.DetectFormat(os.Stdout, color) == report.FormatTerminal
}

// initTemplateFormatting registers the usage template functions. Styling
// follows the --color flag held by opts, read when the template renders.
func initTemplateFormatting(opts *globalOptions) {
	bold := func(s string) string {
		if !usageStyled(opts.color) {
			return s
		}
		return pterm.Bold.Sprint(s)
	}

	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":  bold,
		"upper": strings.ToUpper,
		"boldUpper": func(s string) string {
			return bold(strings.ToUpper(s))
		},
	})
}
