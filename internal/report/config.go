package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/cosmosops/analyticalctl/internal/cmd/common"
	"github.com/cosmosops/analyticalctl/internal/cmd/output/jq"
	"github.com/cosmosops/analyticalctl/internal/iostreams"
	"github.com/cosmosops/analyticalctl/internal/theme"
	"github.com/muesli/termenv"
)

// RenderConfig is decided once per run and handed to the Reporter.
type RenderConfig struct {
	Format  common.OutputFormat
	Color   bool
	Palette theme.Palette
	JQ      jq.Settings
}

// ResolveColor applies the --color mode to a concrete writer.
func ResolveColor(mode common.ColorMode, w io.Writer) bool {
	switch mode {
	case common.ColorModeAlways:
		return true
	case common.ColorModeNever:
		return false
	default:
		return iostreams.IsTerminal(w)
	}
}

func newRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
		r.SetHasDarkBackground(true)
		return r
	}
	if r.ColorProfile() == termenv.Ascii {
		// forced color onto a pipe or file
		r.SetColorProfile(termenv.ANSI256)
	}
	return r
}
