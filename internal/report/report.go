// Package report renders the terminal states of a bulk run as text or as
// json/yaml documents.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cosmosops/analyticalctl/internal/bulk"
	"github.com/cosmosops/analyticalctl/internal/cmd/common"
	"github.com/cosmosops/analyticalctl/internal/iostreams"
	"github.com/cosmosops/analyticalctl/internal/theme"
	"github.com/mattn/go-runewidth"
)

const (
	MsgNothingEnabled = "No containers with analytical store enabled."
	MsgAnnounce       = "The following containers will have analytical store disabled:"
	MsgDeclined       = "Cancelled. No containers were changed."
)

// Reporter implements bulk.Reporter. Diagnostics and failures go to ErrOut
// so that Out carries only the report.
type Reporter struct {
	cfg    RenderConfig
	out    io.Writer
	errOut io.Writer
	outR   *lipgloss.Renderer
	errR   *lipgloss.Renderer
}

var _ bulk.Reporter = (*Reporter)(nil)

func New(streams *iostreams.IOStreams, cfg RenderConfig) *Reporter {
	if cfg.Palette.Name == "" {
		cfg.Palette, _ = theme.Get(theme.DefaultName)
	}
	return &Reporter{
		cfg:    cfg,
		out:    streams.Out,
		errOut: streams.ErrOut,
		outR:   newRenderer(streams.Out, cfg.Color),
		errR:   newRenderer(streams.ErrOut, cfg.Color),
	}
}

func (r *Reporter) structured() bool {
	return r.cfg.Format != common.TEXT
}

func (r *Reporter) style(renderer *lipgloss.Renderer, token theme.Token) lipgloss.Style {
	return r.cfg.Palette.Style(renderer, token)
}

func (r *Reporter) NothingEnabled(inv bulk.Inventory) error {
	if r.structured() {
		return r.writeDocument(newDocument(bulk.StatusNothingEnabled, inv, nil))
	}
	if err := r.writeSkipped(inv); err != nil {
		return err
	}
	_, err := fmt.Fprintln(r.out, r.style(r.outR, theme.ColorTextMuted).Render(MsgNothingEnabled))
	return err
}

func (r *Reporter) Preview(inv bulk.Inventory) error {
	if r.structured() {
		return r.writeDocument(newDocument(bulk.StatusPreviewed, inv, nil))
	}
	if err := r.writeSkipped(inv); err != nil {
		return err
	}
	return r.writeListing(r.out, r.outR, inv)
}

// Announce lists what is about to change. In structured modes the notice goes
// to ErrOut next to the prompt.
func (r *Reporter) Announce(inv bulk.Inventory) error {
	w, renderer := r.out, r.outR
	if r.structured() {
		w, renderer = r.errOut, r.errR
	}
	if err := r.writeSkipped(inv); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, r.style(renderer, theme.ColorWarning).Render(MsgAnnounce)); err != nil {
		return err
	}
	return r.writeListing(w, renderer, inv)
}

func (r *Reporter) Declined(inv bulk.Inventory) error {
	if r.structured() {
		return r.writeDocument(newDocument(bulk.StatusDeclined, inv, nil))
	}
	_, err := fmt.Fprintln(r.out, MsgDeclined)
	return err
}

func (r *Reporter) Succeeded(o bulk.Outcome) {
	if r.structured() {
		return
	}
	fmt.Fprintln(r.out, r.style(r.outR, theme.ColorSuccess).Render("disabled "+o.Record.String()))
}

func (r *Reporter) Failed(o bulk.Outcome) {
	line := fmt.Sprintf("failed to disable %s: %v", o.Record, o.Err)
	fmt.Fprintln(r.errOut, r.style(r.errR, theme.ColorDanger).Render(line))
}

func (r *Reporter) Summary(inv bulk.Inventory, res bulk.Result) error {
	if r.structured() {
		return r.writeDocument(newDocument(bulk.StatusCompleted, inv, &res))
	}
	line := fmt.Sprintf("Containers disabled: %d", res.Disabled)
	token := theme.ColorSuccess
	if res.Disabled < res.Found {
		line += fmt.Sprintf(" of %d", res.Found)
		token = theme.ColorWarning
	}
	_, err := fmt.Fprintln(r.out, r.style(r.outR, token).Render(line))
	return err
}

// writeListing renders one block per database followed by the totals line.
func (r *Reporter) writeListing(w io.Writer, renderer *lipgloss.Renderer, inv bulk.Inventory) error {
	width := 0
	for _, rec := range inv.Records {
		width = max(width, runewidth.StringWidth(rec.Container))
	}

	header := r.style(renderer, theme.ColorAccent).Bold(true)
	muted := r.style(renderer, theme.ColorTextMuted)

	var sb strings.Builder
	groups := inv.Groups()
	for _, g := range groups {
		sb.WriteString(header.Render(g.Database))
		sb.WriteByte('\n')
		for _, rec := range g.Records {
			fmt.Fprintf(&sb, "  %s  %s\n",
				runewidth.FillRight(rec.Container, width),
				muted.Render("analyticalStorageTtl="+string(rec.Retention)))
		}
	}
	fmt.Fprintf(&sb, "\nTotal: %d database(s), %d container(s)\n", len(groups), len(inv.Records))

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *Reporter) writeSkipped(inv bulk.Inventory) error {
	if len(inv.SkippedDatabases) == 0 {
		return nil
	}
	line := "Skipped databases: " + strings.Join(inv.SkippedDatabases, ", ")
	_, err := fmt.Fprintln(r.errOut, r.style(r.errR, theme.ColorWarning).Render(line))
	return err
}
