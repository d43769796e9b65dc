package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cosmosops/analyticalctl/internal/bulk"
	"github.com/cosmosops/analyticalctl/internal/cmd/common"
	"github.com/cosmosops/analyticalctl/internal/cmd/output/jq"
	"sigs.k8s.io/yaml"
)

// document is the structured form of every terminal state.
type document struct {
	Status           string        `json:"status"`
	Databases        int           `json:"databases"`
	Containers       int           `json:"containers"`
	Enabled          []bulk.Record `json:"enabled"`
	SkippedDatabases []string      `json:"skippedDatabases,omitempty"`
	Disabled         *int          `json:"disabled,omitempty"`
	Failures         []failure     `json:"failures,omitempty"`
}

type failure struct {
	Database  string `json:"database"`
	Container string `json:"container"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error"`
}

func newDocument(status bulk.Status, inv bulk.Inventory, res *bulk.Result) document {
	doc := document{
		Status:           status.String(),
		Databases:        len(inv.Groups()),
		Containers:       len(inv.Records),
		Enabled:          inv.Records,
		SkippedDatabases: inv.SkippedDatabases,
	}
	if doc.Enabled == nil {
		doc.Enabled = []bulk.Record{}
	}
	if res != nil {
		disabled := res.Disabled
		doc.Disabled = &disabled
		for _, o := range res.Failed() {
			doc.Failures = append(doc.Failures, failure{
				Database:  o.Record.Database,
				Container: o.Record.Container,
				Attempts:  o.Attempts,
				Error:     o.Err.Error(),
			})
		}
	}
	return doc
}

func (r *Reporter) writeDocument(doc document) error {
	var raw any = doc
	filtered, handled, err := jq.ApplyToRaw(raw, r.cfg.Format, r.cfg.JQ, r.out)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}
	if jq.HasFilter(r.cfg.JQ) {
		raw = filtered
	}

	switch r.cfg.Format {
	case common.YAML:
		b, err := yaml.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		_, err = r.out.Write(b)
		return err
	case common.JSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(raw); err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
		out := buf.String()
		if r.cfg.Color {
			out = jq.Colorize(out, r.cfg.JQ.Theme)
		}
		_, err := io.WriteString(r.out, out)
		return err
	default:
		return fmt.Errorf("unsupported structured format %s", r.cfg.Format)
	}
}
