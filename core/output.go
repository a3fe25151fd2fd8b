package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Printer handles all display output for the CLI.
type Printer struct {
	JSON    bool
	Verbose bool
	Writer  io.Writer
}

// NewPrinter creates a default Printer writing to stdout.
func NewPrinter(jsonMode, verbose bool) *Printer {
	return &Printer{JSON: jsonMode, Verbose: verbose, Writer: os.Stdout}
}

func (p *Printer) printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(p.Writer, string(b))
}

// PrintMetadata renders a Metadata struct to the configured output.
func (p *Printer) PrintMetadata(m *Metadata) {
	if p.JSON {
		type jsonField struct {
			Key      string `json:"key"`
			Value    string `json:"value"`
			Category string `json:"category"`
		}
		out := struct {
			FilePath string      `json:"file"`
			Format   string      `json:"format"`
			Fields   []jsonField `json:"fields"`
		}{FilePath: m.FilePath, Format: m.Format, Fields: []jsonField{}}
		for _, f := range m.Fields {
			out.Fields = append(out.Fields, jsonField(f))
		}
		p.printJSON(out)
		return
	}

	fmt.Fprintf(p.Writer, "File  : %s\n", m.FilePath)
	fmt.Fprintf(p.Writer, "Format: %s\n", m.Format)
	if len(m.Fields) == 0 {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	fmt.Fprintln(p.Writer)

	// Group by category
	groups := make(map[string][]MetaField)
	var order []string
	for _, f := range m.Fields {
		if _, ok := groups[f.Category]; !ok {
			order = append(order, f.Category)
		}
		groups[f.Category] = append(groups[f.Category], f)
	}
	for _, cat := range order {
		fmt.Fprintf(p.Writer, "── %s ──\n", cat)
		for _, f := range groups[cat] {
			fmt.Fprintf(p.Writer, "  %-30s %s\n", f.Key+":", f.Value)
		}
		fmt.Fprintln(p.Writer)
	}
}

// PrintStripPreview renders the dry-run verdicts of a strip request.
func (p *Printer) PrintStripPreview(r StripPreviewResponse) {
	if p.JSON {
		p.printJSON(r)
		return
	}
	for _, it := range r.Items {
		if it.Status == PreviewReady {
			fmt.Fprintf(p.Writer, "%-8s %s  (%d tags: %s)\n", it.Status, it.Path, it.TagsToStrip, strings.Join(it.FoundCategories, ", "))
			continue
		}
		fmt.Fprintf(p.Writer, "%-8s %s  (%s)\n", it.Status, it.Path, it.Reason)
	}
	fmt.Fprintf(p.Writer, "\n%d files: %d ready, %d skipped\n", r.Total, r.Ready, r.Skipped)
}

// PrintStripResult renders the outcome of a strip run.
func (p *Printer) PrintStripResult(r StripExecuteResponse) {
	if p.JSON {
		p.printJSON(r)
		return
	}
	for _, d := range r.Details {
		switch d.Status {
		case StatusSucceeded:
			var extra []string
			if d.StrippedIPTC {
				extra = append(extra, "IPTC")
			}
			if d.StrippedXMP {
				extra = append(extra, "XMP")
			}
			line := fmt.Sprintf("%s: %d tags", d.Path, d.StrippedTags)
			if len(extra) > 0 {
				line += " + " + strings.Join(extra, ", ")
			}
			p.PrintSuccess(line)
		default:
			fmt.Fprintf(p.Writer, "%-9s %s  (%s)\n", d.Status, d.Path, d.Reason)
		}
	}
	p.printTotals(r.Totals)
}

// PrintShiftPreview renders the dry-run verdicts of a datetime shift.
func (p *Printer) PrintShiftPreview(r ShiftPreviewResponse) {
	if p.JSON {
		p.printJSON(r)
		return
	}
	for _, it := range r.Items {
		if it.Status == PreviewReady {
			fmt.Fprintf(p.Writer, "%-8s %s  %s → %s\n", it.Status, it.Path, it.OriginalDatetime, it.CorrectedDatetime)
			continue
		}
		fmt.Fprintf(p.Writer, "%-8s %s  (%s)\n", it.Status, it.Path, it.Reason)
	}
	fmt.Fprintf(p.Writer, "\n%d files: %d ready, %d skipped\n", r.Total, r.Ready, r.Skipped)
}

// PrintShiftResult renders the outcome of a datetime shift.
func (p *Printer) PrintShiftResult(r ShiftExecuteResponse) {
	if p.JSON {
		p.printJSON(r)
		return
	}
	for _, d := range r.Details {
		if d.Status == StatusSucceeded {
			p.PrintSuccess(fmt.Sprintf("%s: %s (%d fields)", d.Path, d.Reason, d.PatchedFields))
			continue
		}
		fmt.Fprintf(p.Writer, "%-9s %s  (%s)\n", d.Status, d.Path, d.Reason)
	}
	p.printTotals(r.Totals)
}

func (p *Printer) printTotals(t Totals) {
	fmt.Fprintf(p.Writer, "\n%d processed: %d succeeded, %d failed, %d skipped\n",
		t.Processed, t.Succeeded, t.Failed, t.Skipped)
}

// PrintSuccess prints a success message.
func (p *Printer) PrintSuccess(msg string) {
	fmt.Fprintln(p.Writer, "✓ "+msg)
}

// PrintInfo prints an info line (suppressed in JSON mode).
func (p *Printer) PrintInfo(msg string) {
	if !p.JSON {
		fmt.Fprintln(p.Writer, msg)
	}
}

// PrintError prints an error to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, "✗ Error: "+msg)
}
