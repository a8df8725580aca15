// Package pdftext converts PDF reports into the page-marked text format
// the extraction passes consume. Every extracted page renders under a
// "--- Page N ---" marker so downstream segmentation can recover page
// numbers for lineage.
package pdftext

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mr-pipeline/internal/debug"
)

// Result reports one PDF conversion
type Result struct {
	Pages       int
	FailedPages int
}

// Convert extracts a PDF into a page-marked text file. Pages that fail to
// extract are skipped and counted, never fatal.
func Convert(localDebug bool, pdfPath, outPath string) (*Result, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	text, result, err := Extract(localDebug, pdfPath)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("failed to write text file %s: %w", outPath, err)
	}

	debug.DebugOutput(localDebug, "Wrote %d pages to %s (%d failed)", result.Pages, outPath, result.FailedPages)
	return result, nil
}

// Extract pulls page-marked text out of a PDF
func Extract(localDebug bool, pdfPath string) (string, *Result, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	result := &Result{}
	total := r.NumPage()
	debug.DebugOutput(localDebug, "Extracting %d pages from %s", total, pdfPath)

	var buf bytes.Buffer
	for pageNum := 1; pageNum <= total; pageNum++ {
		p := r.Page(pageNum)
		if p.V.IsNull() {
			result.FailedPages++
			debug.DebugOutput(localDebug, "Warning: page %d is null, skipping", pageNum)
			continue
		}

		text, err := pageText(p)
		if err != nil {
			result.FailedPages++
			debug.DebugOutput(localDebug, "Warning: failed to extract page %d: %v", pageNum, err)
			continue
		}

		fmt.Fprintf(&buf, "--- Page %d ---\n", pageNum)
		buf.WriteString(strings.TrimSpace(text))
		buf.WriteString("\n\n")
		result.Pages++
	}

	return buf.String(), result, nil
}

// pageText renders one page from its positioned rows, falling back to
// plain extraction when row geometry is unavailable.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	kept := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			kept = append(kept, row)
		}
	}
	// PDF Y grows upward, so the highest position is the top of the page
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Position > kept[j].Position
	})

	var buf bytes.Buffer
	for _, row := range kept {
		line := rowText(row.Content)
		if strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

// rowText joins one row's text elements left to right, inserting a space
// wherever the horizontal gap between elements exceeds 20% of the font
// size.
func rowText(content []pdf.Text) string {
	words := make([]pdf.Text, len(content))
	copy(words, content)
	sort.Slice(words, func(i, j int) bool {
		return words[i].X < words[j].X
	})

	var buf bytes.Buffer
	for i, word := range words {
		buf.WriteString(word.S)
		if i == len(words)-1 {
			continue
		}

		gap := words[i+1].X - (word.X + word.W)
		fontSize := word.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}
