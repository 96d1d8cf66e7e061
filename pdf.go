package main

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // margin in mm
	pdfLineHeight = 5   // line height in mm
	pdfFontSize   = 9
)

// writeIndexPDF renders the digest index as a PDF report: run parameters, one
// line per digest in emission order, and the summary. The core PDF fonts are
// cp1252 only, so the box-drawing tree stays out of the report.
func writeIndexPDF(outputPath, rootPath string, maxLines, maxDepth int, entries []IndexEntry, summary Summary, withTokens bool) error {
	pdf := gofpdf.New("P", "mm", "A4", "") // portrait, mm, A4, default font dir
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	width := float64(pdfPageWidth - 2*pdfMargin)

	pdf.SetFont("Helvetica", "B", pdfFontSize+3)
	pdf.MultiCell(width, pdfLineHeight+2, "Digest index", "", "L", false)
	pdf.Ln(pdfLineHeight / 2)

	pdf.SetFont("Helvetica", "", pdfFontSize)
	pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("Repository: %s", rootPath), "", "L", false)
	pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("Max lines per digest: %d    Max recursion depth: %d", maxLines, maxDepth), "", "L", false)
	pdf.Ln(pdfLineHeight)

	pdf.SetFont("Courier", "", pdfFontSize)
	for _, e := range entries {
		line := fmt.Sprintf("depth=%d  %s -> %s  (%d lines", e.Depth, e.Dir, e.File, e.Lines)
		if withTokens && e.Tokens > 0 {
			line += fmt.Sprintf(", ~%d tokens", e.Tokens)
		}
		line += ")"
		if e.Split {
			line += " [split]"
		}
		pdf.MultiCell(width, pdfLineHeight, line, "", "L", false)
	}

	pdf.Ln(pdfLineHeight)
	pdf.SetFont("Helvetica", "B", pdfFontSize+1)
	pdf.MultiCell(width, pdfLineHeight, "--- Summary ---", "", "L", false)
	pdf.Ln(pdfLineHeight / 2)

	pdf.SetFont("Helvetica", "", pdfFontSize)
	summaryString := fmt.Sprintf("Digests written: %d\nTotal lines: %d", summary.Digests, summary.TotalLines)
	if withTokens && summary.TotalTokens > 0 {
		summaryString += fmt.Sprintf("\nTotal tokens: ~%d", summary.TotalTokens)
	}
	pdf.MultiCell(width, pdfLineHeight, summaryString, "", "L", false)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return &OutputError{Path: outputPath, Msg: "cannot save PDF report", Cause: err}
	}
	return nil
}
