package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/go-pdf/fpdf"
)

// Document is everything printed in a briefing PDF.
type Document struct {
	Country   string
	Topic     string
	FlagURL   string
	Summary   string
	Sources   []briefing.Source
	Generated time.Time
}

const (
	fontFamily = "Helvetica"
	lineHeight = 5.5
	margin     = 18.0
)

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13}

// PDF renders doc as an A4 portrait PDF to w.
func PDF(w io.Writer, doc Document) error {
	pdf := build(doc)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build PDF: %w", err)
	}
	return pdf.Output(w)
}

func build(doc Document) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(fmt.Sprintf("MUN Briefing: %s", doc.Country), true)
	pdf.SetCreator("envoy", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(130, 130, 130)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 22)
	pdf.SetTextColor(20, 40, 80)
	pdf.MultiCell(0, 10, tr(doc.Country), "", "L", false)

	pdf.SetFont(fontFamily, "", 12)
	pdf.SetTextColor(70, 70, 70)
	pdf.MultiCell(0, 6, tr("Topic: "+doc.Topic), "", "L", false)

	if doc.FlagURL != "" {
		pdf.SetFont(fontFamily, "U", 9)
		pdf.SetTextColor(30, 90, 180)
		pdf.WriteLinkString(5, "Flag of "+tr(doc.Country), doc.FlagURL)
		pdf.Ln(6)
	}
	if !doc.Generated.IsZero() {
		pdf.SetFont(fontFamily, "I", 9)
		pdf.SetTextColor(110, 110, 110)
		pdf.MultiCell(0, 5, "Generated "+doc.Generated.Format("2 January 2006 15:04"), "", "L", false)
	}
	rule(pdf)

	for _, b := range parseBlocks(doc.Summary) {
		writeBlock(pdf, tr, b)
	}

	if len(doc.Sources) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "B", 13)
		pdf.SetTextColor(20, 40, 80)
		pdf.MultiCell(0, 7, "Sources", "", "L", false)
		pdf.Ln(1)
		for i, s := range doc.Sources {
			pdf.SetFont(fontFamily, "", 10)
			pdf.SetTextColor(40, 40, 40)
			pdf.Write(lineHeight, fmt.Sprintf("%d. ", i+1))
			pdf.SetFont(fontFamily, "U", 10)
			pdf.SetTextColor(30, 90, 180)
			pdf.WriteLinkString(lineHeight, tr(s.Title), s.URI)
			pdf.Ln(lineHeight + 1)
		}
	}

	return pdf
}

// WriteFile renders doc to path, creating parent directories.
func WriteFile(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := PDF(f, doc); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func writeBlock(pdf *fpdf.Fpdf, tr func(string) string, b block) {
	left, _, _, _ := pdf.GetMargins()

	switch b.kind {
	case blockHeading:
		size, ok := headingSizes[b.level]
		if !ok {
			size = 11
		}
		pdf.Ln(3)
		pdf.SetFont(fontFamily, "B", size)
		pdf.SetTextColor(20, 40, 80)
		pdf.MultiCell(0, size*0.5, tr(b.text), "", "L", false)
		pdf.Ln(1)

	case blockListItem, blockParagraph:
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetTextColor(30, 30, 30)
		indent := float64(b.level) * 5
		if b.kind == blockListItem {
			pdf.SetX(left + indent - 4)
			pdf.CellFormat(4, lineHeight, tr(bullet(b.marker)), "", 0, "L", false, 0, "")
		}
		pdf.SetLeftMargin(left + indent)
		pdf.MultiCell(0, lineHeight, tr(b.text), "", "L", false)
		pdf.SetLeftMargin(left)
		if b.level == 0 {
			pdf.Ln(2)
		}

	case blockCode:
		pdf.SetFont("Courier", "", 9)
		pdf.SetTextColor(50, 50, 50)
		pdf.SetFillColor(240, 240, 240)
		pdf.MultiCell(0, 4.5, tr(b.text), "", "L", true)
		pdf.Ln(2)

	case blockRule:
		rule(pdf)
	}
}

func bullet(marker string) string {
	if marker == "-" {
		return "•"
	}
	return marker
}

func rule(pdf *fpdf.Fpdf) {
	left, _, right, _ := pdf.GetMargins()
	width, _ := pdf.GetPageSize()
	pdf.Ln(2)
	y := pdf.GetY()
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(left, y, width-right, y)
	pdf.Ln(3)
}

// FromBriefing builds a Document for b.
func FromBriefing(b briefing.Briefing, flagURL string, generated time.Time) Document {
	return Document{
		Country:   strings.TrimSpace(b.Country),
		Topic:     strings.TrimSpace(b.Topic),
		FlagURL:   flagURL,
		Summary:   b.Summary,
		Sources:   b.Sources,
		Generated: generated,
	}
}
