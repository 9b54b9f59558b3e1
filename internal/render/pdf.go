// Package render turns a quote into a PDF. Output is byte-for-byte
// deterministic for the same input.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	"github.com/phpdave11/gofpdf"
)

// Input is everything printed on a document.
type Input struct {
	Type           domain.DocumentType
	IssuedOn       time.Time
	Gig            domain.Gig
	Client         *domain.Client
	Currency       string
	LineItems      []domain.LineItem
	PerformanceFee money.Amount
	Total          money.Amount
}

type Letterhead struct {
	Artist  string
	Tagline string
	Address string
}

func DefaultLetterhead() Letterhead {
	return Letterhead{
		Artist:  "BLACK BEAUTY",
		Tagline: "Global Talent & Production Agency",
		Address: "Tower 12, Financial District, Colombo",
	}
}

var terms = []string{
	"Quote valid for 14 days from issue date.",
	"50% technical deposit required for equipment booking.",
	"Rider specifications must be met by venue management.",
}

type PDF struct {
	head Letterhead
}

func NewPDF(head Letterhead) *PDF {
	return &PDF{head: head}
}

const (
	colDesc  = 100.0
	colQty   = 20.0
	colRate  = 35.0
	colTotal = 35.0
	rowH     = 8.0
)

func (r *PDF) Render(in Input) ([]byte, error) {
	const op = "render.PDF.Render"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(in.IssuedOn.UTC())
	pdf.SetCatalogSort(true)
	pdf.SetTitle(string(in.Type)+" "+in.Gig.Venue, true)
	pdf.SetAuthor(r.head.Artist, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	// letterhead
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(110, 10, tr(r.head.Artist), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(string(in.Type)), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(110, 5, tr(r.head.Tagline), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date: "+in.IssuedOn.Format("Monday, January 2, 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, tr(r.head.Address), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// recipient
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(0, 5, "BILL TO RECIPIENT", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range recipient(in) {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// line items
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(colDesc, rowH, "Description of Service", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, rowH, "Qty", "B", 0, "C", true, 0, "")
	pdf.CellFormat(colRate, rowH, "Unit Rate", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, rowH, "Total", "B", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if in.PerformanceFee > 0 {
		r.row(pdf, tr("Performance Fee: "+r.head.Artist+" (engagement at "+in.Gig.Venue+")"), 1, in.PerformanceFee, in.PerformanceFee, in.Currency)
	}
	for _, li := range in.LineItems {
		total, err := li.Total()
		if err != nil {
			return nil, fmt.Errorf("%s: line %q: %w", op, li.Description, err)
		}
		r.row(pdf, tr(li.Description), li.Quantity, li.Rate, total, in.Currency)
	}
	pdf.Ln(6)

	// totals
	subtotal := in.Total - in.PerformanceFee
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colDesc+colQty, rowH, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(colRate, rowH, "Production Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, rowH, money.Format(subtotal, in.Currency), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colDesc+colQty, rowH, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(colRate, rowH, "Net Payable", "T", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, rowH, money.Format(in.Total, in.Currency), "T", 1, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(0, 5, "TERMS & LOGISTICS", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, t := range terms {
		pdf.CellFormat(0, 5, "- "+t, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return buf.Bytes(), nil
}

func (r *PDF) row(pdf *gofpdf.Fpdf, desc string, qty int, rate, total money.Amount, cur string) {
	pdf.CellFormat(colDesc, rowH, desc, "", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, rowH, strconv.Itoa(qty), "", 0, "C", false, 0, "")
	pdf.CellFormat(colRate, rowH, money.Format(rate, cur), "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, rowH, money.Format(total, cur), "", 1, "R", false, 0, "")
}

// recipient falls back to the venue when no client is linked.
func recipient(in Input) []string {
	if in.Client == nil {
		return []string{in.Gig.Venue, in.Gig.City}
	}

	lines := []string{in.Client.Name}
	for _, s := range []string{in.Client.Company, in.Client.Email, in.Client.Phone} {
		if s != "" {
			lines = append(lines, s)
		}
	}

	return lines
}
