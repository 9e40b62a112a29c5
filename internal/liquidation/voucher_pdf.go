package liquidation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders minor units with thousands separators, e.g. 1,250.50.
func formatAmount(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + amountPrinter.Sprintf("%d", v/100) + fmt.Sprintf(".%02d", v%100)
}

func voucherLines(l *Liquidation) []string {
	name := l.EmployeeID.String()
	if l.Employee != nil && l.Employee.FullName != "" {
		name = l.Employee.FullName
	}

	lines := []string{
		"Liquidation Voucher",
		"",
		"Voucher: " + l.ID.String(),
		"Cash advance: " + l.CashAdvanceID.String(),
		"Employee: " + name,
		"Status: " + strings.ToUpper(l.Status),
		"",
		"Date        Route                          Total",
	}
	for _, item := range l.Items {
		route := strings.TrimSpace(item.Origin + " - " + item.Destination)
		if route == "-" {
			route = ""
		}
		lines = append(lines, fmt.Sprintf("%s  %-30s %s", item.ExpenseDate.Format("2006-01-02"), route, formatAmount(item.Total)))
	}
	lines = append(lines,
		"",
		"Advance amount: "+formatAmount(l.AdvanceAmount),
		"Total expenses: "+formatAmount(l.TotalExpenses),
		"Return to company: "+formatAmount(l.ReturnToCompany),
		"Reimbursement: "+formatAmount(l.Reimbursement),
	)
	if l.DecidedAt != nil {
		lines = append(lines, "Decided at: "+l.DecidedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return lines
}

const (
	voucherLineHeight = 6.0
	voucherMargin     = 15.0
)

// Tests switch compression off to read the page text.
var voucherCompression = true

// buildVoucherPDF lays the lines out on A4 pages, breaking to a new page
// when the bottom margin is reached. The first line is the title.
func buildVoucherPDF(lines []string) ([]byte, error) {
	pdf := renderVoucher(lines)

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render voucher pdf: %w", err)
	}
	return out.Bytes(), nil
}

// renderVoucher translates text from UTF-8 to cp1252 for the core fonts.
func renderVoucher(lines []string) *fpdf.Fpdf {
	if len(lines) == 0 {
		lines = []string{"Liquidation Voucher"}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(voucherCompression)
	pdf.SetMargins(voucherMargin, voucherMargin, voucherMargin)
	pdf.SetAutoPageBreak(true, voucherMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-voucherMargin + 5)
		pdf.SetFont("Courier", "", 8)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Courier", "B", 14)
	pdf.CellFormat(0, voucherLineHeight+2, tr(lines[0]), "", 1, "L", false, 0, "")

	pdf.SetFont("Courier", "", 10)
	for _, line := range lines[1:] {
		pdf.CellFormat(0, voucherLineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	return pdf
}
