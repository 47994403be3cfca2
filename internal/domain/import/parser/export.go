package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/sniffer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/money"
)

// ExportVariant selects an export layout.
type ExportVariant string

const (
	// ExportStrict is Data,Valor,Identificador,Descrição with dot-decimal amounts.
	ExportStrict ExportVariant = "strict"
	// ExportRich carries every field, source file included, and re-imports
	// losslessly.
	ExportRich ExportVariant = "rich"
	// ExportLegacy is the ';'-joined report with absolute comma-decimal amounts.
	ExportLegacy ExportVariant = "legacy"
	// ExportXLSX is the rich layout as a workbook.
	ExportXLSX ExportVariant = "xlsx"
)

// StrictExportHeader is the header of the strict export.
var StrictExportHeader = []string{"Data", "Valor", "Identificador", "Descrição"}

// LegacyExportHeader is the header of the legacy report.
var LegacyExportHeader = []string{"Data", "Descrição", "Categoria", "Valor", "Tipo"}

// ParseExportVariant maps a request value to a variant; empty means strict.
func ParseExportVariant(s string) (ExportVariant, error) {
	switch v := ExportVariant(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ExportStrict, nil
	case ExportStrict, ExportRich, ExportLegacy, ExportXLSX:
		return v, nil
	default:
		return "", fmt.Errorf("unknown export variant %q", s)
	}
}

// Export writes records in the given variant.
func Export(w io.Writer, variant ExportVariant, records []transactions.Transaction) error {
	switch variant {
	case ExportStrict:
		return WriteStrict(w, records)
	case ExportRich:
		return WriteRich(w, records)
	case ExportLegacy:
		return WriteLegacy(w, records)
	case ExportXLSX:
		return WriteXLSX(w, records)
	default:
		return fmt.Errorf("unknown export variant %q", variant)
	}
}

// WriteStrict writes the strict export: unquoted header, every value quoted,
// a trailing newline.
func WriteStrict(w io.Writer, records []transactions.Transaction) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(StrictExportHeader, ","))
	for _, r := range records {
		bw.WriteByte('\n')
		bw.WriteString(quoteJoin([]string{
			r.Date,
			money.FormatPlain(r.Amount),
			r.Identifier,
			r.Description,
		}, ','))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// WriteRich writes every field under sniffer.RichExportHeader.
func WriteRich(w io.Writer, records []transactions.Transaction) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(sniffer.RichExportHeader, ","))
	for _, r := range records {
		bw.WriteByte('\n')
		bw.WriteString(quoteJoin(richRow(r), ','))
	}
	return bw.Flush()
}

// WriteLegacy writes the ';'-joined report. Values are not quoted.
func WriteLegacy(w io.Writer, records []transactions.Transaction) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(LegacyExportHeader, ";"))
	for _, r := range records {
		kind := "Saída"
		if r.IsInflow() {
			kind = "Entrada"
		}
		bw.WriteByte('\n')
		bw.WriteString(strings.Join([]string{
			r.Date,
			r.Description,
			r.Category,
			money.FormatComma(r.Amount),
			kind,
		}, ";"))
	}
	return bw.Flush()
}

// WriteXLSX writes the rich layout into a single-sheet workbook. Amounts are
// numeric cells.
func WriteXLSX(w io.Writer, records []transactions.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transacoes"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(sniffer.RichExportHeader))
	for i, h := range sniffer.RichExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cells := richRow(r)
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		row[1] = money.Round2(r.Amount).InexactFloat64()

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FilteredFilename names an export of the filtered view.
func FilteredFilename(now time.Time) string {
	return "transacoes_filtradas_" + now.Format("2006-01-02") + ".csv"
}

// ReportFilename names a legacy report for a period and year selection.
func ReportFilename(period, year string) string {
	return "relatorio-financeiro-" + period + "-" + year + ".csv"
}

// Filename picks the download name for a variant.
func Filename(variant ExportVariant, period, year string, now time.Time) string {
	switch variant {
	case ExportLegacy:
		return ReportFilename(period, year)
	case ExportXLSX:
		return strings.TrimSuffix(FilteredFilename(now), ".csv") + ".xlsx"
	default:
		return FilteredFilename(now)
	}
}

func richRow(r transactions.Transaction) []string {
	return []string{
		r.Date,
		money.FormatPlain(r.Amount),
		r.Description,
		r.Category,
		r.PaymentMethod,
		r.Counterparty,
		r.Installments,
		r.SourceFile,
		r.Identifier,
	}
}

// quoteJoin wraps every value in double quotes, doubling inner quotes.
func quoteJoin(values []string, sep byte) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(sep)
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	}
	return b.String()
}
