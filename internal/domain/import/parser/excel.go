package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/sniffer"
)

// Date serials inside this range are read as dates in the first column
// (1954-10-03 .. 2119-01-10).
const (
	minDateSerial = 20000
	maxDateSerial = 80000
)

// xlsxDelimiter is used to join overflow description cells of xlsx rows. It
// also keeps the comma-decimal repair away from real spreadsheet cells.
const xlsxDelimiter = ';'

// ParseExcel reads the statement sheet of an xlsx workbook. Rows go through
// the same header and column-count rules as delimited text.
func (p *Parser) ParseExcel(name string, data []byte, batchTime time.Time) (*ParseResult, error) {
	result := &ParseResult{Source: name, Delimiter: xlsxDelimiter}

	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %v", ErrUnsupportedFormat, name, err)
	}
	defer f.Close()

	sheet := findTransactionSheet(f)
	if sheet == "" {
		return result, nil
	}

	iter, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create row iterator: %w", err)
	}
	defer iter.Close()

	var rows [][]string
	for iter.Next() {
		cols, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		cells := trimCells(cols)
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return result, nil
	}

	for len(rows[0]) > 0 && rows[0][len(rows[0])-1] == "" {
		rows[0] = rows[0][:len(rows[0])-1]
	}
	header := strings.Join(rows[0], " ")
	if sniffer.IsHeader(header) {
		result.HasHeader = true
		if sniffer.Fingerprint(rows[0]) == sniffer.Fingerprint(sniffer.RichExportHeader) {
			for i := 1; i < len(rows); i++ {
				rows[i] = withSerialDate(rows[i], f)
			}
			if err := p.parseRichRows(result, rows, batchTime); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", name, err)
			}
			return result, nil
		}
	}

	start := 0
	if result.HasHeader {
		start = 1
	}
	for i := start; i < len(rows); i++ {
		p.addRow(result, i+1, i-start, withSerialDate(rows[i], f), xlsxDelimiter, batchTime)
	}

	p.logger.Debug("workbook parsed",
		slog.String("source", name),
		slog.String("sheet", sheet),
		slog.Int("rows", result.TotalRows),
		slog.Int("parsed", result.ParsedRows),
	)
	return result, nil
}

// findTransactionSheet prefers sheets with statement-like names, else the
// first sheet.
func findTransactionSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}

	preferred := []string{"transacoes", "transações", "extrato", "movimentos", "transactions", "sheet1", "planilha1"}
	for _, name := range preferred {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, name) {
				return sheet
			}
		}
	}
	return sheets[0]
}

// trimCells trims every cell. A row with no text at all yields nil; trailing
// blanks are left for the shape rules to drop.
func trimCells(cols []string) []string {
	cells := make([]string, len(cols))
	blank := true
	for i, c := range cols {
		cells[i] = strings.TrimSpace(c)
		if cells[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil
	}
	return cells
}

// withSerialDate rewrites a raw date serial in the first column as DD/MM/YYYY.
func withSerialDate(cells []string, f *excelize.File) []string {
	if len(cells) == 0 {
		return cells
	}
	serial, err := strconv.ParseFloat(cells[0], 64)
	if err != nil || serial < minDateSerial || serial >= maxDateSerial {
		return cells
	}

	t, err := excelize.ExcelDateToTime(serial, workbookUses1904(f))
	if err != nil {
		return cells
	}
	out := append([]string(nil), cells...)
	out[0] = t.Format(normalizer.CanonicalDateLayout)
	return out
}

func workbookUses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}
