package parser

import (
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/sniffer"
)

// ExportRow is one row of the rich export, decoded by header name.
type ExportRow struct {
	Date          string `csv:"Data"`
	Amount        string `csv:"Valor"`
	Description   string `csv:"Descrição"`
	Category      string `csv:"Categoria"`
	PaymentMethod string `csv:"FormaPagamento"`
	Counterparty  string `csv:"Destinatário"`
	Installments  string `csv:"Parcelas"`
	Origin        string `csv:"Origem"`
	Identifier    string `csv:"ID"`
}

// rowsReader feeds pre-split rows to gocsv.
type rowsReader struct {
	rows [][]string
	pos  int
}

func (r *rowsReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *rowsReader) ReadAll() ([][]string, error) {
	rest := r.rows[r.pos:]
	r.pos = len(r.rows)
	return rest, nil
}

// parseRichRows decodes rows whose header was recognised as the rich export
// header. rows[0] is the header.
func (p *Parser) parseRichRows(result *ParseResult, rows [][]string, batchTime time.Time) error {
	if len(rows) == 0 {
		return nil
	}

	// The fingerprint ignores case and punctuation; gocsv matches tags exactly.
	header := rows[0]
	if len(header) == len(sniffer.RichExportHeader) {
		header = sniffer.RichExportHeader
	}
	input := make([][]string, 0, len(rows))
	input = append(input, header)
	input = append(input, padRows(rows[1:], len(header))...)

	var decoded []ExportRow
	if err := gocsv.UnmarshalCSV(&rowsReader{rows: input}, &decoded); err != nil {
		return err
	}

	for i, row := range decoded {
		result.TotalRows++
		raw := sniffer.RawFields{
			Layout:        "rich",
			Date:          row.Date,
			Amount:        row.Amount,
			Description:   row.Description,
			Identifier:    row.Identifier,
			Category:      row.Category,
			PaymentMethod: row.PaymentMethod,
			Counterparty:  row.Counterparty,
			Installments:  row.Installments,
			HasDate:       true,
		}

		tx, perr := p.buildTransaction(result.Source, i, raw, batchTime)
		if perr != nil {
			perr.Row = i + 2
			p.skip(result, *perr)
			continue
		}
		if origin := strings.TrimSpace(row.Origin); origin != "" {
			tx.SourceFile = origin
		}
		result.Transactions = append(result.Transactions, tx)
		result.ParsedRows++
	}
	return nil
}

// padRows extends short rows and cuts long ones so gocsv sees a rectangular
// table.
func padRows(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) >= width {
			out[i] = row[:width]
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}
