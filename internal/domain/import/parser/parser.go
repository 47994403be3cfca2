// Package parser turns one statement file into canonical transactions and
// writes transactions back out as CSV or XLSX.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/sniffer"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

// ErrUnsupportedFormat is returned for files that are neither text nor xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError describes a skipped row.
type ParseError struct {
	Row     int    `json:"linha"`
	Column  string `json:"coluna,omitempty"`
	Message string `json:"mensagem"`
	RawData string `json:"conteudo,omitempty"`
}

func (e ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// ParseResult is the outcome of parsing one file. Rows that cannot be turned
// into a record are skipped and listed in Warnings.
type ParseResult struct {
	Source       string
	Transactions []transactions.Transaction
	Warnings     []ParseError
	TotalRows    int // data rows seen, header excluded
	ParsedRows   int
	SkippedRows  int
	Delimiter    rune
	HasHeader    bool
}

// Categorizer resolves a category for rows that carry none.
type Categorizer interface {
	Categorize(description string) string
}

// Parser parses statement files. It is safe for concurrent use as long as
// the Categorizer is.
type Parser struct {
	categorizer Categorizer
	logger      *slog.Logger
}

// NewParser creates a parser. A nil categorizer leaves every uncategorized
// row as transactions.DefaultCategory.
func NewParser(categorizer Categorizer, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{categorizer: categorizer, logger: logger}
}

// Parse dispatches on the file name: .xlsx goes through ParseExcel, anything
// else is treated as delimited text. batchTime is shared by every file of one
// import; it stamps synthesized identifiers and is "today" for undated rows.
func (p *Parser) Parse(name string, data []byte, batchTime time.Time) (*ParseResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return p.ParseExcel(name, data, batchTime)
	case ".xls", ".pdf", ".ofx":
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	default:
		return p.ParseCSV(name, data, batchTime)
	}
}

// ParseCSV parses delimited statement text.
func (p *Parser) ParseCSV(name string, data []byte, batchTime time.Time) (*ParseResult, error) {
	result := &ParseResult{Source: name}

	cfg, err := sniffer.Detect(string(normalizer.NormalizeBytes(data)))
	if errors.Is(err, sniffer.ErrEmptyFile) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", name, err)
	}

	result.Delimiter = cfg.Delimiter
	result.HasHeader = cfg.HasHeader

	rows := make([][]string, len(cfg.Lines))
	for i, line := range cfg.Lines {
		rows[i] = sniffer.SplitRow(line, cfg.Delimiter)
	}

	if cfg.RichExport {
		if err := p.parseRichRows(result, rows, batchTime); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		return result, nil
	}

	start := 0
	if cfg.HasHeader {
		start = 1
	}
	for i := start; i < len(rows); i++ {
		p.addRow(result, i+1, i-start, rows[i], cfg.Delimiter, batchTime)
	}

	p.logger.Debug("statement parsed",
		slog.String("source", name),
		slog.String("delimiter", string(cfg.Delimiter)),
		slog.Bool("header", cfg.HasHeader),
		slog.Int("rows", result.TotalRows),
		slog.Int("parsed", result.ParsedRows),
		slog.Int("skipped", result.SkippedRows),
	)
	return result, nil
}

// addRow assigns fields to one data row and records either a transaction or
// a warning. line is the 1-based line number, index the 0-based data row.
func (p *Parser) addRow(result *ParseResult, line, index int, cells []string, delimiter rune, batchTime time.Time) {
	result.TotalRows++

	raw, err := sniffer.Assign(cells, delimiter)
	if err != nil {
		p.skip(result, ParseError{
			Row:     line,
			Message: fmt.Sprintf("%s (%d)", err.Error(), len(cells)),
			RawData: strings.Join(cells, string(delimiter)),
		})
		return
	}

	tx, perr := p.buildTransaction(result.Source, index, raw, batchTime)
	if perr != nil {
		perr.Row = line
		p.skip(result, *perr)
		return
	}

	result.Transactions = append(result.Transactions, tx)
	result.ParsedRows++
}

func (p *Parser) skip(result *ParseResult, warning ParseError) {
	result.Warnings = append(result.Warnings, warning)
	result.SkippedRows++
	p.logger.Debug("row skipped",
		slog.String("source", result.Source),
		slog.Int("row", warning.Row),
		slog.String("reason", warning.Message),
	)
}

// buildTransaction converts raw cells into a record, filling defaults.
func (p *Parser) buildTransaction(source string, index int, raw sniffer.RawFields, batchTime time.Time) (transactions.Transaction, *ParseError) {
	amount, err := normalizer.ParseAmount(raw.Amount)
	if err != nil {
		return transactions.Transaction{}, &ParseError{
			Column:  "valor",
			Message: "invalid amount",
			RawData: raw.Amount,
		}
	}

	date := normalizer.FormatDate(batchTime)
	if raw.HasDate {
		date, err = normalizer.NormalizeDate(raw.Date)
		if err != nil {
			return transactions.Transaction{}, &ParseError{
				Column:  "data",
				Message: "invalid date",
				RawData: raw.Date,
			}
		}
	}

	description := cleanDescription(raw.Description)
	if description == "" {
		description = transactions.DefaultDescription
	}

	identifier := strings.TrimSpace(raw.Identifier)
	if identifier == "" {
		identifier = SyntheticID(source, index, batchTime)
	}

	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = p.categorize(description)
	}

	return transactions.Transaction{
		Date:          date,
		Amount:        amount,
		Identifier:    identifier,
		Description:   description,
		Category:      category,
		PaymentMethod: strings.TrimSpace(raw.PaymentMethod),
		Counterparty:  strings.TrimSpace(raw.Counterparty),
		Installments:  strings.TrimSpace(raw.Installments),
		SourceFile:    source,
	}, nil
}

func (p *Parser) categorize(description string) string {
	if p.categorizer == nil {
		return transactions.DefaultCategory
	}
	return p.categorizer.Categorize(description)
}

// SyntheticID builds the identifier of a row that has none. The same file
// parsed twice in one batch yields the same identifiers.
func SyntheticID(source string, index int, batchTime time.Time) string {
	return "csv-" + source + "-" + strconv.Itoa(index) + "-" + strconv.FormatInt(batchTime.UnixMilli(), 10)
}

// cleanDescription trims and collapses runs of spaces.
func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
