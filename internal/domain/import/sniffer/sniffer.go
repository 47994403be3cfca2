// Package sniffer detects how a bank statement is laid out: the delimiter,
// whether the first line is a header, and which semantic field each column of
// a row carries.
package sniffer

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyFile is returned when a file has no non-blank lines.
var ErrEmptyFile = errors.New("file has no content")

// Header tokens, matched case-insensitively against the first line.
var headerKeywords = []string{"data", "valor", "descricao"}

// RichExportHeader is the header written by the rich CSV export. Files
// carrying it are decoded by column name instead of by column count.
var RichExportHeader = []string{
	"Data", "Valor", "Descrição", "Categoria", "FormaPagamento",
	"Destinatário", "Parcelas", "Origem", "ID",
}

var richExportFingerprint = Fingerprint(RichExportHeader)

// FileConfig holds what was detected about a statement file.
type FileConfig struct {
	Delimiter   rune     // ';' or ','
	HasHeader   bool     // first line is a header and must be skipped
	Headers     []string // header cells when HasHeader
	Fingerprint string   // SHA256 of normalized header names
	RichExport  bool     // header matches RichExportHeader
	Lines       []string // trimmed non-blank lines, header included
}

// Detect splits text into trimmed non-blank lines and inspects the first one
// for delimiter and header.
func Detect(text string) (*FileConfig, error) {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil, ErrEmptyFile
	}

	cfg := &FileConfig{
		Delimiter: DetectDelimiter(lines[0]),
		Lines:     lines,
	}

	if IsHeader(lines[0]) {
		cfg.HasHeader = true
		cfg.Headers = SplitRow(lines[0], cfg.Delimiter)
		cfg.Fingerprint = Fingerprint(cfg.Headers)
		cfg.RichExport = cfg.Fingerprint == richExportFingerprint
	}

	return cfg, nil
}

// SplitLines splits on line breaks, trims every line and drops blank ones.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for i, line := range raw {
		line = cleanLine(line, i == 0)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// DetectDelimiter prefers ';' when present, otherwise ','.
func DetectDelimiter(line string) rune {
	if strings.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

// IsHeader reports whether line contains any header token.
func IsHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SplitRow splits a single line on delimiter, honouring double quotes, and
// trims each cell.
func SplitRow(line string, delimiter rune) []string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	cells, err := reader.Read()
	if err != nil {
		cells = strings.Split(line, string(delimiter))
	}

	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// Fingerprint hashes header names after lowercasing and dropping everything
// but letters and digits, so "Descrição " and "descrição" hash alike.
func Fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}
