package core

// ingest.go verifies an uploaded file and turns it into header-keyed rows.
//
// Parsing is forgiving. A malformed file never fails here; its
// rows simply come back from enrichment as rejections. Only I/O errors are
// returned from ParseCSV.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxFileSize is the largest accepted upload (50MB).
const MaxFileSize int64 = 50 * 1024 * 1024

const csvMediaType = "text/csv"

var (
	// ErrFileStructure is returned for anything that is not a CSV file.
	ErrFileStructure = errors.New("file is not text/csv")

	// ErrFileTooLarge is returned when the file exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

// VerifyFile checks the declared content type and size before any byte is
// read. Type is checked first. maxSize <= 0 means MaxFileSize.
func VerifyFile(size int64, contentType string, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, csvMediaType) {
		return fmt.Errorf("%w: got %q", ErrFileStructure, contentType)
	}

	if size > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, maxSize)
	}
	return nil
}

// NewCleanReader strips a leading UTF-8 BOM and replaces invalid UTF-8 with
// U+FFFD, so spreadsheet exports from Windows parse the same as anything else.
func NewCleanReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.UTF8BOM.NewDecoder(),
		runes.ReplaceIllFormed(),
	))
}

// ParseCSV reads the whole file and returns one ParsedRow per non-empty data
// line, keyed by the first non-empty line. Cells missing from a short row map
// to ""; cells beyond the header are ignored.
func ParseCSV(r io.Reader) ([]ParsedRow, error) {
	raw, err := io.ReadAll(NewCleanReader(r))
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	lines := removeEmptyLines(strings.Split(string(raw), "\n"))
	if len(lines) == 0 {
		return []ParsedRow{}, nil
	}

	header := splitRecord(lines[0])
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]ParsedRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, toParsedRow(header, splitRecord(line)))
	}
	return rows, nil
}

// removeEmptyLines trims a trailing carriage return from every line and drops
// lines that hold nothing but whitespace and separators.
func removeEmptyLines(lines []string) []string {
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.Trim(line, " \t,") == "" {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// splitRecord parses a single line with CSV quoting rules. A line the csv
// package cannot make sense of falls back to a plain comma split.
func splitRecord(line string) RawRow {
	reader := csv.NewReader(strings.NewReader(line))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	record, err := reader.Read()
	if err != nil {
		return strings.Split(line, ",")
	}
	return record
}

func toParsedRow(header []string, record RawRow) ParsedRow {
	row := make(ParsedRow, len(header))
	for i, key := range header {
		if key == "" {
			continue
		}
		if i < len(record) {
			row[key] = record[i]
		} else {
			row[key] = ""
		}
	}
	return row
}
