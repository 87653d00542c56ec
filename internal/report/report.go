// Package report renders an upload's classification as an XLSX workbook and
// archives it to S3.
//
// The workbook has three sheets:
//
//	Summary   bucket counts
//	Rejected  one row per rejected sku with the reason and the limit hit
//	Accepted  the rows that were added to the list
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetRejected = "Rejected"
	SheetAccepted = "Accepted"
)

// Rejection reasons as shown in the Rejected sheet.
const (
	ReasonNotPurchasable    = "Purchasing disabled"
	ReasonOutOfStock        = "Out of stock"
	ReasonInsufficientStock = "Insufficient stock"
	ReasonBelowMinimum      = "Below minimum quantity"
	ReasonAboveMaximum      = "Above maximum quantity"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Build creates the workbook. The caller must Close it.
func Build(c core.Classification, fileName string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetRejected, SheetAccepted} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	w := &sheetWriter{f: f, header: headerStyle}
	w.rows(SheetSummary, []any{"File", "Bucket", "Rows"}, summaryRows(c, fileName))
	w.rows(SheetRejected, []any{"SKU", "Reason", "Limit"}, rejectedRows(c))
	w.rows(SheetAccepted, []any{"Product ID", "Variant ID", "Quantity", "Options"}, acceptedRows(c))
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// Write renders the workbook to out.
func Write(out io.Writer, c core.Classification, fileName string) error {
	f, err := Build(c, fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Bytes renders the workbook into memory.
func Bytes(c core.Classification, fileName string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c, fileName); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryRows(c core.Classification, fileName string) [][]any {
	return [][]any{
		{fileName, "Accepted", len(c.Accepted)},
		{"", ReasonNotPurchasable, len(c.NotPurchasable)},
		{"", ReasonOutOfStock, len(c.OutOfStock)},
		{"", ReasonInsufficientStock, len(c.InsufficientStock)},
		{"", ReasonBelowMinimum, len(c.BelowMinQuantity)},
		{"", ReasonAboveMaximum, len(c.AboveMaxQuantity)},
		{"", "Total", c.Total()},
	}
}

func rejectedRows(c core.Classification) [][]any {
	rows := make([][]any, 0, c.Rejected())
	for _, sku := range c.NotPurchasable {
		rows = append(rows, []any{sku, ReasonNotPurchasable})
	}
	for _, sku := range c.OutOfStock {
		rows = append(rows, []any{sku, ReasonOutOfStock})
	}
	for _, l := range c.InsufficientStock {
		rows = append(rows, []any{l.VariantSku, ReasonInsufficientStock, l.AvailableAmount})
	}
	for _, l := range c.BelowMinQuantity {
		rows = append(rows, []any{l.VariantSku, ReasonBelowMinimum, l.MinQuantity})
	}
	for _, l := range c.AboveMaxQuantity {
		rows = append(rows, []any{l.VariantSku, ReasonAboveMaximum, l.MaxQuantity})
	}
	return rows
}

func acceptedRows(c core.Classification) [][]any {
	rows := make([][]any, 0, len(c.Accepted))
	for _, p := range c.Accepted {
		opts := make([]string, 0, len(p.OptionList))
		for _, o := range p.OptionList {
			opts = append(opts, o.OptionID+"="+o.OptionValue)
		}
		rows = append(rows, []any{p.ProductID, p.VariantID, p.Quantity, strings.Join(opts, "; ")})
	}
	return rows
}

// sheetWriter keeps the first error so callers can write many cells and
// check once.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) rows(sheet string, header []any, rows [][]any) {
	if w.err != nil {
		return
	}
	w.row(sheet, 1, header)
	if w.err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		w.err = w.f.SetCellStyle(sheet, "A1", last, w.header)
	}
	for i, r := range rows {
		w.row(sheet, i+2, r)
	}
	if w.err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(header))
		w.err = w.f.SetColWidth(sheet, "A", lastCol, 24)
	}
}

func (w *sheetWriter) row(sheet string, n int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", sheet, n, err)
	}
}
