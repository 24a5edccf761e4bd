// Package export writes datasets as CSV or XLSX tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bighogz/insider-tracker/internal/models"
)

// Sheet is the worksheet name used by WriteXLSX.
const Sheet = "Trades"

var Header = []string{"Ticker", "Insider", "Title", "TradeType", "Shares", "Price", "Value", "Date", "SecurityType", "TransactionCode"}

// FileName returns insider_trading_YYYYMMDD_HHMMSS.<ext>.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("insider_trading_%s.%s", now.Format("20060102_150405"), ext)
}

func record(t models.Trade) []string {
	return []string{
		t.Ticker,
		t.Insider,
		t.Title,
		string(t.TradeType),
		num(t.Shares),
		num(t.Price),
		num(t.Value),
		t.Date.Format(models.DateLayout),
		string(t.SecurityType),
		t.TransactionCode,
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// WriteCSV writes a header row and one row per trade.
func WriteCSV(w io.Writer, ds models.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range ds {
		if err := cw.Write(record(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV into a single worksheet.
// Numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, ds models.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	head := make([]interface{}, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	if err := f.SetSheetRow(Sheet, "A1", &head); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, t := range ds {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			t.Ticker, t.Insider, t.Title, string(t.TradeType),
			t.Shares, t.Price, t.Value,
			t.Date.Format(models.DateLayout),
			string(t.SecurityType), t.TransactionCode,
		}
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(Sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	_, err := f.WriteTo(w)
	return err
}
