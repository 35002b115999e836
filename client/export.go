package client

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nemopss/fin-ng/backend/models"
)

// Columns lists the exportable columns in their default order.
var Columns = []string{"date", "amount", "category", "status", "user", "description"}

var ErrNoColumns = errors.New("no columns selected")

// ExportCSV пишет заголовок из имён колонок и по строке на транзакцию.
// Дата выводится как YYYY-MM-DD в UTC, сумма с двумя знаками после точки.
func ExportCSV(w io.Writer, txs []models.Transaction, columns []string) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}
	for _, col := range columns {
		if _, ok := columnValue(col); !ok {
			return fmt.Errorf("unknown column %q", col)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, t := range txs {
		for i, col := range columns {
			value, _ := columnValue(col)
			record[i] = value(t)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV exports the currently filtered transactions.
func (c *Cache) ExportCSV(w io.Writer, columns []string) error {
	return ExportCSV(w, c.Filtered(), columns)
}

// ExportFileName returns transactions_YYYY-MM-DD.csv for the given day.
func ExportFileName(now time.Time) string {
	return "transactions_" + now.Format(models.DateOnlyLayout) + ".csv"
}

func columnValue(col string) (func(models.Transaction) string, bool) {
	switch col {
	case "date":
		return func(t models.Transaction) string { return t.Date.UTC().Format(models.DateOnlyLayout) }, true
	case "amount":
		return func(t models.Transaction) string { return t.Amount.StringFixed(2) }, true
	case "category":
		return func(t models.Transaction) string { return string(t.Category) }, true
	case "status":
		return func(t models.Transaction) string { return string(t.Status) }, true
	case "user":
		return func(t models.Transaction) string { return t.UserID }, true
	case "description":
		return func(t models.Transaction) string { return t.Description }, true
	default:
		return nil, false
	}
}
