// Package export writes the current record set to CSV and to a printable
// text table.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"brvm/internal/domain"
)

// CSVHeader is the first line of every export.
const CSVHeader = "Symbol,Company,Price,Variation%,Volume,Value"

// ErrNothingToExport is returned when there are no records.
var ErrNothingToExport = errors.New("nothing to export")

// WriteCSV writes records as CSV lines separated by "\n". Only the company
// name is quoted; no other escaping is applied. Numbers use their shortest
// decimal form.
func WriteCSV(w io.Writer, records []domain.Stock) error {
	var b strings.Builder
	b.WriteString(CSVHeader)
	for _, r := range records {
		price := decimal.NewFromFloat(r.LastPrice)
		b.WriteByte('\n')
		b.WriteString(r.Symbol)
		b.WriteString(`,"`)
		b.WriteString(r.Name)
		b.WriteString(`",`)
		b.WriteString(price.String())
		b.WriteByte(',')
		b.WriteString(decimal.NewFromFloat(r.Variation).String())
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(r.Volume, 10))
		b.WriteByte(',')
		b.WriteString(price.Mul(decimal.NewFromInt(r.Volume)).String())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Filename returns the export name for now's calendar date (UTC).
func Filename(now time.Time) string {
	return "brvm_" + now.UTC().Format("2006-01-02") + ".csv"
}

// ExportCSV writes records to Filename(now) inside dir and returns the path.
func ExportCSV(dir string, records []domain.Stock, now time.Time) (string, error) {
	if len(records) == 0 {
		return "", ErrNothingToExport
	}
	return writeFile(dir, Filename(now), func(w io.Writer) error {
		return WriteCSV(w, records)
	})
}

func writeFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
