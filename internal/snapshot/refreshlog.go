package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// RefreshLogHeader is the CSV header for refresh-log.csv.
const RefreshLogHeader = "timestamp,snapshot,transactions"

const (
	numRefreshFields = 3
	logDir           = "logs"
	refreshLogFile   = "logs/refresh-log.csv"
	colTimestamp     = 0
	colSnapshot      = 1
	colTransactions  = 2
)

// MarshalRefresh converts a Refresh to a CSV row.
func MarshalRefresh(r Refresh) []string {
	row := make([]string, numRefreshFields)
	row[colTimestamp] = r.At.UTC().Format(time.RFC3339Nano)
	row[colSnapshot] = r.Snapshot
	row[colTransactions] = strconv.Itoa(r.Transactions)
	return row
}

// UnmarshalRefresh converts a CSV row to a Refresh.
func UnmarshalRefresh(record []string) (Refresh, error) {
	if len(record) != numRefreshFields {
		return Refresh{}, fmt.Errorf("expected %d fields, got %d", numRefreshFields, len(record))
	}

	at, err := time.Parse(time.RFC3339Nano, record[colTimestamp])
	if err != nil {
		return Refresh{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	n, err := strconv.Atoi(record[colTransactions])
	if err != nil {
		return Refresh{}, fmt.Errorf("parsing transactions %q: %w", record[colTransactions], err)
	}

	return Refresh{At: at, Snapshot: record[colSnapshot], Transactions: n}, nil
}

func appendRefresh(root string, r Refresh) error {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, refreshLogFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening refresh log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(RefreshLogHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(MarshalRefresh(r)); err != nil {
		return fmt.Errorf("writing refresh: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func readRefreshLog(root string) ([]Refresh, error) {
	f, err := os.Open(filepath.Join(root, refreshLogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening refresh log: %w", err)
	}
	defer f.Close()

	return readRefreshes(f)
}

func readRefreshes(r io.Reader) ([]Refresh, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numRefreshFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading refresh log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var out []Refresh
	for i, rec := range records[1:] {
		r, err := UnmarshalRefresh(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}
