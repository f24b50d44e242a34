package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// Header is the CSV header for an exported ledger.
const Header = "transaction_id,date,source,account_id,name,merchant_name,amount,currency,category,pending"

// categorySep joins category levels in a single CSV cell.
const categorySep = ";"

const (
	numFields   = 10
	dateFormat  = "2006-01-02"
	colTxnID    = 0
	colDate     = 1
	colSource   = 2
	colAcctID   = 3
	colName     = 4
	colMerchant = 5
	colAmount   = 6
	colCurrency = 7
	colCategory = 8
	colPending  = 9
)

// ReadTransactions reads all rows from a ledger CSV reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes txns to w, including the header.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colTxnID] = txn.TransactionID
	if !txn.Date.IsZero() {
		row[colDate] = txn.Date.Format(dateFormat)
	}
	row[colSource] = string(txn.Source)
	row[colAcctID] = txn.AccountID
	row[colName] = txn.Name
	row[colMerchant] = txn.MerchantName
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colCurrency] = txn.Currency
	row[colCategory] = strings.Join(txn.Category, categorySep)
	row[colPending] = strconv.FormatBool(txn.Pending)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. An empty date
// cell leaves Date zero so the detector can reject the row by index.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var (
		date time.Time
		err  error
	)
	if record[colDate] != "" {
		date, err = time.Parse(dateFormat, record[colDate])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var pending bool
	if record[colPending] != "" {
		pending, err = strconv.ParseBool(record[colPending])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing pending %q: %w", record[colPending], err)
		}
	}

	var category []string
	if record[colCategory] != "" {
		category = strings.Split(record[colCategory], categorySep)
	}

	return model.Transaction{
		TransactionID: record[colTxnID],
		AccountID:     record[colAcctID],
		Source:        model.AccountSource(record[colSource]),
		Date:          date,
		Name:          record[colName],
		MerchantName:  record[colMerchant],
		Amount:        amount,
		Currency:      record[colCurrency],
		Category:      category,
		Pending:       pending,
	}, nil
}
