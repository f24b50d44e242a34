package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

const (
	numFields    = 8
	colID        = 0
	colName      = 1
	colMask      = 2
	colType      = 3
	colSubtype   = 4
	colCurrent   = 5
	colAvailable = 6
	colCurrency  = 7
)

// ReadAccounts reads a balances CSV.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes a balances CSV.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account_id", "name", "mask", "type", "subtype", "current", "available", "currency"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colName] = acct.Name
	row[colMask] = acct.Mask
	row[colType] = string(acct.Type)
	row[colSubtype] = acct.Subtype
	row[colCurrent] = acct.Current.StringFixed(2)
	if acct.Available.Valid {
		row[colAvailable] = acct.Available.Decimal.StringFixed(2)
	}
	row[colCurrency] = acct.Currency
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	current, err := decimal.NewFromString(record[colCurrent])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing current %q: %w", record[colCurrent], err)
	}

	var available decimal.NullDecimal
	if record[colAvailable] != "" {
		d, err := decimal.NewFromString(record[colAvailable])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing available %q: %w", record[colAvailable], err)
		}
		available = decimal.NewNullDecimal(d)
	}

	return model.Account{
		ID:        record[colID],
		Name:      record[colName],
		Mask:      record[colMask],
		Type:      model.AccountType(record[colType]),
		Subtype:   record[colSubtype],
		Current:   current,
		Available: available,
		Currency:  record[colCurrency],
	}, nil
}
