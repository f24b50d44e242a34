// Package plaid decodes and encodes raw snapshot documents in the
// aggregator's shape: {"transactions": [...], "accounts_full": [...], "item": {...}}.
package plaid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMalformed is wrapped by every decoding failure.
var ErrMalformed = errors.New("malformed snapshot document")

const dateLayout = "2006-01-02"

// Document is one raw snapshot of a linked institution.
type Document struct {
	Transactions []Transaction `json:"transactions"`
	Accounts     []Account     `json:"accounts_full"`
	Item         Item          `json:"item"`
}

// Transaction is a transaction as reported by the aggregator. Amount is
// positive when money leaves the account.
type Transaction struct {
	TransactionID   string              `json:"transaction_id"`
	AccountID       string              `json:"account_id"`
	Name            string              `json:"name"`
	MerchantName    *string             `json:"merchant_name"`
	Amount          decimal.NullDecimal `json:"amount"`
	ISOCurrencyCode *string             `json:"iso_currency_code"`
	Date            string              `json:"date"`
	Category        Category            `json:"category"`
	Pending         bool                `json:"pending"`
}

// Account is an entry of accounts_full.
type Account struct {
	AccountID string   `json:"account_id"`
	Name      string   `json:"name"`
	Mask      *string  `json:"mask"`
	Type      string   `json:"type"`
	Subtype   *string  `json:"subtype"`
	Balances  Balances `json:"balances"`
}

// Balances holds an account's reported balances.
type Balances struct {
	Current         decimal.NullDecimal `json:"current"`
	Available       decimal.NullDecimal `json:"available"`
	ISOCurrencyCode *string             `json:"iso_currency_code"`
}

// Item identifies the linked institution.
type Item struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// Category is an ordered category path, most general first. It only
// decodes from a JSON array of strings or null.
type Category []string

func (c *Category) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("category must be an array of strings, got %s", truncate(data))
	}
	out := make(Category, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return fmt.Errorf("category[%d] must be a string, got %s", i, truncate(r))
		}
	}
	*c = out
	return nil
}

// Decode parses and validates a snapshot document.
func Decode(r io.Reader) (*Document, error) {
	var raw struct {
		Transactions []json.RawMessage `json:"transactions"`
		Accounts     []Account         `json:"accounts_full"`
		Item         Item              `json:"item"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	doc := Document{
		Transactions: make([]Transaction, len(raw.Transactions)),
		Accounts:     raw.Accounts,
		Item:         raw.Item,
	}
	for i, msg := range raw.Transactions {
		if err := json.Unmarshal(msg, &doc.Transactions[i]); err != nil {
			return nil, fmt.Errorf("%w: transactions[%d]: %v", ErrMalformed, i, err)
		}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding snapshot document: %w", err)
	}
	return nil
}

func (d *Document) validate() error {
	for i, t := range d.Transactions {
		if !t.Amount.Valid {
			return fmt.Errorf("%w: transactions[%d] (%s): amount is missing", ErrMalformed, i, t.TransactionID)
		}
		if _, err := time.Parse(dateLayout, t.Date); err != nil {
			return fmt.Errorf("%w: transactions[%d] (%s): date %q: %v", ErrMalformed, i, t.TransactionID, t.Date, err)
		}
	}
	for i, a := range d.Accounts {
		if a.AccountID == "" {
			return fmt.Errorf("%w: accounts_full[%d]: account_id is missing", ErrMalformed, i)
		}
	}
	return nil
}

func truncate(b []byte) string {
	const max = 40
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
