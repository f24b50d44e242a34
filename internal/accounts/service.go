package accounts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// Service provides in-memory lookup over the linked accounts.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// Total is the sum of current balances in one currency, split by account type.
type Total struct {
	Currency string
	Assets   decimal.Decimal // depository and investment
	Debts    decimal.Decimal // credit and loan
}

// Net returns assets minus debts.
func (t Total) Net() decimal.Decimal {
	return t.Assets.Sub(t.Debts)
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// Load reads a balances CSV written by Save.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening balances: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading balances: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Totals sums current balances per currency, sorted by currency. Accounts
// without a currency are reported under fallback.
func (s *Service) Totals(fallback string) []Total {
	byCur := make(map[string]*Total)
	for _, a := range s.accounts {
		cur := a.Currency
		if cur == "" {
			cur = fallback
		}
		t, ok := byCur[cur]
		if !ok {
			t = &Total{Currency: cur}
			byCur[cur] = t
		}
		switch a.Type {
		case model.AccountTypeCredit, model.AccountTypeLoan:
			t.Debts = t.Debts.Add(a.Current)
		default:
			t.Assets = t.Assets.Add(a.Current)
		}
	}

	out := make([]Total, 0, len(byCur))
	for _, t := range byCur {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// Save writes the balances to path as CSV.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating balances dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating balances file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing balances: %w", err)
	}
	return nil
}
