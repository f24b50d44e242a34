package ledger

import "github.com/ledgerlens/ledgerlens/internal/model"

// MergeTransactions returns existing with incoming folded in. A transaction
// whose ID is already present replaces the earlier row in place; rows
// without an ID are always appended.
func MergeTransactions(existing, incoming []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(existing)+len(incoming))
	idx := make(map[string]int, len(existing)+len(incoming))
	for _, list := range [][]model.Transaction{existing, incoming} {
		for _, t := range list {
			if t.TransactionID != "" {
				if i, ok := idx[t.TransactionID]; ok {
					out[i] = t
					continue
				}
				idx[t.TransactionID] = len(out)
			}
			out = append(out, t)
		}
	}
	return out
}

// MergeAccounts returns existing with incoming folded in by account ID.
// Later balances win.
func MergeAccounts(existing, incoming []model.Account) []model.Account {
	out := make([]model.Account, 0, len(existing)+len(incoming))
	idx := make(map[string]int, len(existing)+len(incoming))
	for _, list := range [][]model.Account{existing, incoming} {
		for _, a := range list {
			if i, ok := idx[a.ID]; ok {
				out[i] = a
				continue
			}
			idx[a.ID] = len(out)
			out = append(out, a)
		}
	}
	return out
}
