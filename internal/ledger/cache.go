package ledger

import (
	"context"
	"sync"

	"github.com/ledgerlens/ledgerlens/internal/logging"
	"github.com/ledgerlens/ledgerlens/internal/snapshot"
)

// Cache memoizes the derived ledger. It rebuilds only when the identity of
// the newest snapshots changes. With a Disk the ledger also survives
// between processes.
type Cache struct {
	store snapshot.Store
	disk  *Disk
	log   logging.Logger

	mu     sync.Mutex
	ledger *Ledger
}

// NewCache returns a Cache reading snapshots from store. disk may be nil.
func NewCache(store snapshot.Store, disk *Disk, log logging.Logger) *Cache {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Cache{store: store, disk: disk, log: log}
}

// Current returns the ledger for the newest snapshots. Snapshot content is
// only loaded when neither memory nor disk holds a ledger for them.
func (c *Cache) Current(ctx context.Context) (*Ledger, error) {
	checking, credit, err := Heads(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if checking == nil && credit == nil {
		return nil, ErrNoSnapshots
	}
	key := KeyOf(checking, credit)

	c.mu.Lock()
	defer c.mu.Unlock()

	klog := c.log.WithField(logging.FieldSnapshot, string(key))
	if c.ledger != nil && c.ledger.Key == key {
		klog.Debug("Ledger cache hit")
		return c.ledger, nil
	}

	if c.disk != nil {
		l, ok, err := c.disk.Load(key)
		switch {
		case err != nil:
			klog.WithError(err).Warn("Ignoring unreadable ledger cache")
		case ok:
			c.ledger = l
			klog.Debug("Ledger loaded from cache")
			return l, nil
		}
	}

	checking, credit, err = Latest(ctx, c.store)
	if err != nil {
		return nil, err
	}
	l, err := Build(checking, credit)
	if err != nil {
		return nil, err
	}
	c.ledger = l
	c.log.WithFields(
		logging.F(logging.FieldSnapshot, string(l.Key)),
		logging.F(logging.FieldCount, len(l.Transactions)),
	).Debug("Ledger rebuilt")

	if c.disk != nil {
		if err := c.disk.Save(l); err != nil {
			c.log.WithError(err).Warn("Could not write ledger cache")
		}
	}
	return l, nil
}
