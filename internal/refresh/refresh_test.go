package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens/internal/logging"
	"github.com/ledgerlens/ledgerlens/internal/snapshot"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewFileStore(t.TempDir(), "")
	mock := logging.NewMockLogger()
	rec := NewRecorder(store, mock)

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return clock }

	st, err := rec.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Known)
	assert.True(t, st.Stale(time.Hour))
	assert.Equal(t, "never refreshed", st.String())

	require.NoError(t, rec.Record(ctx, "checking_20240301", 12))
	assert.True(t, mock.HasEntry("INFO", "Refresh recorded"))

	clock = clock.Add(90 * time.Minute)
	st, err = rec.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Known)
	assert.Equal(t, "checking_20240301", st.Last.Snapshot)
	assert.Equal(t, 12, st.Last.Transactions)
	assert.Equal(t, 90*time.Minute, st.Age)
	assert.True(t, st.Stale(time.Hour))
	assert.False(t, st.Stale(2*time.Hour))
	assert.Contains(t, st.String(), "1h30m0s ago")
}

func TestRecorderNilLogger(t *testing.T) {
	rec := NewRecorder(snapshot.NewFileStore(t.TempDir(), ""), nil)
	require.NoError(t, rec.Record(context.Background(), "credit_20240301", 0))
}
