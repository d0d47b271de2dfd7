package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	report     domain.RepairReport
	purged     int64
	err        error
	staleAfter time.Duration
	olderThan  time.Duration
	purgeCalls int
}

func (f *fakeRepo) RepairConsistency(ctx context.Context, staleAfter time.Duration) (domain.RepairReport, error) {
	f.staleAfter = staleAfter
	return f.report, f.err
}

func (f *fakeRepo) PurgeClosedOrders(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.purgeCalls++
	f.olderThan = olderThan
	return f.purged, f.err
}

func TestRepairPassesStaleness(t *testing.T) {
	repo := &fakeRepo{report: domain.RepairReport{MissingTrackingFixed: 2, EmptyOrdersRemoved: 1}}
	svc := NewService(repo, logger.Discard(), time.Hour, 24*time.Hour)

	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Hour, repo.staleAfter)
	assert.Equal(t, int64(2), report.MissingTrackingFixed)
	assert.Equal(t, int64(1), report.EmptyOrdersRemoved)
}

func TestRepairWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeRepo{err: boom}, logger.Discard(), time.Hour, time.Hour)

	_, err := svc.Repair(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Purge(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPurge(t *testing.T) {
	repo := &fakeRepo{purged: 5}
	svc := NewService(repo, logger.Discard(), time.Hour, 48*time.Hour)

	n, err := svc.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, 48*time.Hour, repo.olderThan)

	disabled := &fakeRepo{purged: 5}
	n, err = NewService(disabled, logger.Discard(), time.Hour, 0).Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, disabled.purgeCalls)
}
