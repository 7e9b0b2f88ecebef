package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

type mockSnapshotService struct {
	mock.Mock
}

func (m *mockSnapshotService) SnapshotPeriod(ctx context.Context, period domain.Period) (*domain.PeriodSnapshot, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodSnapshot), args.Error(1)
}

func (m *mockSnapshotService) RefreshStaleSnapshots(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockSnapshotService) CloseYear(ctx context.Context, year int) ([]domain.PeriodSnapshot, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodSnapshot), args.Error(1)
}

func (m *mockSnapshotService) DeleteSnapshot(ctx context.Context, period domain.Period) error {
	return m.Called(ctx, period).Error(0)
}

func TestHandleSnapshotPeriod(t *testing.T) {
	svc := new(mockSnapshotService)
	jobs := NewSnapshotJobs(svc, nil)
	jan, _ := domain.MonthlyPeriod(2025, time.January)
	task, err := NewSnapshotPeriodTask(jan)
	require.NoError(t, err)

	svc.On("SnapshotPeriod", mock.Anything, jan).Return(&domain.PeriodSnapshot{Period: jan}, nil).Once()
	require.NoError(t, jobs.HandleSnapshotPeriod(context.Background(), task))

	svc.On("SnapshotPeriod", mock.Anything, jan).Return(nil, apperrors.ErrConflict).Once()
	err = jobs.HandleSnapshotPeriod(context.Background(), task)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "conflicts are retried")

	svc.AssertExpectations(t)
}

func TestHandleSnapshotPeriod_BadPayloadSkipsRetry(t *testing.T) {
	jobs := NewSnapshotJobs(new(mockSnapshotService), nil)

	err := jobs.HandleSnapshotPeriod(context.Background(), asynq.NewTask(TaskSnapshotPeriod, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = jobs.HandleSnapshotPeriod(context.Background(),
		asynq.NewTask(TaskSnapshotPeriod, []byte(`{"period_type":"weekly","period_key":"2025-W01"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleCloseYear(t *testing.T) {
	svc := new(mockSnapshotService)
	jobs := NewSnapshotJobs(svc, nil)
	task, err := NewCloseYearTask(2025)
	require.NoError(t, err)

	svc.On("CloseYear", mock.Anything, 2025).Return(nil, apperrors.NewValidationError("tahun", "bad")).Once()
	err = jobs.HandleCloseYear(context.Background(), task)

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHandleRefreshStale(t *testing.T) {
	svc := new(mockSnapshotService)
	jobs := NewSnapshotJobs(svc, nil)

	svc.On("RefreshStaleSnapshots", mock.Anything).Return(3, nil).Once()
	assert.NoError(t, jobs.HandleRefreshStale(context.Background(), NewRefreshStaleTask()))

	svc.On("RefreshStaleSnapshots", mock.Anything).Return(1, assert.AnError).Once()
	assert.ErrorIs(t, jobs.HandleRefreshStale(context.Background(), NewRefreshStaleTask()), assert.AnError)
}

func TestHandlersRegistersEveryTask(t *testing.T) {
	types := map[string]bool{}
	for _, h := range NewSnapshotJobs(new(mockSnapshotService), nil).Handlers() {
		types[h.Type] = true
	}
	assert.Equal(t, map[string]bool{TaskSnapshotPeriod: true, TaskRefreshStale: true, TaskCloseYear: true}, types)
}
