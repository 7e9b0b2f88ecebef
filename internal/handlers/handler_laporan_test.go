package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/handlers"
)

// --- Mock RollupService ---
type MockRollupService struct {
	mock.Mock
}

func (m *MockRollupService) ResolveDaily(ctx context.Context, date time.Time) (*domain.PeriodReport, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodReport), args.Error(1)
}

func (m *MockRollupService) ComputeMonthly(ctx context.Context, year int, month time.Month) (*domain.PeriodReport, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodReport), args.Error(1)
}

func (m *MockRollupService) ComputeYearly(ctx context.Context, year int) (*domain.PeriodReport, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodReport), args.Error(1)
}

func (m *MockRollupService) Resolve(ctx context.Context, period domain.Period) (*domain.PeriodReport, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodReport), args.Error(1)
}

func (m *MockRollupService) DailyShuSeries(ctx context.Context, period domain.Period) ([]domain.DailyShu, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyShu), args.Error(1)
}

var _ portssvc.RollupService = (*MockRollupService)(nil)

func newMockRouter(t *testing.T, rollup portssvc.RollupService, opts handlers.Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.AuthEnabled = false
	r := gin.New()
	require.NoError(t, handlers.RegisterRoutes(r, cfg, &portssvc.ServiceContainer{Rollup: rollup}, opts))
	return r
}

func TestReport_ErrorStatusMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "computation error hides cause",
			err:        fmt.Errorf("%w: totals mismatch", apperrors.ErrComputation),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to generate report",
		},
		{
			name:       "infrastructure error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to generate report",
		},
		{
			name:       "reference error",
			err:        fmt.Errorf("%w: account 9-9999 does not exist", apperrors.ErrReference),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "account 9-9999 does not exist",
		},
		{
			name:       "app error keeps its code",
			err:        apperrors.NewAppError(http.StatusServiceUnavailable, "store unavailable", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Failed to generate report",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rollup := new(MockRollupService)
			rollup.On("ComputeYearly", mock.Anything, 2025).Return(nil, tc.err).Once()
			r := newMockRouter(t, rollup, handlers.Options{})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/laporan/neraca-tahunan?tahun=2025", nil))

			assert.Equal(t, tc.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tc.wantError)
			if tc.wantStatus >= http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "mismatch")
			}
			rollup.AssertExpectations(t)
		})
	}
}

func TestReport_ServedWithoutAuthWhenDisabled(t *testing.T) {
	rollup := new(MockRollupService)
	period := domain.DailyPeriod(domain.NewDate(2025, time.January, 2))
	rollup.On("ResolveDaily", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(&domain.PeriodReport{Period: period, Summary: domain.ReportSummary{Source: domain.SourceJurnal}}, nil).Once()
	r := newMockRouter(t, rollup, handlers.Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/laporan/neraca-harian?tanggal=2025-01-02", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"periodKey":"2025-01-02"`)
	rollup.AssertExpectations(t)
}

func TestSnapshotAsync_WithoutWorker(t *testing.T) {
	r := newMockRouter(t, new(MockRollupService), handlers.Options{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/laporan/snapshots",
		strings.NewReader(`{"period_type":"monthly","period_key":"2025-01","async":true}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSnapshotAsync_EnqueueFailure(t *testing.T) {
	enqueuer := new(MockEnqueuer)
	enqueuer.On("EnqueueSnapshotPeriod", mock.Anything, mock.Anything).Return("", errors.New("redis down")).Once()
	r := newMockRouter(t, new(MockRollupService), handlers.Options{Enqueuer: enqueuer})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/laporan/snapshots",
		strings.NewReader(`{"period_type":"daily","period_key":"2025-01-02","async":true}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis down")
	enqueuer.AssertExpectations(t)
}
