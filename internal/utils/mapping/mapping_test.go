package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountMappingKeepsNullableParent(t *testing.T) {
	parent := "1-0000"
	acc := domain.Account{AccountID: 7, Code: "1-1000", Name: "Kas", AccountType: domain.Asset, NormalBalanceSide: domain.Debit, ParentCode: &parent, IsActive: true}

	m := ToModelAccount(acc)
	assert.True(t, m.ParentCode.Valid)
	assert.Equal(t, "1-0000", m.ParentCode.String)

	back := ToDomainAccount(m)
	require.NotNil(t, back.ParentCode)
	assert.Equal(t, parent, *back.ParentCode)

	noParent := ToDomainAccount(models.Account{Code: "1-0000"})
	assert.Nil(t, noParent.ParentCode)
}

func TestSnapshotMappingRoundTripsReport(t *testing.T) {
	period := domain.DailyPeriod(domain.NewDate(2025, time.January, 5))
	snap := domain.PeriodSnapshot{
		Period: period,
		Report: domain.PeriodReport{
			Period:  period,
			Summary: domain.ReportSummary{TotalDebit: decimal.NewFromInt(100000), TotalCredit: decimal.NewFromInt(100000)},
		},
		Revision: 3,
	}

	m, err := ToModelSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, "daily", m.PeriodType)

	back, err := ToDomainSnapshot(m)
	require.NoError(t, err)
	assert.Equal(t, period.Key, back.Report.Key)
	assert.True(t, back.Report.Summary.TotalDebit.Equal(decimal.NewFromInt(100000)))

	_, err = ToDomainSnapshot(models.PeriodSnapshot{PeriodType: "daily", PeriodKey: "x", Report: []byte("{")})
	assert.Error(t, err)
}
