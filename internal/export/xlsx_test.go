package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

func TestWriteTrialBalance(t *testing.T) {
	period, err := domain.MonthlyPeriod(2025, time.January)
	require.NoError(t, err)
	hundred := decimal.NewFromInt(100000)
	report := &domain.PeriodReport{
		Period: period,
		Rows: []domain.TrialBalanceRow{
			{AccountCode: "1-1000", AccountName: "Kas", PeriodDebit: hundred, ClosingDebit: hundred},
			{AccountCode: "4-1000", AccountName: "Pendapatan Bunga", PeriodCredit: hundred, ClosingCredit: hundred},
		},
		Summary: domain.ReportSummary{
			TotalDebit:    hundred,
			TotalCredit:   hundred,
			ShuPeriod:     hundred,
			ShuCumulative: hundred,
			Source:        domain.SourceJurnal,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrialBalance(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	code, err := f.GetCellValue(SheetName, "A4")
	require.NoError(t, err)
	assert.Equal(t, "1-1000", code)
	name, _ := f.GetCellValue(SheetName, "B5")
	assert.Equal(t, "Pendapatan Bunga", name)
	total, _ := f.GetCellValue(SheetName, "B6")
	assert.Equal(t, "Total", total)
	shuLabel, _ := f.GetCellValue(SheetName, "B9")
	assert.Equal(t, "SHU Periode", shuLabel)
	shu, _ := f.GetCellValue(SheetName, "C9")
	assert.Equal(t, "Rp 100.000,00", shu)

	assert.Equal(t, "neraca-monthly-2025-01.xlsx", Filename(report))
}
