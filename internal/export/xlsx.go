// Package export renders period reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/utils"
)

// SheetName is the only sheet of an exported report.
const SheetName = "Neraca Saldo"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headings = []string{
	"Kode", "Nama Akun",
	"Saldo Awal Debet", "Saldo Awal Kredit",
	"Mutasi Debet", "Mutasi Kredit",
	"Saldo Akhir Debet", "Saldo Akhir Kredit",
}

// Filename names the download, e.g. neraca-monthly-2025-01.xlsx.
func Filename(report *domain.PeriodReport) string {
	return fmt.Sprintf("neraca-%s-%s.xlsx", report.Type, report.Key)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func amount(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// WriteTrialBalance writes report as an XLSX workbook to w.
func WriteTrialBalance(w io.Writer, report *domain.PeriodReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Neraca Saldo %s %s (%s s/d %s)", report.Type, report.Key,
		report.Start.Format(domain.DateFormat), report.End.Format(domain.DateFormat))
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return err
	}

	const headerRow = 3
	for i, h := range headings {
		if err := f.SetCellValue(SheetName, cell(i+1, headerRow), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetName, cell(1, headerRow), cell(len(headings), headerRow), bold); err != nil {
		return err
	}

	row := headerRow + 1
	for _, r := range report.Rows {
		values := []any{
			r.AccountCode, r.AccountName,
			amount(r.OpeningDebit), amount(r.OpeningCredit),
			amount(r.PeriodDebit), amount(r.PeriodCredit),
			amount(r.ClosingDebit), amount(r.ClosingCredit),
		}
		if err := f.SetSheetRow(SheetName, cell(1, row), &values); err != nil {
			return err
		}
		row++
	}

	totals := []any{"", "Total", nil, nil, nil, nil, amount(report.Summary.TotalDebit), amount(report.Summary.TotalCredit)}
	if err := f.SetSheetRow(SheetName, cell(1, row), &totals); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, cell(1, row), cell(len(headings), row), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, cell(3, headerRow+1), cell(len(headings), row), money); err != nil {
		return err
	}

	row += 2
	shu := [][2]string{
		{"SHU Awal", utils.FormatRupiah(report.Summary.ShuOpening)},
		{"SHU Periode", utils.FormatRupiah(report.Summary.ShuPeriod)},
		{"SHU Kumulatif", utils.FormatRupiah(report.Summary.ShuCumulative)},
		{"Sumber", string(report.Summary.Source)},
	}
	for _, line := range shu {
		if err := f.SetCellValue(SheetName, cell(2, row), line[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell(3, row), line[1]); err != nil {
			return err
		}
		row++
	}

	if err := f.SetColWidth(SheetName, "B", "B", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "C", "H", 18); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
