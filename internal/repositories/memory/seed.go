package memory

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

type chartRow struct {
	code, name string
	typ        domain.AccountType
	parent     string
	header     bool
	carriesShu bool
}

// baselineChart mirrors migrations/000002_seed_coa.up.sql.
var baselineChart = []chartRow{
	{"1-0000", "Aset", domain.Asset, "", true, false},
	{"1-1000", "Kas", domain.Asset, "1-0000", false, false},
	{"1-1100", "Bank", domain.Asset, "1-0000", false, false},
	{"1-2000", "Piutang Pinjaman Anggota", domain.Asset, "1-0000", false, false},
	{"2-0000", "Kewajiban", domain.Liability, "", true, false},
	{"2-1000", "Simpanan Sukarela", domain.Liability, "2-0000", false, false},
	{"2-1100", "Simpanan Harian", domain.Liability, "2-0000", false, false},
	{"3-0000", "Ekuitas", domain.Equity, "", true, false},
	{"3-1000", "Simpanan Pokok", domain.Equity, "3-0000", false, false},
	{"3-1100", "Simpanan Wajib", domain.Equity, "3-0000", false, false},
	{"3-1300", "SHU Tahun Berjalan", domain.Equity, "3-0000", false, true},
	{"3-9000", "Ekuitas Saldo Awal", domain.Equity, "3-0000", false, false},
	{"4-0000", "Pendapatan", domain.Revenue, "", true, false},
	{"4-1000", "Pendapatan Bunga", domain.Revenue, "4-0000", false, false},
	{"4-2000", "Pendapatan Administrasi", domain.Revenue, "4-0000", false, false},
	{"5-0000", "Beban", domain.Expense, "", true, false},
	{"5-1000", "Biaya Administrasi", domain.Expense, "5-0000", false, false},
	{"5-2000", "Biaya Operasional", domain.Expense, "5-0000", false, false},
}

// BaselineChart returns the koperasi chart of accounts the postgres
// migrations seed.
func BaselineChart(now time.Time) []domain.Account {
	accounts := make([]domain.Account, 0, len(baselineChart))
	for _, row := range baselineChart {
		acc := domain.Account{
			Code:              row.code,
			Name:              row.name,
			AccountType:       row.typ,
			NormalBalanceSide: row.typ.DefaultNormalSide(),
			IsHeader:          row.header,
			IsActive:          true,
			CarriesShu:        row.carriesShu,
			AuditFields: domain.AuditFields{
				CreatedAt: now, CreatedBy: domain.SystemActor,
				LastUpdatedAt: now, LastUpdatedBy: domain.SystemActor,
			},
		}
		if row.parent != "" {
			parent := row.parent
			acc.ParentCode = &parent
		}
		accounts = append(accounts, acc)
	}
	return accounts
}

// Seed saves accounts whose codes are not taken yet.
func (s *Store) Seed(ctx context.Context, accounts []domain.Account) error {
	for _, acc := range accounts {
		if _, err := s.SaveAccount(ctx, acc); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
	}
	return nil
}
