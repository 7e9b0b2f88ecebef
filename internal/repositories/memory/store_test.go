package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewStore()
	for _, acc := range []domain.Account{
		{Code: "1-0000", Name: "Aset", AccountType: domain.Asset, NormalBalanceSide: domain.Debit, IsHeader: true, IsActive: true},
		{Code: "1-1000", Name: "Kas", AccountType: domain.Asset, NormalBalanceSide: domain.Debit, IsActive: true},
		{Code: "4-1000", Name: "Pendapatan Jasa", AccountType: domain.Revenue, NormalBalanceSide: domain.Credit, IsActive: true},
	} {
		_, err := s.store.SaveAccount(s.ctx, acc)
		s.Require().NoError(err)
	}
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s *StoreTestSuite) entry(id string, date time.Time, amount string) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:    id,
		EntryDate:  date,
		SourceKind: domain.SourceManual,
		Lines: []domain.JournalLine{
			{AccountCode: "1-1000", Debit: d(amount), Credit: decimal.Zero},
			{AccountCode: "4-1000", Debit: decimal.Zero, Credit: d(amount)},
		},
	}
}

func (s *StoreTestSuite) TestSaveAccount_AssignsIDsAndRejectsDuplicates() {
	acc, err := s.store.FindAccountByCode(s.ctx, "1-1000")
	s.Require().NoError(err)
	s.Equal(int64(2), acc.AccountID)

	byID, err := s.store.FindAccountByID(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	s.Equal("1-1000", byID.Code)

	_, err = s.store.SaveAccount(s.ctx, domain.Account{Code: "1-1000"})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	postable, err := s.store.ListAccounts(s.ctx, false)
	s.Require().NoError(err)
	s.Len(postable, 2)
}

func (s *StoreTestSuite) TestSaveEntry_AssignsSequenceAndAccountIDs() {
	saved, err := s.store.SaveEntry(s.ctx, s.entry("e1", domain.NewDate(2024, 1, 5), "100"))
	s.Require().NoError(err)
	s.Equal(int64(1), saved.Sequence)
	s.Equal(int64(2), saved.Lines[0].AccountID)

	rev, err := s.store.CurrentRevision(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), rev)
}

func (s *StoreTestSuite) TestSaveEntry_RejectsUnknownAndHeaderAccounts() {
	e := s.entry("bad", domain.NewDate(2024, 1, 5), "10")
	e.Lines[0].AccountCode = "9-9999"
	_, err := s.store.SaveEntry(s.ctx, e)
	s.ErrorIs(err, apperrors.ErrReference)

	e.Lines[0].AccountCode = "1-0000"
	_, err = s.store.SaveEntry(s.ctx, e)
	s.ErrorIs(err, apperrors.ErrReference)

	rev, _ := s.store.CurrentRevision(s.ctx)
	s.Zero(rev, "failed writes must not bump the revision")
}

func (s *StoreTestSuite) TestSaveEntry_RejectsUnbalanced() {
	e := s.entry("bad", domain.NewDate(2024, 1, 5), "10")
	e.Lines[1].Credit = d("9")
	_, err := s.store.SaveEntry(s.ctx, e)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StoreTestSuite) TestWithinWriteTx_RollsBackOnError() {
	boom := errors.New("boom")
	err := s.store.WithinWriteTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.SaveEntry(ctx, s.entry("e1", domain.NewDate(2024, 1, 5), "10")); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindEntryByID(s.ctx, "e1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestQueryLines_OrderAndBounds() {
	_, err := s.store.SaveEntry(s.ctx, s.entry("b", domain.NewDate(2024, 1, 6), "20"))
	s.Require().NoError(err)
	_, err = s.store.SaveEntry(s.ctx, s.entry("a", domain.NewDate(2024, 1, 5), "10"))
	s.Require().NoError(err)
	_, err = s.store.SaveEntry(s.ctx, s.entry("c", domain.NewDate(2024, 1, 6), "30"))
	s.Require().NoError(err)

	var ids []string
	for line, err := range s.store.QueryLines(s.ctx, "1-1000", time.Time{}, domain.NewDate(2024, 1, 31)) {
		s.Require().NoError(err)
		ids = append(ids, line.EntryID)
	}
	s.Equal([]string{"a", "b", "c"}, ids)

	ids = nil
	for line, err := range s.store.QueryLines(s.ctx, "1-1000", domain.NewDate(2024, 1, 5), domain.NewDate(2024, 1, 6)) {
		s.Require().NoError(err)
		ids = append(ids, line.EntryID)
	}
	s.Equal([]string{"b", "c"}, ids)
}

func (s *StoreTestSuite) TestAggregateWindow_SplitsBeforeAndWithin() {
	_, _ = s.store.SaveEntry(s.ctx, s.entry("a", domain.NewDate(2023, 12, 31), "10"))
	_, _ = s.store.SaveEntry(s.ctx, s.entry("b", domain.NewDate(2024, 1, 1), "20"))
	_, _ = s.store.SaveEntry(s.ctx, s.entry("c", domain.NewDate(2024, 2, 1), "40"))

	agg, err := s.store.AggregateWindow(s.ctx, domain.NewDate(2024, 1, 1), domain.NewDate(2024, 1, 31))
	s.Require().NoError(err)
	kas := agg.Accounts["1-1000"]
	s.True(kas.Before.Debit.Equal(d("10")))
	s.True(kas.Within.Debit.Equal(d("20")))
	s.Equal(int64(3), agg.Revision)
}

func (s *StoreTestSuite) TestAggregateDaily_BucketsByDay() {
	_, _ = s.store.SaveEntry(s.ctx, s.entry("a", domain.NewDate(2023, 12, 31), "10"))
	_, _ = s.store.SaveEntry(s.ctx, s.entry("b", domain.NewDate(2024, 1, 5), "20"))
	_, _ = s.store.SaveEntry(s.ctx, s.entry("c", domain.NewDate(2024, 1, 5), "5"))
	_, _ = s.store.SaveEntry(s.ctx, s.entry("d", domain.NewDate(2024, 2, 1), "40"))

	jan, _ := domain.MonthlyPeriod(2024, time.January)
	agg, err := s.store.AggregateDaily(s.ctx, jan)
	s.Require().NoError(err)
	s.True(agg.Before["1-1000"].Debit.Equal(d("10")))
	s.Len(agg.Days, 1)
	s.True(agg.Days[domain.NewDate(2024, 1, 5)]["1-1000"].Debit.Equal(d("25")))
	s.Equal(int64(4), agg.Revision)
}

func (s *StoreTestSuite) TestListEntries_PaginatesNewestFirst() {
	for i, id := range []string{"a", "b", "c"} {
		_, err := s.store.SaveEntry(s.ctx, s.entry(id, domain.NewDate(2024, 1, i+1), "1"))
		s.Require().NoError(err)
	}
	page, token, err := s.store.ListEntries(s.ctx, domain.EntryFilter{}, 2, nil)
	s.Require().NoError(err)
	s.Require().NotNil(token)
	s.Equal("c", page[0].EntryID)
	s.Equal("b", page[1].EntryID)

	page, token, err = s.store.ListEntries(s.ctx, domain.EntryFilter{}, 2, token)
	s.Require().NoError(err)
	s.Nil(token)
	s.Require().Len(page, 1)
	s.Equal("a", page[0].EntryID)
}

func (s *StoreTestSuite) TestSnapshots_StaleOnLaterOrContainingWrite() {
	jan, _ := domain.MonthlyPeriod(2024, time.January)
	feb, _ := domain.MonthlyPeriod(2024, time.February)
	for _, p := range []domain.Period{jan, feb} {
		s.Require().NoError(s.store.SaveSnapshot(s.ctx, domain.PeriodSnapshot{Period: p}))
	}

	_, err := s.store.SaveEntry(s.ctx, s.entry("e1", domain.NewDate(2024, 2, 10), "5"))
	s.Require().NoError(err)

	janSnap, err := s.store.FindSnapshot(s.ctx, domain.PeriodMonthly, "2024-01")
	s.Require().NoError(err)
	s.False(janSnap.Stale)
	febSnap, err := s.store.FindSnapshot(s.ctx, domain.PeriodMonthly, "2024-02")
	s.Require().NoError(err)
	s.True(febSnap.Stale)

	stale, err := s.store.ListStaleSnapshots(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(stale, 1)
}

func (s *StoreTestSuite) TestSaveSnapshot_ConflictsOnMovedRevision() {
	jan, _ := domain.MonthlyPeriod(2024, time.January)
	_, err := s.store.SaveEntry(s.ctx, s.entry("e1", domain.NewDate(2024, 1, 10), "5"))
	s.Require().NoError(err)

	err = s.store.SaveSnapshot(s.ctx, domain.PeriodSnapshot{Period: jan, Revision: 0})
	s.ErrorIs(err, apperrors.ErrConflict)
	s.NoError(s.store.SaveSnapshot(s.ctx, domain.PeriodSnapshot{Period: jan, Revision: 1}))
}

func TestLedgerTx_SourceLookupSumAndIdempotency(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for _, code := range []string{"1-1000", "3-9000"} {
		_, err := store.SaveAccount(ctx, domain.Account{Code: code, AccountType: domain.Asset, NormalBalanceSide: domain.Debit, IsActive: true})
		require.NoError(t, err)
	}
	src := "1-1000@2024-01-01"

	err := store.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.SaveEntry(ctx, domain.JournalEntry{
			EntryID:    "ob",
			EntryDate:  domain.NewDate(2023, 12, 31),
			SourceKind: domain.SourceSaldoAwal,
			SourceID:   &src,
			Lines: []domain.JournalLine{
				{AccountCode: "1-1000", Debit: d("100")},
				{AccountCode: "3-9000", Credit: d("100")},
			},
		})
		if err != nil {
			return err
		}
		return tx.SaveIdempotencyRecord(ctx, domain.IdempotencyRecord{Scope: "s", Key: "k", Fingerprint: "f", EntryID: "ob"})
	})
	require.NoError(t, err)

	err = store.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		found, err := tx.FindEntriesBySource(ctx, domain.SourceSaldoAwal, src)
		require.NoError(t, err)
		assert.Len(t, found, 1)

		sum, err := tx.SumBefore(ctx, "1-1000", domain.NewDate(2024, 1, 1))
		require.NoError(t, err)
		assert.True(t, sum.Debit.Equal(d("100")))

		rec, err := tx.FindIdempotencyRecord(ctx, "s", "k")
		require.NoError(t, err)
		assert.Equal(t, "ob", rec.EntryID)

		_, err = tx.FindIdempotencyRecord(ctx, "s", "other")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}
