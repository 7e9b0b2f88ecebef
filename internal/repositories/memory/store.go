// Package memory is an in-process ledger store used for local development and tests.
// It honours the same contracts as the PostgreSQL repositories: one global writer,
// atomic multi-line entries, and snapshot invalidation inside the write.
package memory

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_ledger/internal/utils/accounting"
	"github.com/SscSPs/koperasi_ledger/internal/utils/pagination"
)

type snapshotKey struct {
	periodType domain.PeriodType
	periodKey  string
}

type ledgerState struct {
	accounts      map[string]domain.Account
	accountCodes  map[int64]string
	nextAccountID int64

	entries  map[string]domain.JournalEntry
	nextSeq  int64
	revision int64

	snapshots   map[snapshotKey]domain.PeriodSnapshot
	idempotency map[string]domain.IdempotencyRecord
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		accounts:     make(map[string]domain.Account),
		accountCodes: make(map[int64]string),
		entries:      make(map[string]domain.JournalEntry),
		snapshots:    make(map[snapshotKey]domain.PeriodSnapshot),
		idempotency:  make(map[string]domain.IdempotencyRecord),
	}
}

// clone copies the maps; stored values are never mutated in place.
func (s *ledgerState) clone() *ledgerState {
	return &ledgerState{
		accounts:      maps.Clone(s.accounts),
		accountCodes:  maps.Clone(s.accountCodes),
		nextAccountID: s.nextAccountID,
		entries:       maps.Clone(s.entries),
		nextSeq:       s.nextSeq,
		revision:      s.revision,
		snapshots:     maps.Clone(s.snapshots),
		idempotency:   maps.Clone(s.idempotency),
	}
}

// Store implements the account, journal and snapshot repositories.
type Store struct {
	mu    sync.RWMutex
	state *ledgerState
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newLedgerState(), now: time.Now}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.SnapshotRepository      = (*Store)(nil)
)

// NewRepositoryProvider wires one Store behind every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  store,
		JournalRepo:  store,
		SnapshotRepo: store,
	}
}

// --- accounts ---

func (s *Store) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.state.accounts[code]
	if !ok {
		return nil, apperrors.NewNotFoundError("account " + code)
	}
	return &acc, nil
}

func (s *Store) FindAccountByID(_ context.Context, accountID int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.state.accountCodes[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account id %d", accountID))
	}
	acc := s.state.accounts[code]
	return &acc, nil
}

func (s *Store) FindAccountsByCodes(_ context.Context, codes []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.findAccounts(codes), nil
}

func (st *ledgerState) findAccounts(codes []string) map[string]domain.Account {
	out := make(map[string]domain.Account, len(codes))
	for _, c := range codes {
		if acc, ok := st.accounts[c]; ok {
			out[c] = acc
		}
	}
	return out
}

func (s *Store) ListAccounts(_ context.Context, includeHeaders bool) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.state.accounts))
	for _, acc := range s.state.accounts {
		if acc.IsHeader && !includeHeaders {
			continue
		}
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.state.accounts[account.Code]; exists {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
	}
	s.state.nextAccountID++
	account.AccountID = s.state.nextAccountID
	s.state.accounts[account.Code] = account
	s.state.accountCodes[account.AccountID] = account.Code
	return &account, nil
}

func (s *Store) SetAccountActive(_ context.Context, code string, active bool, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.state.accounts[code]
	if !ok {
		return apperrors.NewNotFoundError("account " + code)
	}
	acc.IsActive = active
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = userID
	s.state.accounts[code] = acc
	return nil
}

// --- journal reads ---

func (s *Store) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry " + entryID)
	}
	return &e, nil
}

func (s *Store) ListEntries(_ context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	var (
		afterDate time.Time
		afterSeq  int64
		hasCursor bool
	)
	if nextToken != nil && *nextToken != "" {
		d, seq, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		afterDate, afterSeq, hasCursor = d, seq, true
	}

	s.mu.RLock()
	all := make([]domain.JournalEntry, 0, len(s.state.entries))
	for _, e := range s.state.entries {
		if !filter.From.IsZero() && e.EntryDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.EntryDate.After(filter.To) {
			continue
		}
		if filter.SourceKind != "" && e.SourceKind != filter.SourceKind {
			continue
		}
		all = append(all, e)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return newerThan(all[i], all[j]) })

	page := make([]domain.JournalEntry, 0, limit+1)
	for _, e := range all {
		if hasCursor && !olderThanCursor(e, afterDate, afterSeq) {
			continue
		}
		page = append(page, e)
		if len(page) > limit {
			break
		}
	}

	var token *string
	if len(page) > limit {
		last := page[limit-1]
		t := pagination.EncodeToken(last.EntryDate, last.Sequence)
		token = &t
		page = page[:limit]
	}
	return page, token, nil
}

func newerThan(a, b domain.JournalEntry) bool {
	if !a.EntryDate.Equal(b.EntryDate) {
		return a.EntryDate.After(b.EntryDate)
	}
	return a.Sequence > b.Sequence
}

func olderThanCursor(e domain.JournalEntry, date time.Time, seq int64) bool {
	if !e.EntryDate.Equal(date) {
		return e.EntryDate.Before(date)
	}
	return e.Sequence < seq
}

func (s *Store) QueryLines(ctx context.Context, accountCode string, fromExclusive, toInclusive time.Time) iter.Seq2[domain.LedgerLine, error] {
	return func(yield func(domain.LedgerLine, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.LedgerLine{}, err)
			return
		}
		s.mu.RLock()
		lines := s.state.linesFor(accountCode, fromExclusive, toInclusive)
		s.mu.RUnlock()
		for _, l := range lines {
			if !yield(l, nil) {
				return
			}
		}
	}
}

func (st *ledgerState) linesFor(accountCode string, fromExclusive, toInclusive time.Time) []domain.LedgerLine {
	var out []domain.LedgerLine
	for _, e := range st.entries {
		if !fromExclusive.IsZero() && !e.EntryDate.After(fromExclusive) {
			continue
		}
		if e.EntryDate.After(toInclusive) {
			continue
		}
		for i, l := range e.Lines {
			if l.AccountCode != accountCode {
				continue
			}
			out = append(out, domain.LedgerLine{
				EntryID:       e.EntryID,
				EntryDate:     e.EntryDate,
				EntrySequence: e.Sequence,
				LineNo:        i + 1,
				JournalLine:   l,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.EntrySequence != b.EntrySequence {
			return a.EntrySequence < b.EntrySequence
		}
		return a.LineNo < b.LineNo
	})
	return out
}

func (s *Store) AggregateWindow(_ context.Context, start, end time.Time) (*domain.WindowAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg := &domain.WindowAggregate{
		Start:    start,
		End:      end,
		Accounts: make(map[string]domain.AccountWindowTotals),
		Revision: s.state.revision,
	}
	for _, e := range s.state.entries {
		if e.EntryDate.After(end) {
			continue
		}
		before := e.EntryDate.Before(start)
		for _, l := range e.Lines {
			t := agg.Accounts[l.AccountCode]
			movement := domain.BalanceTotals{Debit: l.Debit, Credit: l.Credit}
			if before {
				t.Before = t.Before.Add(movement)
			} else {
				t.Within = t.Within.Add(movement)
			}
			agg.Accounts[l.AccountCode] = t
		}
	}
	return agg, nil
}

func (s *Store) AggregateDaily(_ context.Context, period domain.Period) (*domain.DailyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg := domain.NewDailyAggregate(period, s.state.revision)
	for _, e := range s.state.entries {
		switch {
		case e.EntryDate.Before(period.Start):
			for _, l := range e.Lines {
				agg.Before[l.AccountCode] = agg.Before[l.AccountCode].Add(domain.BalanceTotals{Debit: l.Debit, Credit: l.Credit})
			}
		case period.Contains(e.EntryDate):
			for _, l := range e.Lines {
				agg.AddWithin(e.EntryDate, l.AccountCode, domain.BalanceTotals{Debit: l.Debit, Credit: l.Credit})
			}
		}
	}
	return agg, nil
}

func (s *Store) CurrentRevision(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.revision, nil
}

// --- journal writes ---

func (s *Store) SaveEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var saved *domain.JournalEntry
	err := s.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		saved, err = tx.SaveEntry(ctx, entry)
		return err
	})
	return saved, err
}

func (s *Store) DeleteEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var deleted *domain.JournalEntry
	err := s.WithinWriteTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		deleted, err = tx.DeleteEntry(ctx, entryID)
		return err
	})
	return deleted, err
}

// WithinWriteTx runs fn against a copy of the state and publishes it on success.
func (s *Store) WithinWriteTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{state: s.state.clone(), now: s.now}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if tx.dirty {
		tx.state.revision++
	}
	s.state = tx.state
	return nil
}

type memTx struct {
	state *ledgerState
	now   func() time.Time
	dirty bool
}

func (t *memTx) FindAccountsByCodes(_ context.Context, codes []string) (map[string]domain.Account, error) {
	return t.state.findAccounts(codes), nil
}

func (t *memTx) SaveEntry(_ context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	if err := accounting.ValidateLines(entry.Lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if _, exists := t.state.entries[entry.EntryID]; exists {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	lines := slices.Clone(entry.Lines)
	for i, l := range lines {
		acc, ok := t.state.accounts[l.AccountCode]
		if !ok {
			return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrReference, l.AccountCode)
		}
		if acc.IsHeader {
			return nil, fmt.Errorf("%w: account %s is a header account", apperrors.ErrReference, l.AccountCode)
		}
		lines[i].AccountID = acc.AccountID
	}
	entry.Lines = lines
	entry.EntryDate = domain.NormalizeDate(entry.EntryDate)
	t.state.nextSeq++
	entry.Sequence = t.state.nextSeq
	t.state.entries[entry.EntryID] = entry
	t.invalidateFrom(entry.EntryDate)
	return &entry, nil
}

func (t *memTx) DeleteEntry(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	e, ok := t.state.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry " + entryID)
	}
	delete(t.state.entries, entryID)
	for k, rec := range t.state.idempotency {
		if rec.EntryID == entryID {
			delete(t.state.idempotency, k)
		}
	}
	t.invalidateFrom(e.EntryDate)
	return &e, nil
}

// invalidateFrom marks every snapshot whose window ends on or after date stale.
func (t *memTx) invalidateFrom(date time.Time) {
	t.dirty = true
	for k, snap := range t.state.snapshots {
		if !snap.End.Before(date) && !snap.Stale {
			snap.Stale = true
			t.state.snapshots[k] = snap
		}
	}
}

func (t *memTx) FindEntriesBySource(_ context.Context, kind domain.SourceKind, sourceID string) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	for _, e := range t.state.entries {
		if e.SourceKind == kind && e.SourceID != nil && *e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (t *memTx) SumBefore(_ context.Context, accountCode string, before time.Time) (domain.BalanceTotals, error) {
	var totals domain.BalanceTotals
	for _, e := range t.state.entries {
		if !e.EntryDate.Before(before) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountCode == accountCode {
				totals = totals.Add(domain.BalanceTotals{Debit: l.Debit, Credit: l.Credit})
			}
		}
	}
	return totals, nil
}

func idempotencyKey(scope, key string) string {
	return strings.Join([]string{scope, key}, "\x00")
}

func (t *memTx) FindIdempotencyRecord(_ context.Context, scope, key string) (*domain.IdempotencyRecord, error) {
	rec, ok := t.state.idempotency[idempotencyKey(scope, key)]
	if !ok {
		return nil, apperrors.NewNotFoundError("idempotency key " + key)
	}
	return &rec, nil
}

func (t *memTx) SaveIdempotencyRecord(_ context.Context, record domain.IdempotencyRecord) error {
	k := idempotencyKey(record.Scope, record.Key)
	if _, exists := t.state.idempotency[k]; exists {
		return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, record.Key)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now().UTC()
	}
	t.state.idempotency[k] = record
	return nil
}

// --- snapshots ---

func (s *Store) FindSnapshot(_ context.Context, periodType domain.PeriodType, periodKey string) (*domain.PeriodSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.state.snapshots[snapshotKey{periodType, periodKey}]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("snapshot %s/%s", periodType, periodKey))
	}
	return &snap, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snapshot domain.PeriodSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot.Revision != s.state.revision {
		return fmt.Errorf("%w: ledger moved from revision %d to %d while computing snapshot %s/%s",
			apperrors.ErrConflict, snapshot.Revision, s.state.revision, snapshot.Type, snapshot.Key)
	}
	snapshot.Stale = false
	if snapshot.ComputedAt.IsZero() {
		snapshot.ComputedAt = s.now().UTC()
	}
	s.state.snapshots[snapshotKey{snapshot.Type, snapshot.Key}] = snapshot
	return nil
}

func (s *Store) ListStaleSnapshots(_ context.Context, limit int) ([]domain.PeriodSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PeriodSnapshot
	for _, snap := range s.state.snapshots {
		if snap.Stale {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].End.Before(out[j].End)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteSnapshot(_ context.Context, periodType domain.PeriodType, periodKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := snapshotKey{periodType, periodKey}
	if _, ok := s.state.snapshots[k]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("snapshot %s/%s", periodType, periodKey))
	}
	delete(s.state.snapshots, k)
	return nil
}
