package services

import (
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/platform/config"
)

type containerOptions struct {
	cache  portsrepo.ReportCache
	locker portssvc.PeriodLocker
}

// ContainerOption configures optional infrastructure for NewServiceContainer.
type ContainerOption func(*containerOptions)

// WithReportCache enables the live report cache.
func WithReportCache(cache portsrepo.ReportCache) ContainerOption {
	return func(o *containerOptions) { o.cache = cache }
}

// WithPeriodLocker makes snapshot refreshes coordinate across processes.
func WithPeriodLocker(locker portssvc.PeriodLocker) ContainerOption {
	return func(o *containerOptions) { o.locker = locker }
}

// NewServiceContainer creates a new service container with all services
// initialized from the given repositories.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ContainerOption) *portssvc.ServiceContainer {
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(repos.JournalRepo, accountSvc)
	engine := NewTrialBalanceEngine(repos.JournalRepo, accountSvc)
	rollupSvc := NewRollupService(engine, repos.JournalRepo, repos.SnapshotRepo, accountSvc, o.cache)
	snapshotSvc := NewSnapshotService(engine, repos.SnapshotRepo, o.locker, cfg.WorkerConcurrency)
	openingSvc := NewOpeningBalanceService(repos.JournalRepo, accountSvc, OpeningBalanceAccounts{
		ShuAccountCode:            cfg.ShuAccountCode,
		ShuCounterAccountCode:     cfg.ShuCounterAccountCode,
		OpeningBalanceCounterCode: cfg.OpeningBalanceCounterCode,
	})

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Journal:        journalSvc,
		TrialBalance:   engine,
		Rollup:         rollupSvc,
		Snapshot:       snapshotSvc,
		OpeningBalance: openingSvc,
	}
}
