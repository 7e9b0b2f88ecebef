package services

// ServiceContainer holds instances of all the application services.
// Handlers and the worker receive their dependencies from it.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Journal        JournalSvcFacade
	TrialBalance   TrialBalanceEngine
	Rollup         RollupService
	Snapshot       SnapshotService
	OpeningBalance OpeningBalanceSvc
}
