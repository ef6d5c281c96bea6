package repositories

// RepositoryProvider bundles the repository facades handed to the service
// container.
type RepositoryProvider struct {
	Tx         TxManager
	Account    AccountRepositoryFacade
	Ledger     LedgerRepositoryFacade
	DayBook    DayBookRepositoryFacade
	Settlement SettlementRepositoryFacade
	Audit      AuditRepository
}
