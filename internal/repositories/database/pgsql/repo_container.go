package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahakari/coopcore/internal/core/events"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pgsql repositories onto one pool. publisher
// receives domain events after their unit of work commits; it may be nil.
func NewRepositoryProvider(dbPool *pgxpool.Pool, publisher events.Publisher) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool, accountRepo)
	dayBookRepo := newPgxDayBookRepository(dbPool)
	settlementRepo := newPgxSettlementRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		Tx:         NewPgxTxManager(dbPool, publisher),
		Account:    accountRepo,
		Ledger:     ledgerRepo,
		DayBook:    dayBookRepo,
		Settlement: settlementRepo,
		Audit:      auditRepo,
	}
}
