package services

import (
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
)

// ContainerOptions carries the tunables the services need beyond their
// repositories.
type ContainerOptions struct {
	EntryNumberPrefix string
	Thresholds        VarianceThresholds
	Clock             portssvc.Clock
}

// NewContainer creates the service container with properly initialized
// dependencies. The posting engine is built first since the settlement and
// day-close engines compose it.
func NewContainer(repos *portsrepo.RepositoryProvider, opts ContainerOptions) *portssvc.ServiceContainer {
	clock := opts.Clock
	if clock == nil {
		clock = portssvc.RealClock{}
	}
	prefix := opts.EntryNumberPrefix
	if prefix == "" {
		prefix = "JV"
	}

	posting := NewPostingService(repos.Tx, repos.Ledger, repos.Account, prefix, clock)

	return &portssvc.ServiceContainer{
		Account:    NewAccountService(repos.Account, repos.Audit, clock),
		Posting:    posting,
		DayBook:    NewDayBookService(repos.Tx, repos.DayBook, repos.Audit, clock),
		Settlement: NewSettlementService(repos.Tx, repos.Settlement, repos.Account, repos.DayBook, repos.Audit, posting, opts.Thresholds, clock),
		DayClose:   NewDayCloseService(repos.Tx, repos.DayBook, repos.Account, repos.Ledger, repos.Settlement, repos.Audit, posting, clock),
	}
}
