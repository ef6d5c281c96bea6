package services

import "time"

// Clock abstracts "now" so date-guarded transitions (reopen is current-date
// only) stay testable.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// ServiceContainer bundles the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Account    AccountSvcFacade
	Posting    PostingSvcFacade
	DayBook    DayBookSvcFacade
	Settlement SettlementSvcFacade
	DayClose   DayCloseSvcFacade
}
