package health

import (
	"context"
	"time"

	domainCache "github.com/AzielCF/az-laundry/domains/cache"
)

type Status string

const (
	StatusOk       Status = "OK"
	StatusDegraded Status = "DEGRADED"
	StatusError    Status = "ERROR"
)

// Report summarizes what the client can do right now.
type Report struct {
	Status        Status                 `json:"status"`
	Online        bool                   `json:"online"`
	Authenticated bool                   `json:"authenticated"`
	Pending       int                    `json:"pending"`
	DeadLettered  int                    `json:"dead_lettered"`
	Cache         domainCache.CacheStats `json:"cache"`
	LastMessage   string                 `json:"last_message,omitempty"`
	LastChecked   time.Time              `json:"last_checked"`
}

type IHealthUsecase interface {
	Check(ctx context.Context) Report
}
