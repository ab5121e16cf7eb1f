package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	domainCache "github.com/AzielCF/az-laundry/domains/cache"
	"github.com/AzielCF/az-laundry/domains/health"
	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	"github.com/sirupsen/logrus"
)

type healthService struct {
	cache        domainCache.ICacheStore
	queue        domainQueue.IOfflineQueue
	connectivity domainAPI.IConnectivity
	tokens       domainAPI.ITokenProvider
	now          func() time.Time
}

func NewHealthService(cache domainCache.ICacheStore, queue domainQueue.IOfflineQueue, connectivity domainAPI.IConnectivity, tokens domainAPI.ITokenProvider) health.IHealthUsecase {
	return &healthService{
		cache:        cache,
		queue:        queue,
		connectivity: connectivity,
		tokens:       tokens,
		now:          time.Now,
	}
}

// Check never fails: storage problems turn the report to ERROR, being
// offline or having dead-lettered mutations turns it to DEGRADED.
func (s *healthService) Check(ctx context.Context) health.Report {
	report := health.Report{
		Status:      health.StatusOk,
		Online:      s.connectivity.IsOnline(),
		LastChecked: s.now().UTC(),
	}
	var problems []string

	if s.tokens != nil {
		_, report.Authenticated = s.tokens.Token(ctx)
	}

	if n, err := s.queue.Len(ctx); err != nil {
		problems = append(problems, fmt.Sprintf("queue: %v", err))
		report.Status = health.StatusError
	} else {
		report.Pending = n
	}
	if failed, err := s.queue.Failed(ctx); err != nil {
		problems = append(problems, fmt.Sprintf("dead-letter: %v", err))
		report.Status = health.StatusError
	} else {
		report.DeadLettered = len(failed)
	}
	if stats, err := s.cache.Stats(ctx); err != nil {
		problems = append(problems, fmt.Sprintf("cache: %v", err))
		report.Status = health.StatusError
	} else {
		report.Cache = stats
	}

	if report.Status == health.StatusOk {
		if !report.Online {
			problems = append(problems, "backend unreachable")
			report.Status = health.StatusDegraded
		}
		if report.DeadLettered > 0 {
			problems = append(problems, fmt.Sprintf("%d mutation(s) rejected during replay", report.DeadLettered))
			report.Status = health.StatusDegraded
		}
	}

	report.LastMessage = strings.Join(problems, "; ")
	if report.Status == health.StatusError {
		logrus.Warnf("[HEALTH] %s", report.LastMessage)
	}
	return report
}
