package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	"github.com/sirupsen/logrus"
)

var ErrReplayInProgress = errors.New("replay already in progress")

// IMutationSender sends a captured mutation live.
type IMutationSender interface {
	Send(ctx context.Context, m domainQueue.QueuedMutation) (domainAPI.Result, error)
}

type ReplayReport struct {
	Replayed  int    `json:"replayed"`
	Failed    int    `json:"failed"`
	Remaining int    `json:"remaining"`
	StoppedBy string `json:"stopped_by,omitempty"`
}

type ReplayService struct {
	queue        domainQueue.IOfflineQueue
	sender       IMutationSender
	connectivity domainAPI.IConnectivity

	mu      sync.Mutex
	trigger chan struct{}
	wg      sync.WaitGroup
}

func NewReplayService(queue domainQueue.IOfflineQueue, sender IMutationSender, connectivity domainAPI.IConnectivity) *ReplayService {
	return &ReplayService{
		queue:        queue,
		sender:       sender,
		connectivity: connectivity,
		trigger:      make(chan struct{}, 1),
	}
}

// Drain replays the queue in FIFO order. Network failures and an expired
// session stop the drain so order is kept; other rejections are
// dead-lettered and the drain moves on.
func (r *ReplayService) Drain(ctx context.Context) (ReplayReport, error) {
	if !r.mu.TryLock() {
		return ReplayReport{}, ErrReplayInProgress
	}
	defer r.mu.Unlock()

	var report ReplayReport
	list, err := r.queue.List(ctx)
	if err != nil {
		return report, err
	}

	for i, m := range list {
		if ctx.Err() != nil {
			report.Remaining = len(list) - i
			report.StoppedBy = "cancelled"
			return report, ctx.Err()
		}
		if !r.connectivity.IsOnline() {
			report.Remaining = len(list) - i
			report.StoppedBy = "offline"
			break
		}

		_, err := r.sender.Send(ctx, m)
		if err == nil {
			if err := r.queue.Remove(ctx, m.ID); err != nil {
				return report, err
			}
			report.Replayed++
			continue
		}

		if pkgError.IsNetworkClass(err) || pkgError.IsAuth(err) {
			logrus.WithError(err).Warnf("[REPLAY] stopping at %s %s", m.Method, m.Endpoint)
			report.Remaining = len(list) - i
			report.StoppedBy = err.Error()
			break
		}

		if err := r.queue.MarkFailed(ctx, m.ID, err.Error()); err != nil {
			return report, err
		}
		report.Failed++
	}

	if report.Replayed > 0 || report.Failed > 0 {
		logrus.Infof("[REPLAY] replayed %d, dead-lettered %d, remaining %d", report.Replayed, report.Failed, report.Remaining)
	}
	return report, nil
}

// Trigger asks the auto-replay loop to drain now.
func (r *ReplayService) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// StartAutoReplay drains on every tick and on Trigger until ctx is done.
func (r *ReplayService) StartAutoReplay(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-r.trigger:
			}
			r.drainIfPending(ctx)
		}
	}()
}

// Stop waits for the auto-replay loop to exit. Cancel its context first.
func (r *ReplayService) Stop() {
	r.wg.Wait()
}

func (r *ReplayService) drainIfPending(ctx context.Context) {
	if !r.connectivity.IsOnline() {
		return
	}
	n, err := r.queue.Len(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[REPLAY] failed to read queue length")
		return
	}
	if n == 0 {
		return
	}
	if _, err := r.Drain(ctx); err != nil && !errors.Is(err, ErrReplayInProgress) && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Error("[REPLAY] drain failed")
	}
}
