package connectivity

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/sirupsen/logrus"
)

// Signal is a connectivity oracle whose state changes can be observed.
type Signal interface {
	domainAPI.IConnectivity
	OnTransition(fn func(online bool))
}

type hooks struct {
	mu  sync.Mutex
	fns []func(online bool)
}

func (h *hooks) add(fn func(online bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *hooks) fire(online bool) {
	h.mu.Lock()
	fns := append([]func(bool){}, h.fns...)
	h.mu.Unlock()
	for _, fn := range fns {
		fn(online)
	}
}

// Static is a manually switched signal, used by the CLI and in tests.
type Static struct {
	online atomic.Bool
	hooks  hooks
}

func NewStatic(online bool) *Static {
	s := &Static{}
	s.online.Store(online)
	return s
}

func (s *Static) IsOnline() bool {
	return s.online.Load()
}

func (s *Static) SetOnline(online bool) {
	if s.online.Swap(online) != online {
		logrus.Infof("[CONNECTIVITY] switched to online=%v", online)
		s.hooks.fire(online)
	}
}

func (s *Static) OnTransition(fn func(online bool)) {
	s.hooks.add(fn)
}

// Probe polls a backend health URL. Any HTTP answer below 500 counts as
// online: the backend is reachable even if it rejects the probe.
type Probe struct {
	url      string
	interval time.Duration
	timeout  time.Duration
	client   *http.Client

	online atomic.Bool
	hooks  hooks
	wg     sync.WaitGroup
}

type ProbeConfig struct {
	BaseURL  string
	Path     string
	Interval time.Duration
	Timeout  time.Duration
	Client   *http.Client
}

func NewProbe(cfg ProbeConfig) *Probe {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	p := &Probe{
		url:      strings.TrimRight(cfg.BaseURL, "/") + cfg.Path,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		client:   cfg.Client,
	}
	// optimistic until the first check says otherwise
	p.online.Store(true)
	return p
}

func (p *Probe) IsOnline() bool {
	return p.online.Load()
}

func (p *Probe) OnTransition(fn func(online bool)) {
	p.hooks.add(fn)
}

// Check runs one probe and updates the state.
func (p *Probe) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	online := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err == nil {
		resp, err := p.client.Do(req)
		if err == nil {
			resp.Body.Close()
			online = resp.StatusCode < http.StatusInternalServerError
		} else {
			logrus.WithError(err).Debug("[CONNECTIVITY] probe failed")
		}
	}

	if p.online.Swap(online) != online {
		logrus.Infof("[CONNECTIVITY] backend reachable=%v", online)
		p.hooks.fire(online)
	}
	return online
}

// Start checks immediately and then on every interval until ctx is done.
func (p *Probe) Start(ctx context.Context) {
	p.Check(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Check(ctx)
			}
		}
	}()
}

// Wait blocks until the polling loop has exited.
func (p *Probe) Wait() {
	p.wg.Wait()
}
