package navigator

import (
	"sync"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/sirupsen/logrus"
)

// Navigator tracks where the operator currently is and relays redirects to
// whoever renders the client.
type Navigator struct {
	mu        sync.RWMutex
	current   string
	listeners []func(path string)
}

var _ domainAPI.INavigator = (*Navigator)(nil)

func New(initial string) *Navigator {
	if initial == "" {
		initial = "/"
	}
	return &Navigator{current: initial}
}

func (n *Navigator) CurrentPath() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

func (n *Navigator) SetCurrentPath(path string) {
	n.mu.Lock()
	n.current = path
	n.mu.Unlock()
}

func (n *Navigator) Redirect(path string) {
	n.mu.Lock()
	from := n.current
	n.current = path
	listeners := append([]func(string){}, n.listeners...)
	n.mu.Unlock()

	logrus.Infof("[NAVIGATOR] redirecting %s -> %s", from, path)
	for _, fn := range listeners {
		fn(path)
	}
}

func (n *Navigator) OnRedirect(fn func(path string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}
