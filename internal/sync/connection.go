// Package sync moves finished drafts from the local store to the
// remote report database, refining them through the AI backend on the
// way. It owns connectivity detection and the offline queue drainer.
package sync

import (
	"net/http"
	"sync"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
)

// ConnectivityChecker reports whether the remote side is reachable.
type ConnectivityChecker interface {
	IsOnline() bool
}

// ConnectionMonitor probes a health URL on an interval and tracks
// online/offline state. Transitions fire the OnChange callback.
type ConnectionMonitor struct {
	mu sync.RWMutex

	probeURL string
	interval time.Duration
	client   *http.Client

	online   bool
	lastseen time.Time
	onChange func(online bool)

	running bool
	stop    chan struct{}
}

// NewConnectionMonitor creates a monitor probing the given URL.
func NewConnectionMonitor(probeURL string, interval, timeout time.Duration) *ConnectionMonitor {
	return &ConnectionMonitor{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
		stop:     make(chan struct{}),
	}
}

// OnChange registers a callback invoked on every online/offline
// transition. Must be set before Start.
func (m *ConnectionMonitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Start probes once immediately, then on the configured interval.
func (m *ConnectionMonitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	m.probe()
	go m.loop()
}

// Stop halts the probe loop.
func (m *ConnectionMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stop)
}

// IsOnline returns the last observed connectivity state.
func (m *ConnectionMonitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// LastSeen returns when the probe last succeeded.
func (m *ConnectionMonitor) LastSeen() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastseen
}

func (m *ConnectionMonitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probe()
		case <-m.stop:
			return
		}
	}
}

func (m *ConnectionMonitor) probe() {
	online := m.check()

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	if online {
		m.lastseen = time.Now()
	}
	fn := m.onChange
	m.mu.Unlock()

	if changed {
		if online {
			logging.L().Infow("🌐 Connection restored", "probe", m.probeURL)
		} else {
			logging.L().Warnw("📴 Connection lost", "probe", m.probeURL)
		}
		if fn != nil {
			fn(online)
		}
	}
}

func (m *ConnectionMonitor) check() bool {
	resp, err := m.client.Get(m.probeURL)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

var _ ConnectivityChecker = (*ConnectionMonitor)(nil)
