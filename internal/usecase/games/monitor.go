// Package games tracks long-running chat games and holds the restart that
// waits for them to finish.
package games

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"happyBot/internal/domain"
)

// Terminator matches restart.Terminator; declared here so the monitor does
// not depend on the coordinator.
type Terminator interface {
	Terminate(exitCode int)
}

type EventKind string

const (
	EventStarted  EventKind = "started"
	EventEnded    EventKind = "ended"
	EventDeferred EventKind = "restart_deferred"
	EventDrained  EventKind = "restart_drained"
)

type Event struct {
	Kind     EventKind
	Game     string
	Active   int
	ExitCode int
}

type Monitor struct {
	terminator Terminator
	onEvent    func(Event)

	mu          sync.Mutex
	sessions    map[string]int
	active      int
	pending     bool
	pendingCode int
	pendingReq  domain.RestartRequest
}

func NewMonitor(terminator Terminator) *Monitor {
	return &Monitor{
		terminator: terminator,
		sessions:   make(map[string]int),
	}
}

// OnEvent registers a callback for session and restart events. It must be
// called before the monitor is shared.
func (m *Monitor) OnEvent(fn func(Event)) {
	m.onEvent = fn
}

func (m *Monitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active > 0
}

func (m *Monitor) SetPendingRestart(pending bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = pending
}

func (m *Monitor) SetPendingExitCode(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingCode = code
	m.pendingReq.ExitCode = code
}

// DeferRestart stores req as the single pending restart, replacing any
// earlier one, and reports true. If the games finished in the meantime the
// restart runs now and it reports false.
func (m *Monitor) DeferRestart(req domain.RestartRequest) bool {
	m.mu.Lock()
	m.pending = true
	m.pendingCode = req.ExitCode
	m.pendingReq = req
	drained := m.active == 0
	if drained {
		m.clearPendingLocked()
	}
	active := m.active
	m.mu.Unlock()

	m.emit(Event{Kind: EventDeferred, Active: active, ExitCode: req.ExitCode})
	if drained {
		m.drain(req.ExitCode)
	}
	return !drained
}

// Pending returns the stored restart request, if any.
func (m *Monitor) Pending() (domain.RestartRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return domain.RestartRequest{}, false
	}
	req := m.pendingReq
	req.ExitCode = m.pendingCode
	return req, true
}

// Begin registers a running game. The returned release func ends it and is
// safe to call more than once.
func (m *Monitor) Begin(name string) (func(), error) {
	name = normalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("games: empty game name")
	}

	m.mu.Lock()
	m.sessions[name]++
	m.active++
	active := m.active
	m.mu.Unlock()

	log.Printf("games: %s started (%d active)", name, active)
	m.emit(Event{Kind: EventStarted, Game: name, Active: active})

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := m.End(name); err != nil {
				log.Printf("games: release %s: %v", name, err)
			}
		})
	}, nil
}

// End finishes one running session of the named game.
func (m *Monitor) End(name string) error {
	name = normalizeName(name)

	m.mu.Lock()
	if m.sessions[name] == 0 {
		m.mu.Unlock()
		return fmt.Errorf("games: %q is not running", name)
	}
	m.sessions[name]--
	if m.sessions[name] == 0 {
		delete(m.sessions, name)
	}
	m.active--
	active := m.active

	var exitCode int
	drained := active == 0 && m.pending
	if drained {
		exitCode = m.pendingCode
		m.clearPendingLocked()
	}
	m.mu.Unlock()

	log.Printf("games: %s ended (%d active)", name, active)
	m.emit(Event{Kind: EventEnded, Game: name, Active: active})
	if drained {
		m.drain(exitCode)
	}
	return nil
}

// Sessions returns the names of running games, sorted.
func (m *Monitor) Sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (m *Monitor) clearPendingLocked() {
	m.pending = false
	m.pendingCode = 0
	m.pendingReq = domain.RestartRequest{}
}

func (m *Monitor) drain(exitCode int) {
	log.Printf("games: all games closed, running pending restart exit_code=%d", exitCode)
	m.emit(Event{Kind: EventDrained, ExitCode: exitCode})
	if m.terminator != nil {
		m.terminator.Terminate(exitCode)
	}
}

func (m *Monitor) emit(ev Event) {
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
