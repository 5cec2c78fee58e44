package restart

import (
	"context"
	"log"
	"sync"
	"time"

	"happyBot/internal/domain"
)

type State int

const (
	StateIdle State = iota
	StateAnnouncing
	StateAwaitingDrainDecision
	StateTerminating
	StateDeferred
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnnouncing:
		return "announcing"
	case StateAwaitingDrainDecision:
		return "awaiting_drain_decision"
	case StateTerminating:
		return "terminating"
	case StateDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

const DefaultGracePeriod = time.Second

// ActivityMonitor is the part of the game subsystem the coordinator needs.
// DeferRestart returns false when the games had already ended and the
// monitor ran the restart itself.
type ActivityMonitor interface {
	IsActive() bool
	DeferRestart(req domain.RestartRequest) bool
}

type Announcer interface {
	Announce(ctx context.Context, source string) error
}

type Replier func(ctx context.Context, text string) error

type Outcome struct {
	State   State
	Request domain.RestartRequest
}

type Config struct {
	Monitor     ActivityMonitor
	Announcer   Announcer
	Terminator  Terminator
	GracePeriod time.Duration
	// Sleep waits for the grace period; it returns an error when interrupted.
	Sleep   func(ctx context.Context, d time.Duration) error
	OnState func(state State, req domain.RestartRequest)
}

type Coordinator struct {
	cfg Config

	mu    sync.Mutex
	state State
	wg    sync.WaitGroup
}

func NewCoordinator(cfg Config) *Coordinator {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &Coordinator{cfg: cfg}
}

// State returns the state of the most recent restart sequence.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start runs the restart sequence on its own goroutine. The returned channel
// receives the final outcome and is then closed.
func (c *Coordinator) Start(ctx context.Context, req domain.RestartRequest, reply Replier) <-chan Outcome {
	done := make(chan Outcome, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		done <- c.run(ctx, req, reply)
	}()
	return done
}

// Wait blocks until every started sequence and announcement has returned.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context, req domain.RestartRequest, reply Replier) Outcome {
	// Once started the sequence is not cancelled with the command context.
	taskCtx := context.WithoutCancel(ctx)

	c.setState(StateAnnouncing, req)
	c.send(taskCtx, reply, ackMessage(req.Source))
	if !req.Silent && c.cfg.Announcer != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.cfg.Announcer.Announce(taskCtx, req.Source); err != nil {
				log.Printf("updater: announcement failed: %v", err)
			}
		}()
	}

	c.send(taskCtx, reply, ":information_source: Restarting Bot...")
	if err := c.cfg.Sleep(ctx, c.cfg.GracePeriod); err != nil {
		log.Printf("updater: grace period interrupted: %v", err)
	}

	c.setState(StateAwaitingDrainDecision, req)
	if !req.Forced && c.cfg.Monitor != nil && c.cfg.Monitor.IsActive() {
		if !c.cfg.Monitor.DeferRestart(req) {
			c.setState(StateTerminating, req)
			log.Printf("updater: games ended before deferral, restarting exit_code=%d source=%s", req.ExitCode, req.Source)
			return Outcome{State: StateTerminating, Request: req}
		}
		c.send(taskCtx, reply, "There are currently games active, I have impended a new update and will restart when all games close!")
		c.setState(StateDeferred, req)
		log.Printf("updater: restart deferred exit_code=%d source=%s", req.ExitCode, req.Source)
		return Outcome{State: StateDeferred, Request: req}
	}

	c.setState(StateTerminating, req)
	log.Printf("updater: restarting exit_code=%d source=%s forced=%t", req.ExitCode, req.Source, req.Forced)
	if c.cfg.Terminator != nil {
		c.cfg.Terminator.Terminate(req.ExitCode)
	}
	return Outcome{State: StateTerminating, Request: req}
}

func (c *Coordinator) setState(state State, req domain.RestartRequest) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	if c.cfg.OnState != nil {
		c.cfg.OnState(state, req)
	}
}

func (c *Coordinator) send(ctx context.Context, reply Replier, text string) {
	if reply == nil {
		return
	}
	if err := reply(ctx, text); err != nil {
		log.Printf("updater: reply failed: %v", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
