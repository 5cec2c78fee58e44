package restart

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// Terminator ends the process with the given exit code.
type Terminator interface {
	Terminate(exitCode int)
}

type TerminatorFunc func(exitCode int)

func (f TerminatorFunc) Terminate(exitCode int) {
	f(exitCode)
}

// ProcessTerminator detaches from the chat transports and exits. Only the
// first call has any effect.
type ProcessTerminator struct {
	Shutdown func(ctx context.Context) error
	Exit     func(code int)
	Timeout  time.Duration

	once sync.Once
}

func NewProcessTerminator(shutdown func(ctx context.Context) error) *ProcessTerminator {
	return &ProcessTerminator{
		Shutdown: shutdown,
		Exit:     os.Exit,
		Timeout:  10 * time.Second,
	}
}

func (p *ProcessTerminator) Terminate(exitCode int) {
	p.once.Do(func() {
		if p.Shutdown != nil {
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout())
			if err := p.Shutdown(ctx); err != nil {
				log.Printf("updater: shutdown error: %v", err)
			}
			cancel()
		}
		log.Printf("updater: updating builds exit_code=%d", exitCode)
		log.Println("updater: transports stopped, handing over to the supervisor")

		exit := p.Exit
		if exit == nil {
			exit = os.Exit
		}
		exit(exitCode)
	})
}

func (p *ProcessTerminator) timeout() time.Duration {
	if p.Timeout <= 0 {
		return 10 * time.Second
	}
	return p.Timeout
}
