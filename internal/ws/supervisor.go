package ws

import (
	"context"
	"time"

	"portal-chat/internal/logger"
)

// Supervisor keeps the push channel alive. A dropped or failed
// connection is treated as transient: the supervisor redials with
// exponential backoff until its context is cancelled.
type Supervisor struct {
	manager     *Manager
	token       string
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewSupervisor(manager *Manager, sessionToken string, baseBackoff, maxBackoff time.Duration) *Supervisor {
	return &Supervisor{
		manager:     manager,
		token:       sessionToken,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
	}
}

// Run blocks until ctx is cancelled, redialing whenever the channel
// ends. Intended to run in its own goroutine for the session lifetime.
func (s *Supervisor) Run(ctx context.Context) {
	backoff := s.baseBackoff

	for {
		if err := s.manager.Open(ctx, s.token); err != nil {
			logger.Warningf("Push channel dial failed, retrying in %v: %v", backoff, err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > s.maxBackoff {
				backoff = s.maxBackoff
			}
			continue
		}

		backoff = s.baseBackoff

		select {
		case <-ctx.Done():
			s.manager.Close()
			return
		case <-s.manager.Done():
			logger.Infof("Push channel ended, reconnecting")
		}
	}
}
