// Package reconnect owns the retry policy the connection state machine
// deliberately does not: it watches for Reconnecting, redials with
// exponential backoff, re-issues the session join after a successful
// re-handshake, and commits Reconnecting→Failed when the policy is
// exhausted.
package reconnect

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/tbellingham/stagecraft/internal/connection"
)

// Config bounds the retry policy.
type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsedTime is the total budget before giving up and marking
	// the connection Failed. Zero retries forever.
	MaxElapsedTime time.Duration
}

// DefaultConfig matches the stock player settings.
func DefaultConfig() Config {
	return Config{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     15 * time.Second,
		MaxElapsedTime:  2 * time.Minute,
	}
}

var errAbandoned = errors.New("reconnect: connection no longer reconnecting")

// Supervisor drives reconnection for one client. It requires the
// Threaded profile: its state observer spawns the retry goroutine.
type Supervisor struct {
	client  *connection.Client
	cfg     Config
	logger  *zap.Logger
	rejoin  func(connection.Port) error
	forward connection.StateCallback
	running atomic.Bool
}

// NewSupervisor creates a Supervisor.
//
// rejoin re-establishes session identity after a re-handshake (the
// state machine never restores it automatically); nil skips rejoining.
// forward receives every state change after the supervisor has seen
// it, so applications keep their own observer despite the port's
// single-slot registration.
func NewSupervisor(client *connection.Client, cfg Config, rejoin func(connection.Port) error, forward connection.StateCallback, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{client: client, cfg: cfg, logger: logger, rejoin: rejoin, forward: forward}
}

// Attach registers the supervisor as the client's state observer,
// displacing any previous one (single-slot semantics).
func (s *Supervisor) Attach() {
	s.client.OnStateChange(s.observe)
}

func (s *Supervisor) observe(state connection.State) {
	// Runs inside the client's dispatch critical section: react by
	// handing work to a goroutine, never by dialing synchronously.
	if state == connection.Reconnecting && s.running.CompareAndSwap(false, true) {
		go s.retryLoop()
	}
	if s.forward != nil {
		s.forward(state)
	}
}

func (s *Supervisor) retryLoop() {
	defer s.running.Store(false)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.InitialInterval
	policy.MaxInterval = s.cfg.MaxInterval
	policy.MaxElapsedTime = s.cfg.MaxElapsedTime

	attempt := 0
	op := func() error {
		if s.client.State() != connection.Reconnecting {
			// Disconnected (or failed) out from under us; stop quietly.
			return backoff.Permanent(errAbandoned)
		}
		attempt++
		err := s.client.Connect(context.Background())
		if err != nil {
			s.logger.Debug("reconnect attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}

	if err := backoff.Retry(op, policy); err != nil {
		if errors.Is(err, errAbandoned) {
			return
		}
		s.client.Fail(fmt.Sprintf("reconnect attempts exhausted: %v", err))
		return
	}

	s.logger.Info("reconnected", zap.Int("attempts", attempt))
	if s.rejoin != nil {
		if err := s.rejoin(s.client); err != nil {
			s.logger.Warn("rejoining session after reconnect", zap.Error(err))
		}
	}
}
