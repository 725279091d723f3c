package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CircuitBreakerService keeps one named breaker per upstream feed so a
// flapping provider trips fast instead of burning the per-adapter timeout on
// every scoring run.
type CircuitBreakerService struct {
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
	threshold uint32
	logger    *logrus.Logger
}

// NewCircuitBreakerService creates the registry. threshold is the number of
// consecutive failures that opens a breaker.
func NewCircuitBreakerService(threshold int, logger *logrus.Logger) *CircuitBreakerService {
	if threshold <= 0 {
		threshold = 5
	}
	return &CircuitBreakerService{
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
		threshold: uint32(threshold),
		logger:    logger,
	}
}

// Execute runs fn through the breaker named service, creating it on first
// use.
func (s *CircuitBreakerService) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	return s.breakerFor(service).Execute(fn)
}

func (s *CircuitBreakerService) breakerFor(service string) *gobreaker.CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := s.breakers[service]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        service,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.WithFields(logrus.Fields{
				"component": "circuit-breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state change")
		},
	})
	s.breakers[service] = cb
	return cb
}

// State reports each known breaker's state for the health endpoint.
func (s *CircuitBreakerService) State() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.breakers))
	for name, cb := range s.breakers {
		out[name] = cb.State().String()
	}
	return out
}

// Healthy returns an error naming any open breaker.
func (s *CircuitBreakerService) Healthy() error {
	for name, state := range s.State() {
		if state == gobreaker.StateOpen.String() {
			return fmt.Errorf("circuit breaker %s is open", name)
		}
	}
	return nil
}
