package passkey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/storage"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const sessionKeyPrefix = "calendar-authenticated:"

// Attempt is the outcome of typing digits into a client's gate. Token is set once
// the passkey was accepted and becomes valid at ReadyAt.
type Attempt struct {
	State   State
	Input   int
	Token   string
	ReadyAt time.Time
}

type Service interface {
	Attempt(ctx context.Context, clientKey string, digits string) (Attempt, error)
	IsAuthenticated(ctx context.Context, token string) (bool, error)
	Logout(ctx context.Context, token string) error
}

type ServiceImpl struct {
	code  string
	kv    storage.KeyValue
	clock utils.Clock

	mu    sync.Mutex
	gates map[string]*Gate
	// pending holds the gates of sessions still in their success transition.
	pending map[string]*Gate
}

func NewService(code string, kv storage.KeyValue, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		code:    code,
		kv:      kv,
		clock:   clock,
		gates:   make(map[string]*Gate),
		pending: make(map[string]*Gate),
	}
}

func (s *ServiceImpl) Attempt(ctx context.Context, clientKey string, digits string) (Attempt, error) {
	s.mu.Lock()
	s.prune()
	gate, ok := s.gates[clientKey]
	if !ok {
		gate = NewGate(s.code, s.clock)
		s.gates[clientKey] = gate
	}
	s.mu.Unlock()

	state, err := gate.Type(digits)
	if err != nil {
		if errors.Is(err, ErrInvalidPasskey) {
			log.Infof("invalid passkey from %s", clientKey)
		}
		return Attempt{State: state, Input: len(gate.Input())}, err
	}
	if state != StateSuccess {
		return Attempt{State: state, Input: len(gate.Input())}, nil
	}

	token := uuid.NewString()
	if err := s.kv.Save(ctx, sessionKey(token), []byte("true")); err != nil {
		return Attempt{}, fmt.Errorf("failed to store session: %w", err)
	}
	s.mu.Lock()
	delete(s.gates, clientKey)
	s.pending[token] = gate
	s.mu.Unlock()
	log.Debugf("passkey accepted for %s", clientKey)

	return Attempt{
		State:   state,
		Input:   Length,
		Token:   token,
		ReadyAt: s.clock.Now().Add(SuccessDelay),
	}, nil
}

// IsAuthenticated reports whether token belongs to a stored session whose success
// transition has completed.
func (s *ServiceImpl) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	s.mu.Lock()
	gate, isPending := s.pending[token]
	s.mu.Unlock()
	if isPending {
		if gate.State() != StateAuthenticated {
			return false, nil
		}
		s.mu.Lock()
		delete(s.pending, token)
		s.mu.Unlock()
	}

	value, err := s.kv.Load(ctx, sessionKey(token))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	return string(value) == "true", nil
}

func (s *ServiceImpl) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()
	if err := s.kv.Delete(ctx, sessionKey(token)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// prune drops gates that are back to idle with nothing typed and pending sessions whose
// success transition has completed, which the KV answers for from then on.
// Callers hold s.mu.
func (s *ServiceImpl) prune() {
	for key, gate := range s.gates {
		if gate.State() == StateIdle && gate.Input() == "" {
			delete(s.gates, key)
		}
	}
	for token, gate := range s.pending {
		if gate.State() == StateAuthenticated {
			delete(s.pending, token)
		}
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
