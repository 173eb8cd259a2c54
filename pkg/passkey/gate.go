package passkey

import (
	"errors"
	"sync"
	"time"

	"github.com/eventcal/eventcal/internal/utils"
)

const (
	Length = 4

	// ErrorResetDelay is how long a wrong passkey blocks input before the gate resets.
	ErrorResetDelay = 1000 * time.Millisecond
	// SuccessDelay is the success feedback followed by the exit transition.
	SuccessDelay = 500*time.Millisecond + 300*time.Millisecond
)

var (
	ErrInvalidPasskey   = errors.New("invalid passkey")
	ErrCoolingDown      = errors.New("passkey gate is cooling down after a failed attempt")
	ErrMalformedPasskey = errors.New("passkey must be up to 4 digits")
)

type State string

const (
	StateIdle          State = "idle"
	StateSuccess       State = "success"
	StateError         State = "error"
	StateAuthenticated State = "authenticated"
)

// Gate is the passkey state machine of a single client. Timed transitions are
// applied lazily against the clock whenever the gate is read or written.
type Gate struct {
	code  string
	clock utils.Clock

	mu        sync.Mutex
	input     string
	state     State
	changedAt time.Time
}

func NewGate(code string, clock utils.Clock) *Gate {
	return &Gate{code: code, clock: clock, state: StateIdle, changedAt: clock.Now()}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advance()
	return g.state
}

// Input returns the digits typed so far.
func (g *Gate) Input() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advance()
	return g.input
}

// Type appends digits to the input. The passkey is checked as soon as the fourth
// digit arrives. Digits typed after that are ignored.
func (g *Gate) Type(digits string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advance()

	switch g.state {
	case StateError:
		return g.state, ErrCoolingDown
	case StateSuccess, StateAuthenticated:
		return g.state, nil
	}
	if !onlyDigits(digits) || len(g.input)+len(digits) > Length {
		return g.state, ErrMalformedPasskey
	}

	g.input += digits
	if len(g.input) < Length {
		return g.state, nil
	}
	if g.input == g.code {
		g.transition(StateSuccess)
		return g.state, nil
	}
	g.transition(StateError)
	return g.state, ErrInvalidPasskey
}

func (g *Gate) advance() {
	elapsed := g.clock.Now().Sub(g.changedAt)
	switch {
	case g.state == StateError && elapsed >= ErrorResetDelay:
		g.input = ""
		g.transition(StateIdle)
	case g.state == StateSuccess && elapsed >= SuccessDelay:
		g.transition(StateAuthenticated)
	}
}

func (g *Gate) transition(s State) {
	g.state = s
	g.changedAt = g.clock.Now()
}

func onlyDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
