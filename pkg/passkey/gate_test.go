package passkey

import (
	"testing"
	"time"

	"github.com/eventcal/eventcal/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestGate_Type(t *testing.T) {
	t.Run("should stay idle until the fourth digit", func(t *testing.T) {
		gate := NewGate("0000", utils.NewMockClock(now))

		state, err := gate.Type("00")
		require.NoError(t, err)
		assert.Equal(t, StateIdle, state)
		state, err = gate.Type("0")
		require.NoError(t, err)
		assert.Equal(t, StateIdle, state)
		assert.Equal(t, "000", gate.Input())
	})

	t.Run("should authenticate 800ms after a correct passkey", func(t *testing.T) {
		// given
		clock := utils.NewMockClock(now)
		gate := NewGate("0000", clock)

		// when
		state, err := gate.Type("0000")

		// then
		require.NoError(t, err)
		assert.Equal(t, StateSuccess, state)
		clock.Advance(799 * time.Millisecond)
		assert.Equal(t, StateSuccess, gate.State())
		clock.Advance(time.Millisecond)
		assert.Equal(t, StateAuthenticated, gate.State())
	})

	t.Run("should reset 1000ms after a wrong passkey", func(t *testing.T) {
		clock := utils.NewMockClock(now)
		gate := NewGate("0000", clock)

		state, err := gate.Type("1234")

		assert.ErrorIs(t, err, ErrInvalidPasskey)
		assert.Equal(t, StateError, state)
		assert.Equal(t, "1234", gate.Input())

		clock.Advance(999 * time.Millisecond)
		_, err = gate.Type("0")
		assert.ErrorIs(t, err, ErrCoolingDown)

		clock.Advance(time.Millisecond)
		assert.Equal(t, StateIdle, gate.State())
		assert.Equal(t, "", gate.Input())
		state, err = gate.Type("0000")
		require.NoError(t, err)
		assert.Equal(t, StateSuccess, state)
	})

	t.Run("should reject non-digits and overlong input", func(t *testing.T) {
		tests := []struct {
			name  string
			typed []string
		}{
			{name: "letters", typed: []string{"12a"}},
			{name: "too many at once", typed: []string{"12345"}},
			{name: "too many in total", typed: []string{"123", "45"}},
			{name: "sign", typed: []string{"-1"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				gate := NewGate("0000", utils.NewMockClock(now))
				var err error
				for _, digits := range tt.typed {
					_, err = gate.Type(digits)
				}
				assert.ErrorIs(t, err, ErrMalformedPasskey)
				assert.Equal(t, StateIdle, gate.State())
			})
		}
	})

	t.Run("should ignore input once accepted", func(t *testing.T) {
		gate := NewGate("0000", utils.NewMockClock(now))
		_, err := gate.Type("0000")
		require.NoError(t, err)

		state, err := gate.Type("1")

		require.NoError(t, err)
		assert.Equal(t, StateSuccess, state)
		assert.Equal(t, "0000", gate.Input())
	})
}
