package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmitterInFlightCap(t *testing.T) {
	a := NewAdmitter(2, 0)

	assert.True(t, a.Admit())
	assert.True(t, a.Admit())
	assert.Equal(t, 2, a.InFlight())

	// Cap reached: further frames drop.
	assert.False(t, a.Admit())
	assert.False(t, a.Admit())
	assert.EqualValues(t, 2, a.Dropped())
	assert.Equal(t, 2, a.InFlight())

	a.Done()
	assert.True(t, a.Admit())
	assert.EqualValues(t, 3, a.Admitted())
}

func TestAdmitterMinInterval(t *testing.T) {
	a := NewAdmitter(10, 50*time.Millisecond)

	assert.True(t, a.Admit())
	a.Done()

	// Immediately after: refused by spacing, not by the cap.
	assert.False(t, a.Admit())
	assert.EqualValues(t, 1, a.Dropped())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, a.Admit())
}

func TestAdmitterDoneClampsAtZero(t *testing.T) {
	a := NewAdmitter(2, 0)
	a.Done()
	a.Done()
	assert.Equal(t, 0, a.InFlight())

	assert.True(t, a.Admit())
	assert.Equal(t, 1, a.InFlight())
}

// The in-flight count never exceeds the cap, even when admission and
// completion race from different goroutines.
func TestAdmitterConcurrentNeverExceedsCap(t *testing.T) {
	const maxInFlight = 2
	a := NewAdmitter(maxInFlight, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if a.Admit() {
					assert.LessOrEqual(t, a.InFlight(), maxInFlight)
					a.Done()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, a.InFlight())
}

func TestAdmitterAccountingBalances(t *testing.T) {
	a := NewAdmitter(2, 10*time.Millisecond)

	var sent, admitted int64
	for i := 0; i < 20; i++ {
		sent++
		if a.Admit() {
			admitted++
			a.Done()
		}
		time.Sleep(2 * time.Millisecond)
	}

	assert.Equal(t, admitted, a.Admitted())
	assert.Equal(t, sent-admitted, a.Dropped())
}
