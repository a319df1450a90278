package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickTimeoutFor(t *testing.T) {
	// Default config: 25 sends paced 45s apart must fit in one tick.
	timeout := tickTimeoutFor(25, 45*time.Second)
	assert.Equal(t, 25*45*time.Second+tickTimeoutPad, timeout)
	assert.Greater(t, timeout, 18*time.Minute)

	// Small batches still get the floor.
	assert.Equal(t, minTickTimeout, tickTimeoutFor(3, time.Second))
	assert.Equal(t, minTickTimeout, tickTimeoutFor(10, 0))
}
