package ops

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisitorCounter_CountsDistinctVisitors(t *testing.T) {
	counter := NewVisitorCounter(time.Minute, 100)

	counter.Touch("10.0.0.1")
	counter.Touch("10.0.0.1")
	counter.Touch("10.0.0.2")

	total, distinct := counter.Stats()
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, 2, distinct)
}

func TestVisitorCounter_TTLExpiresEntries(t *testing.T) {
	counter := NewVisitorCounter(10*time.Millisecond, 100)

	counter.Touch("10.0.0.1")
	time.Sleep(20 * time.Millisecond)

	total, distinct := counter.Stats()
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, 0, distinct)
}

func TestVisitorCounter_BoundHolds(t *testing.T) {
	counter := NewVisitorCounter(time.Hour, 5)

	for i := 0; i < 50; i++ {
		counter.Touch(fmt.Sprintf("10.0.0.%d", i))
	}

	_, distinct := counter.Stats()
	assert.LessOrEqual(t, distinct, 5)
}
