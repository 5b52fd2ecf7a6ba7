package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicCollector(t *testing.T) {
	var c BasicCollector
	c.RecordInsert(time.Microsecond, nil)
	c.RecordInsert(time.Microsecond, errors.New("x"))
	c.RecordQuery(10, 4, 2*time.Microsecond)
	c.RecordQuery(10, 6, 4*time.Microsecond)
	c.RecordDelete(time.Microsecond, true)
	c.RecordDelete(time.Microsecond, false)
	c.RecordRebuild(40, time.Millisecond)
	c.RecordPersist("save", 100, time.Millisecond, errors.New("disk full"))
	c.RecordTierMove("warm", "cold")

	s := c.GetStats()
	assert.Equal(t, int64(2), s.InsertCount)
	assert.Equal(t, int64(1), s.InsertErrors)
	assert.Equal(t, int64(2), s.QueryCount)
	assert.Equal(t, int64(3000), s.QueryAvgNanos)
	assert.Equal(t, int64(2), s.DeleteCount)
	assert.Equal(t, int64(1), s.DeleteMisses)
	assert.Equal(t, int64(1), s.RebuildCount)
	assert.Equal(t, int64(1), s.PersistErrors)
	assert.Equal(t, int64(1), s.TierMoves)
	assert.Equal(t, int64(10), c.QueryResults.Load())
}

func TestNoopCollector(t *testing.T) {
	var c Collector = NoopCollector{}
	assert.NotPanics(t, func() {
		c.RecordInsert(0, nil)
		c.RecordQuery(1, 1, 0)
		c.RecordDelete(0, true)
		c.RecordRebuild(0, 0)
		c.RecordPersist("load", 0, 0, nil)
		c.RecordTierMove("hot", "cold")
	})
}
