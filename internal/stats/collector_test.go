package stats

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	require.NotNil(t, c)
	require.NotNil(t, c.documents)

	stats := c.GetHubStats()
	assert.Empty(t, stats.Documents)
	assert.Zero(t, stats.TotalFetches)
}

func TestRecordFetch(t *testing.T) {
	c := NewCollector()

	c.RecordFetch(0, "https://orders/swagger.json", 100*time.Millisecond, nil)
	c.RecordFetch(0, "https://orders/swagger.json", 300*time.Millisecond, errors.New("connection refused"))

	stat := c.GetDocumentStats(0)
	require.NotNil(t, stat)
	assert.Equal(t, "https://orders/swagger.json", stat.Location)
	assert.Equal(t, int64(2), stat.TotalFetches)
	assert.Equal(t, int64(1), stat.TotalErrors)
	assert.InDelta(t, 200.0, stat.AvgFetchMs, 0.001)
	assert.InDelta(t, 300.0, stat.MaxFetchMs, 0.001)
	assert.Equal(t, "connection refused", stat.LastError)
	assert.False(t, stat.LastFetchedAt.IsZero())

	// A later success clears the last error
	c.RecordFetch(0, "https://orders/swagger.json", 10*time.Millisecond, nil)
	assert.Empty(t, c.GetDocumentStats(0).LastError)
}

func TestRecordStale(t *testing.T) {
	c := NewCollector()

	c.RecordFetch(1, "https://billing/", time.Millisecond, errors.New("timeout"))
	c.RecordStale(1, "https://billing/")

	stat := c.GetDocumentStats(1)
	require.NotNil(t, stat)
	assert.Equal(t, int64(1), stat.StaleServed)
}

func TestGetDocumentStats_Unknown(t *testing.T) {
	assert.Nil(t, NewCollector().GetDocumentStats(3))
}

func TestGetHubStats(t *testing.T) {
	c := NewCollector()

	c.RecordFetch(2, "https://c/", time.Millisecond, nil)
	c.RecordFetch(0, "https://a/", time.Millisecond, nil)
	c.RecordFetch(1, "https://b/", time.Millisecond, errors.New("boom"))

	stats := c.GetHubStats()
	require.Len(t, stats.Documents, 3)
	assert.Equal(t, 0, stats.Documents[0].Index)
	assert.Equal(t, 1, stats.Documents[1].Index)
	assert.Equal(t, 2, stats.Documents[2].Index)
	assert.Equal(t, int64(3), stats.TotalFetches)
	assert.Equal(t, int64(1), stats.TotalErrors)
	assert.NotEmpty(t, stats.Uptime)
}

func TestReset(t *testing.T) {
	c := NewCollector()
	c.RecordFetch(0, "https://a/", time.Millisecond, nil)

	c.Reset()

	assert.Empty(t, c.GetHubStats().Documents)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.RecordFetch(i%4, "https://svc/", time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(100), c.GetHubStats().TotalFetches)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m30s", formatDuration(150*time.Second))
	assert.Equal(t, "2h0m0s", formatDuration(2*time.Hour+10*time.Second))
}
