package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/prasenjit/swagger-hub/internal/models"
)

// Collector collects fetch statistics per document
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	documents map[int]*documentCounter // document index -> counters
}

type documentCounter struct {
	location      string
	fetches       int64
	errors        int64
	stale         int64
	totalTime     time.Duration
	maxTime       time.Duration
	lastFetchedAt time.Time
	lastError     string
}

// NewCollector creates a new statistics collector
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		documents: make(map[int]*documentCounter),
	}
}

func (c *Collector) counter(index int, location string) *documentCounter {
	dc, ok := c.documents[index]
	if !ok {
		dc = &documentCounter{}
		c.documents[index] = dc
	}
	dc.location = location
	return dc
}

// RecordFetch records one fetch attempt of a document; err is nil on success
func (c *Collector) RecordFetch(index int, location string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dc := c.counter(index, location)
	dc.fetches++
	dc.totalTime += duration
	if duration > dc.maxTime {
		dc.maxTime = duration
	}

	if err != nil {
		dc.errors++
		dc.lastError = err.Error()
		return
	}
	dc.lastFetchedAt = time.Now()
	dc.lastError = ""
}

// RecordStale records that a stored snapshot was served in place of a failed fetch
func (c *Collector) RecordStale(index int, location string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter(index, location).stale++
}

// GetDocumentStats returns statistics for one document, or nil if it was never fetched
func (c *Collector) GetDocumentStats(index int) *models.DocumentStat {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dc, ok := c.documents[index]
	if !ok {
		return nil
	}
	stat := dc.toStat(index)
	return &stat
}

// GetHubStats returns statistics for every document ordered by index
func (c *Collector) GetHubStats() *models.HubStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := &models.HubStats{
		StartTime: c.startTime,
		Uptime:    formatDuration(time.Since(c.startTime)),
		Documents: make([]models.DocumentStat, 0, len(c.documents)),
	}

	for index, dc := range c.documents {
		stat := dc.toStat(index)
		result.Documents = append(result.Documents, stat)
		result.TotalFetches += stat.TotalFetches
		result.TotalErrors += stat.TotalErrors
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Index < result.Documents[j].Index
	})

	return result
}

// Reset resets all statistics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.documents = make(map[int]*documentCounter)
}

func (dc *documentCounter) toStat(index int) models.DocumentStat {
	stat := models.DocumentStat{
		Index:         index,
		Location:      dc.location,
		TotalFetches:  dc.fetches,
		TotalErrors:   dc.errors,
		StaleServed:   dc.stale,
		MaxFetchMs:    float64(dc.maxTime) / 1e6,
		LastFetchedAt: dc.lastFetchedAt,
		LastError:     dc.lastError,
	}
	if dc.fetches > 0 {
		stat.AvgFetchMs = float64(dc.totalTime) / float64(dc.fetches) / 1e6
	}
	return stat
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return d.Round(time.Minute).String()
	case d >= time.Minute:
		return d.Round(time.Second).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
