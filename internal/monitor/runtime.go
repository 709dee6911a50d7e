// Package monitor samples process runtime statistics for health reporting.
package monitor

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// RuntimeMonitor keeps the latest runtime sample of the process
type RuntimeMonitor struct {
	mu                sync.RWMutex
	stats             RuntimeStats
	started           time.Time
	stopMonitoring    chan struct{}
	monitoringStarted bool
}

// RuntimeStats is one sample of process statistics
type RuntimeStats struct {
	AllocMB        float64   `json:"alloc_mb"`
	SysMB          float64   `json:"sys_mb"`
	NumGC          uint32    `json:"num_gc"`
	GoroutineCount int       `json:"goroutine_count"`
	Uptime         string    `json:"uptime"`
	LastUpdated    time.Time `json:"last_updated"`
}

// NewRuntimeMonitor creates a monitor; uptime is measured from this call
func NewRuntimeMonitor() *RuntimeMonitor {
	return &RuntimeMonitor{
		started:        time.Now(),
		stopMonitoring: make(chan struct{}),
	}
}

// Start samples every interval until Stop is called or ctx is done
func (m *RuntimeMonitor) Start(ctx context.Context, interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.monitoringStarted {
		return
	}

	m.monitoringStarted = true
	m.updateStats()

	go m.monitorLoop(ctx, interval, m.stopMonitoring)
}

// Stop ends sampling. It may be called more than once.
func (m *RuntimeMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.monitoringStarted {
		return
	}

	close(m.stopMonitoring)
	m.stopMonitoring = make(chan struct{})
	m.monitoringStarted = false
}

// GetStats returns the latest sample, taking one first if none exists
func (m *RuntimeMonitor) GetStats() RuntimeStats {
	m.mu.RLock()
	stats := m.stats
	m.mu.RUnlock()

	if !stats.LastUpdated.IsZero() {
		return stats
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stats.LastUpdated.IsZero() {
		m.updateStats()
	}

	return m.stats
}

func (m *RuntimeMonitor) monitorLoop(ctx context.Context, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.updateStats()
			m.mu.Unlock()
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// updateStats must be called with mu held
func (m *RuntimeMonitor) updateStats() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.stats = RuntimeStats{
		AllocMB:        float64(memStats.Alloc) / 1024 / 1024,
		SysMB:          float64(memStats.Sys) / 1024 / 1024,
		NumGC:          memStats.NumGC,
		GoroutineCount: runtime.NumGoroutine(),
		Uptime:         time.Since(m.started).Round(time.Second).String(),
		LastUpdated:    time.Now(),
	}
}
