package main

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// memoryMonitorInterval is the interval at which a [memoryObserver] samples.
const memoryMonitorInterval = 100 * time.Millisecond

// memoryObserver tracks the peak heap allocation while a command runs.
type memoryObserver struct {
	sync.RWMutex
	maxAlloc uint64
	stopOnce sync.Once
	stopChan chan struct{}
}

func newMemoryObserver(ctx context.Context) *memoryObserver {
	obs := &memoryObserver{
		stopChan: make(chan struct{}),
	}
	go obs.monitor(ctx)

	return obs
}

// MaxAlloc returns the highest heap allocation sampled so far.
func (o *memoryObserver) MaxAlloc() uint64 {
	o.RLock()
	defer o.RUnlock()

	return o.maxAlloc
}

// Stop ends sampling and logs the peak at debug level.
func (o *memoryObserver) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopChan)
		slog.Debug("Memory consumption peaked",
			"maxAlloc", humanize.IBytes(o.MaxAlloc()),
		)
	})
}

func (o *memoryObserver) sample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	o.Lock()
	if m.Alloc > o.maxAlloc {
		o.maxAlloc = m.Alloc
	}
	o.Unlock()
}

func (o *memoryObserver) monitor(ctx context.Context) {
	ticker := time.NewTicker(memoryMonitorInterval)
	defer ticker.Stop()

	o.sample()

	for {
		select {
		case <-o.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sample()
		}
	}
}
