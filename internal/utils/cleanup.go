package utils

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

// CleanupFunc represents a cleanup function
type CleanupFunc func() error

type namedCleanup struct {
	name string
	fn   CleanupFunc
}

// ResourceManager releases registered resources on shutdown, newest first.
type ResourceManager struct {
	cleanups []namedCleanup
	mu       sync.Mutex
	done     bool
}

// NewResourceManager creates a new resource manager
func NewResourceManager() *ResourceManager {
	return &ResourceManager{}
}

// AddCleanupFunc registers fn under name for Cleanup.
func (rm *ResourceManager) AddCleanupFunc(name string, fn CleanupFunc) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.cleanups = append(rm.cleanups, namedCleanup{name: name, fn: fn})
}

// Cleanup runs every registered func in reverse registration order and
// returns the names of those that failed. Later calls do nothing.
func (rm *ResourceManager) Cleanup() []string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.done {
		return nil
	}
	rm.done = true

	var failed []string
	for i := len(rm.cleanups) - 1; i >= 0; i-- {
		c := rm.cleanups[i]
		if err := c.fn(); err != nil {
			logger.Error("Cleanup error", logger.Fields{"resource": c.name, "error": err.Error()})
			failed = append(failed, c.name)
			continue
		}
		logger.Debug("Released resource", logger.Fields{"resource": c.name})
	}
	return failed
}

// WaitForShutdown blocks until SIGINT, SIGTERM or ctx is done, then cleans up.
func (rm *ResourceManager) WaitForShutdown(ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		logger.Info("Shutdown signal received, cleaning up", logger.Fields{"signal": sig.String()})
	case <-ctx.Done():
		logger.Info("Context cancelled, cleaning up")
	}
	rm.Cleanup()
}
