package testutil

import (
	"fmt"
	"sync"
)

// CleanupManager collects teardown steps for multi-container fixtures and
// runs them in LIFO order, so containers come down before the network that
// carries them.
type CleanupManager struct {
	mu       sync.Mutex
	cleanups []cleanupStep
}

type cleanupStep struct {
	name string
	fn   func() error
}

// NewCleanupManager creates an empty CleanupManager.
func NewCleanupManager() *CleanupManager {
	return &CleanupManager{}
}

// Add registers a named cleanup step. Steps run in reverse registration order.
func (cm *CleanupManager) Add(name string, fn func() error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cleanups = append(cm.cleanups, cleanupStep{name: name, fn: fn})
}

// Cleanup runs all registered steps in LIFO order. It keeps going when a step
// fails and returns every error collected. Registered steps are consumed;
// calling Cleanup again is a no-op. Steps run without the lock held so a step
// may call Add for a later Cleanup.
func (cm *CleanupManager) Cleanup() []error {
	cm.mu.Lock()
	steps := cm.cleanups
	cm.cleanups = nil
	cm.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s cleanup failed: %w", steps[i].name, err))
		}
	}
	return errs
}
