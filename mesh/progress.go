package mesh

import "sync"

// ProgressMonitor lets a caller poll progress and request early
// cancellation of a long-running AddMany call. It is safe for
// one goroutine to call Cancel while another drives the mesh operation,
// mirroring the mutex-guarded shared state the teacher's candidate
// search used for its own worker goroutines.
type ProgressMonitor struct {
	mu         sync.Mutex
	cancelled  bool
	onProgress func(done, total int)
}

// NewProgressMonitor builds a monitor. onProgress may be nil.
func NewProgressMonitor(onProgress func(done, total int)) *ProgressMonitor {
	return &ProgressMonitor{onProgress: onProgress}
}

// Cancel requests that the in-flight operation stop at its next safe
// checkpoint.
func (pm *ProgressMonitor) Cancel() {
	pm.mu.Lock()
	pm.cancelled = true
	pm.mu.Unlock()
}

// Cancelled reports whether Cancel has been called.
func (pm *ProgressMonitor) Cancelled() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.cancelled
}

func (pm *ProgressMonitor) report(done, total int) {
	if pm.onProgress != nil {
		pm.onProgress(done, total)
	}
}
