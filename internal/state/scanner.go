package state

import "time"

// StartBackgroundScan launches a single cooperative goroutine that calls
// scanFn every ScanInterval until StopBackgroundScan is called. Only one
// background scan may run at a time; a second call is a no-op until the
// first is stopped. scanFn must not block indefinitely and must not call
// a Manager method expecting the lock to already be held — it runs outside
// the lock and is free to call AddTransaction, MineBlock, etc. like any
// other caller.
func (m *Manager) StartBackgroundScan(scanFn func()) {
	m.mu.Lock()
	if m.scanStop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	m.scanStop = stop
	m.scanDone = done
	interval := m.cfg.ScanInterval
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				scanFn()
			}
		}
	}()
}

// StopBackgroundScan flips the scanner's stop flag and waits up to
// cfg.StopWait for the goroutine to exit. Safe to call when no scan is
// running.
func (m *Manager) StopBackgroundScan() {
	m.mu.Lock()
	stop := m.scanStop
	done := m.scanDone
	wait := m.cfg.StopWait
	m.scanStop = nil
	m.scanDone = nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)

	select {
	case <-done:
	case <-time.After(wait):
	}
}
