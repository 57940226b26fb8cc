package vtcore

import "time"

// startSyncUpdateTimerLocked arms the force-close timer for a freshly
// opened synchronized update (DEC 2026 depth 0→1). Caller must hold t.mu.
func (t *Terminal) startSyncUpdateTimerLocked() {
	timeout := t.config.SynchronizedUpdateTimeoutMS
	if timeout <= 0 {
		return
	}
	t.syncUpdateTimer = time.AfterFunc(time.Duration(timeout)*time.Millisecond, t.forceCloseSyncUpdate)
}

// stopSyncUpdateTimerLocked disarms the force-close timer on a clean
// depth 1→0 transition. Caller must hold t.mu.
func (t *Terminal) stopSyncUpdateTimerLocked() {
	if t.syncUpdateTimer != nil {
		t.syncUpdateTimer.Stop()
		t.syncUpdateTimer = nil
	}
}

// forceCloseSyncUpdate runs on its own goroutine when a synchronized
// update's matching "end" sequence never arrives within
// Config.SynchronizedUpdateTimeoutMS, guarding against a stream that holds
// observer notification suppressed indefinitely.
func (t *Terminal) forceCloseSyncUpdate() {
	t.mu.Lock()
	if t.syncUpdateDepth == 0 {
		t.mu.Unlock()
		return
	}
	t.syncUpdateDepth = 0
	t.syncUpdateTimer = nil
	logger := t.logger
	events := t.events
	t.mu.Unlock()

	logger.Warn("synchronized update forced closed after timeout")
	publishEvent(events, EventSynchronizedUpdateEnd, nil)
}
