package lock

import "testing"

func withMockedInterrupts(t *testing.T) {
	t.Helper()
	origEnable, origDisable := enableInterruptsFn, disableInterruptsFn
	interruptStateTracker = true
	enableInterruptsFn = func() { interruptStateTracker = true }
	disableInterruptsFn = func() { interruptStateTracker = false }
	t.Cleanup(func() {
		enableInterruptsFn, disableInterruptsFn = origEnable, origDisable
		interruptStateTracker = true
	})
}

func TestSpinLockUnlock(t *testing.T) {
	var l Spin
	l.Lock()
	if l.TryLock() {
		t.Fatal("expected TryLock to fail while held")
	}
	l.Unlock()
	if !l.TryLock() {
		t.Fatal("expected TryLock to succeed once released")
	}
	l.Unlock()
}

func TestIRQSaveRestoresInterruptState(t *testing.T) {
	withMockedInterrupts(t)

	var l IRQSave
	l.Lock()
	if interruptStateTracker {
		t.Fatal("expected interrupts disabled while lock held")
	}
	l.Unlock()
	if !interruptStateTracker {
		t.Fatal("expected interrupts restored after unlock")
	}
}

func TestIRQSaveNestedSharesOutermostRestore(t *testing.T) {
	withMockedInterrupts(t)

	var l IRQSave
	l.Lock()
	l.nestingDepth++ // simulate re-entry from the same owner
	l.inner.Unlock()
	l.inner.Lock()

	if interruptStateTracker {
		t.Fatal("expected interrupts still disabled mid-nest")
	}

	l.Unlock() // depth 2 -> 1, must not restore yet
	if interruptStateTracker {
		t.Fatal("expected interrupts still disabled after inner unlock")
	}

	l.Unlock() // depth 1 -> 0, restores
	if !interruptStateTracker {
		t.Fatal("expected interrupts restored after outermost unlock")
	}
}

func TestClassicIRQSaveUnlockWindow(t *testing.T) {
	withMockedInterrupts(t)

	var l ClassicIRQSave
	l.Lock()

	ran := false
	l.WithUnlockWindow(func() {
		ran = true
		if !interruptStateTracker {
			t.Fatal("expected interrupts restored inside unlock window")
		}
	})

	if !ran {
		t.Fatal("expected WithUnlockWindow to invoke fn")
	}
	if interruptStateTracker {
		t.Fatal("expected interrupts disabled again after WithUnlockWindow returns")
	}
	l.Unlock()
}

func TestLocalRestoresInterruptState(t *testing.T) {
	withMockedInterrupts(t)

	var l Local
	l.Lock()
	if interruptStateTracker {
		t.Fatal("expected interrupts disabled while held")
	}
	l.Unlock()
	if !interruptStateTracker {
		t.Fatal("expected interrupts restored after unlock")
	}
}

func TestLocalNoopWhenAlreadyDisabled(t *testing.T) {
	withMockedInterrupts(t)
	interruptStateTracker = false

	var l Local
	l.Lock()
	l.Unlock()
	if interruptStateTracker {
		t.Fatal("expected Local to leave interrupts disabled if they were already disabled on entry")
	}
}
