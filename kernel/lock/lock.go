// Package lock implements the three spin-lock disciplines the memory core
// requires: a plain spin lock for structures never touched from interrupt
// context, an IRQ-save spin lock for structures an interrupt handler may
// touch, and the VMM's "classic" IRQ-save lock which additionally allows a
// documented unlock/lock window across a single owner (used by the pool
// donation retry path in mem/vmm).
//
// None of these locks allocate; all state lives in the struct itself, the
// same constraint kfmt/early and kernel.Error are built around.
package lock

import (
	"sync/atomic"

	"github.com/nyxkernel/memcore/kernel/cpu"
)

var (
	// enableInterruptsFn and disableInterruptsFn are mocked by tests and
	// automatically inlined by the compiler, mirroring kernel.cpuHaltFn.
	enableInterruptsFn = cpu.EnableInterrupts
	disableInterruptsFn = cpu.DisableInterrupts
	interruptsEnabledFn = func() bool { return interruptStateTracker }

	// interruptStateTracker is flipped by the mocked enable/disable
	// functions in tests that don't have a real architecture behind
	// cpu.EnableInterrupts/DisableInterrupts to query.
	interruptStateTracker = true
)

// Spin is a plain spin lock. It must never be acquired from, or while
// holding a lock that may be acquired from, interrupt context.
type Spin struct {
	held uint32
}

// Lock spins until the lock is acquired.
func (l *Spin) Lock() {
	for !atomic.CompareAndSwapUint32(&l.held, 0, 1) {
	}
}

// Unlock releases the lock. Unlock on an unheld lock is a caller error.
func (l *Spin) Unlock() {
	atomic.StoreUint32(&l.held, 0)
}

// TryLock attempts to acquire the lock without spinning.
func (l *Spin) TryLock() bool {
	return atomic.CompareAndSwapUint32(&l.held, 0, 1)
}

// IRQSave is a spin lock that additionally disables local interrupts while
// held, recording the prior interrupt-enabled state so Unlock can restore
// it. Any structure an interrupt handler may touch must be guarded by one
// of these instead of a plain Spin.
type IRQSave struct {
	inner Spin
	wasEnabled bool
	nestingDepth int32
}

// Lock disables local interrupts (if they are not already disabled, e.g.
// by an outer IRQ-save lock) and spins until the lock is acquired. The
// lock is not reentrant: acquiring it again while held spins forever.
func (l *IRQSave) Lock() {
	wasEnabled := interruptsEnabledFn()
	if wasEnabled {
		disableInterruptsFn()
		interruptStateTracker = false
	}
	l.inner.Lock()
	if atomic.AddInt32(&l.nestingDepth, 1) == 1 {
		l.wasEnabled = wasEnabled
	}
}

// Unlock releases the lock and, once the outermost acquisition unwinds,
// restores the interrupt state observed by the outermost Lock call. Nested
// IRQ-save locks share this single outermost restoration point, per
// ("Interrupt-safe locking").
func (l *IRQSave) Unlock() {
	restore := atomic.AddInt32(&l.nestingDepth, -1) == 0 && l.wasEnabled
	l.inner.Unlock()
	if restore {
		enableInterruptsFn()
		interruptStateTracker = true
	}
}

// TryLock attempts to acquire the lock without spinning, observing the same
// interrupt-disable/nesting semantics as Lock. Used by the VMM's
// cross-address-space operations to implement "acquire A, try B, release A
// and retry if B is unavailable" without ever blocking while holding A.
func (l *IRQSave) TryLock() bool {
	wasEnabled := interruptsEnabledFn()
	if wasEnabled {
		disableInterruptsFn()
		interruptStateTracker = false
	}
	if !l.inner.TryLock() {
		if wasEnabled {
			enableInterruptsFn()
			interruptStateTracker = true
		}
		return false
	}
	if atomic.AddInt32(&l.nestingDepth, 1) == 1 {
		l.wasEnabled = wasEnabled
	}
	return true
}

// ClassicIRQSave is the discipline the VMM uses: an IRQSave
// lock that may be released and reacquired mid-operation only across a
// window the calling protocol documents explicitly (e.g. releasing the
// lock to synchronously grow a metadata pool before retrying an
// allocation). Recursive acquisition by the same logical operation without
// going through WithUnlockWindow is forbidden.
type ClassicIRQSave struct {
	IRQSave
}

// WithUnlockWindow releases the lock, runs fn, and reacquires the lock
// before returning. The caller must already hold the lock. This is the only
// sanctioned way to drop a ClassicIRQSave lock mid-operation; it exists so
// that the pool-donation retry path (mem/vmm/donation.go) can synchronously
// grow a pool without holding the VMM lock across a blocking call.
func (l *ClassicIRQSave) WithUnlockWindow(fn func()) {
	l.Unlock()
	fn()
	l.Lock()
}

// Local is the third discipline: a structure touched only from one CPU's
// own context (a per-CPU slab or heap bucket) needs its local IRQs
// disabled across an operation but never needs to spin, since no other
// CPU contends for it. Using a full IRQSave here would pay for a CAS loop
// that can never lose.
type Local struct {
	wasEnabled bool
	held bool
}

// Lock disables local interrupts, recording whether they were enabled so
// Unlock can restore them. Calling Lock while already held is a caller
// error (no nesting support, unlike ClassicIRQSave).
func (l *Local) Lock() {
	wasEnabled := interruptsEnabledFn()
	if wasEnabled {
		disableInterruptsFn()
		interruptStateTracker = false
	}
	l.wasEnabled = wasEnabled
	l.held = true
}

// Unlock restores the interrupt state observed by Lock.
func (l *Local) Unlock() {
	l.held = false
	if l.wasEnabled {
		enableInterruptsFn()
		interruptStateTracker = true
	}
}
