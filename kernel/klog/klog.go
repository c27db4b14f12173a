// Package klog implements the pr_info!/pr_warn!/pr_err!/pr_debug! logging
// family: output serializes over a CPU-local early-console (or, once
// attached, a post-init graphical console) and must never call back into
// the memory core beyond the pre-allocated console buffer it writes to.
// It is built directly on kfmt/early.Printf rather than a structured
// logging library for the same reason kfmt/early itself avoids fmt:
// logging about the allocator cannot itself allocate.
package klog

import (
	"github.com/nyxkernel/memcore/kernel/kfmt/early"
	"github.com/nyxkernel/memcore/kernel/lock"
)

// Level controls which severities Debug reaches the console at.
type Level int

const (
	LevelErr Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	// writeLock serializes concurrent log writes across CPUs; it is an
	// IRQ-save lock because interrupt handlers (e.g. the page-fault
	// handler, out of this module's scope but a real caller in the full
	// kernel) may themselves log.
	writeLock lock.IRQSave

	// activeLevel gates Debug; Err/Warn/Info always print, matching the
	// original's unconditional pr_err!/pr_warn!/pr_info! and gated
	// pr_debug!.
	activeLevel = LevelInfo
)

// SetLevel controls whether Debug output reaches the console.
func SetLevel(l Level) {
	writeLock.Lock()
	activeLevel = l
	writeLock.Unlock()
}

// Err prints an error-level message. Always emitted.
func Err(format string, args...interface{}) { emit("[err] "+format, args...) }

// Warn prints a warning-level message. Always emitted.
func Warn(format string, args...interface{}) { emit("[warn] "+format, args...) }

// Info prints an informational message. Always emitted.
func Info(format string, args...interface{}) { emit("[info] "+format, args...) }

// Debug prints a debug message; suppressed unless the active level is
// LevelDebug.
func Debug(format string, args...interface{}) {
	writeLock.Lock()
	level := activeLevel
	writeLock.Unlock()
	if level < LevelDebug {
		return
	}
	emit("[debug] "+format, args...)
}

func emit(format string, args...interface{}) {
	writeLock.Lock()
	defer writeLock.Unlock()
	early.Printf(format, args...)
	early.Printf("\n")
}
