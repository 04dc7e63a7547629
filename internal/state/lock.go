package state

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// reentrantMutex is a mutex a goroutine already holding it may lock again
// without blocking. Go's sync.Mutex has no such mode; MineBlock needs one
// because its listener fan-out runs synchronously under the lock and
// listeners may call back into read operations like ScanForAddress on the
// same goroutine.
//
// Ownership is tracked by goroutine id, read out of the runtime stack trace
// via goroutineID below. This only works because reentry happens within the
// same goroutine that acquired the lock; a different goroutine always
// blocks normally.
type reentrantMutex struct {
	mu    sync.Mutex
	meta  sync.Mutex
	owner int64
	count int
}

func (m *reentrantMutex) Lock() {
	gid := goroutineID()

	m.meta.Lock()
	if m.count > 0 && m.owner == gid {
		m.count++
		m.meta.Unlock()
		return
	}
	m.meta.Unlock()

	m.mu.Lock()

	m.meta.Lock()
	m.owner = gid
	m.count = 1
	m.meta.Unlock()
}

func (m *reentrantMutex) Unlock() {
	m.meta.Lock()
	defer m.meta.Unlock()

	m.count--
	if m.count == 0 {
		m.owner = 0
		m.mu.Unlock()
	}
}

// goroutineID extracts the calling goroutine's id from its stack trace
// header line ("goroutine 123 [running]: ..."). It is used only to detect
// same-goroutine reentry on reentrantMutex, never for scheduling decisions.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	trace := buf[:n]

	const prefix = "goroutine "
	trace = bytes.TrimPrefix(trace, []byte(prefix))

	idx := bytes.IndexByte(trace, ' ')
	if idx < 0 {
		return 0
	}
	id, err := strconv.ParseInt(string(trace[:idx]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
