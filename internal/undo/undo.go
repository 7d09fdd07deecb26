// Package undo implements the per-byte undo stack and transaction
// boundary stack that back the engine's rollback model (spec.md §4.6).
//
// The single-mutex-guards-everything shape is grounded on
// calvinalkan/agent-task's slotcache (other_examples), which likewise
// serializes a small set of operations behind one lock rather than
// attempting a lock-free structure — appropriate here too, since the
// journal is explicitly "the serialization point between the UI
// (user-initiated undo) and the ScriptEngine (write recording)."
package undo

import (
	"sync"

	"github.com/xyproto/euvcore/internal/bytesource"
)

// Entry is one recorded write: the offset, the bytes that were there
// before, and the bytes written in their place.
type Entry struct {
	Offset uint64
	Old    []byte
	New    []byte
}

// Journal holds the entry stack and the transaction-boundary stack
// under a single mutex — every operation (record, commit, undo_one,
// undo_transaction) is totally ordered.
type Journal struct {
	mu           sync.Mutex
	entries      []Entry
	transactions []int
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{}
}

// Record pushes an undo entry. Called once per byte written by the
// script engine or the UI, before the write is committed to the
// ByteSource.
func (j *Journal) Record(offset uint64, old, new []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, Entry{Offset: offset, Old: old, New: new})
}

// Commit pushes a transaction boundary of size n — the number of
// consecutive entries, most-recently-pushed first, that belong to one
// run. A boundary of zero is never pushed (spec.md §4.8: "if N > 0
// writes happened, commit a transaction boundary of N").
func (j *Journal) Commit(n int) {
	if n <= 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.transactions = append(j.transactions, n)
}

// UndoOne pops one entry and writes its old bytes back through src. A
// no-op when the entry stack is empty.
func (j *Journal) UndoOne(src bytesource.ByteSource) {
	j.mu.Lock()
	if len(j.entries) == 0 {
		j.mu.Unlock()
		return
	}
	e := j.entries[len(j.entries)-1]
	j.entries = j.entries[:len(j.entries)-1]
	j.mu.Unlock()

	restore(src, e)
}

// UndoTransaction pops the most recent transaction boundary, then pops
// and restores that many entries. A no-op when the transaction stack
// is empty.
func (j *Journal) UndoTransaction(src bytesource.ByteSource) {
	j.mu.Lock()
	if len(j.transactions) == 0 {
		j.mu.Unlock()
		return
	}
	n := j.transactions[len(j.transactions)-1]
	j.transactions = j.transactions[:len(j.transactions)-1]

	if n > len(j.entries) {
		n = len(j.entries)
	}
	batch := make([]Entry, n)
	copy(batch, j.entries[len(j.entries)-n:])
	j.entries = j.entries[:len(j.entries)-n]
	j.mu.Unlock()

	// Restore most-recently-written entry first, so overlapping
	// writes within the same transaction unwind in reverse order.
	for i := len(batch) - 1; i >= 0; i-- {
		restore(src, batch[i])
	}
}

// Depth reports the number of entries currently on the stack — used
// by the script engine to compute N for the end-of-run Commit call.
func (j *Journal) Depth() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func restore(src bytesource.ByteSource, e Entry) {
	for i, b := range e.Old {
		src.WriteU8(e.Offset+uint64(i), b)
	}
}
