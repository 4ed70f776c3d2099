// Package metrics keeps in-process counters for the payment pipeline. They are
// logged by the sweeper and reset only on restart.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Reconcile counts reconciliation outcomes.
type Reconcile struct {
	Paid           Counter
	Failed         Counter
	Pending        Counter
	AmountMismatch Counter
	LookupErrors   Counter
	Conflicts      Counter
}

type ReconcileSnapshot struct {
	Paid           uint64 `json:"paid"`
	Failed         uint64 `json:"failed"`
	Pending        uint64 `json:"pending"`
	AmountMismatch uint64 `json:"amount_mismatch"`
	LookupErrors   uint64 `json:"lookup_errors"`
	Conflicts      uint64 `json:"conflicts"`
}

func (r *Reconcile) Snapshot() ReconcileSnapshot {
	return ReconcileSnapshot{
		Paid:           r.Paid.Load(),
		Failed:         r.Failed.Load(),
		Pending:        r.Pending.Load(),
		AmountMismatch: r.AmountMismatch.Load(),
		LookupErrors:   r.LookupErrors.Load(),
		Conflicts:      r.Conflicts.Load(),
	}
}
