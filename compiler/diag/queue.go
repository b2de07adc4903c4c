package diag

import (
	"nikand.dev/go/heap"
	"tlog.app/go/errors"
)

type (
	// Queue collects errors and reports them in source order.
	Queue struct {
		h   heap.Heap[queued]
		seq int
	}

	queued struct {
		err  error
		d    Diagnostic
		user bool
		seq  int
	}
)

func NewQueue() *Queue {
	return &Queue{
		h: heap.Heap[queued]{Less: queueLess},
	}
}

// Add queues err. A List is queued error by error.
func (q *Queue) Add(err error) {
	if err == nil {
		return
	}

	var l List
	if errors.As(err, &l) {
		for _, e := range l {
			q.Add(e)
		}

		return
	}

	d, ok := AsDiagnostic(err)

	q.h.Push(queued{err: err, d: d, user: ok, seq: q.seq})
	q.seq++
}

func (q *Queue) Len() int { return q.h.Len() }

// Flush reports everything queued, defects last, and returns how many
// user-facing diagnostics were written.
func (q *Queue) Flush(r *Reporter) (user int) {
	for q.h.Len() != 0 {
		x := q.h.Pop()

		if r.Report(x.err) {
			user++
		}
	}

	return user
}

func queueLess(d []queued, i, j int) bool {
	a, b := d[i], d[j]

	if a.user != b.user {
		return a.user
	}

	if a.d.Line != b.d.Line {
		return a.d.Line < b.d.Line
	}

	if a.d.Span.Start != b.d.Span.Start {
		return a.d.Span.Start < b.d.Span.Start
	}

	return a.seq < b.seq
}
