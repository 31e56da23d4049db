package stream

import (
	"context"

	"github.com/nao1215/privacypulse/internal/model"
)

// Observer receives parse progress. Calls happen on the parsing goroutine,
// in chunk order. OnFinal is called at most once, after every OnPartial,
// and is not called when the parse is cancelled.
type Observer interface {
	// OnPartial receives the summary as it stands after a chunk. Only the
	// summary text changes between calls.
	OnPartial(partial model.ScanSummary)

	// OnFinal receives the final result.
	OnFinal(result Result)
}

// Snapshot is one publication of a parse: a partial summary, or the final
// result when Final is set.
type Snapshot struct {
	Summary model.ScanSummary
	Final   bool

	// Outcome, Warning and Err are set on the final snapshot only.
	Outcome model.Outcome
	Warning string
	Err     error
}

// ObserverFunc adapts a function to Observer. Partial and final
// publications are both delivered as snapshots.
type ObserverFunc func(Snapshot)

// OnPartial implements Observer.
func (f ObserverFunc) OnPartial(partial model.ScanSummary) {
	f(Snapshot{Summary: partial})
}

// OnFinal implements Observer.
func (f ObserverFunc) OnFinal(result Result) {
	f(result.Snapshot())
}

type nopObserver struct{}

func (nopObserver) OnPartial(model.ScanSummary) {}
func (nopObserver) OnFinal(Result)              {}

// chanObserver forwards publications to a channel until ctx is done.
type chanObserver struct {
	ctx context.Context
	ch  chan<- Snapshot
}

func (o chanObserver) send(s Snapshot) {
	select {
	case o.ch <- s:
	case <-o.ctx.Done():
	}
}

func (o chanObserver) OnPartial(partial model.ScanSummary) {
	o.send(Snapshot{Summary: partial})
}

func (o chanObserver) OnFinal(result Result) {
	o.send(result.Snapshot())
}
