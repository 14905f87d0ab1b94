// Package island implements the island-model coordination protocol: a ring of
// worker processes that each evolve their own population and periodically
// exchange elites with their ring neighbors, plus the master that bootstraps
// the ring and collects the first winning report.
//
// Workers communicate exclusively through per-process mailboxes. There is no
// shared mutable state; each worker owns its population outright.
package island

import (
	"context"

	"github.com/wildfauve/travelling-salesman/genetics"
)

// Message is the sealed set of payloads exchanged between master and workers.
type Message interface {
	isMessage()
}

// NeighborSetup carries the full ordered worker handle list and the master
// handle. It is the first and only message a worker receives before evolving;
// the worker derives its ring neighbors from its own spawn index.
type NeighborSetup struct {
	Workers []*Handle
	Master  *Handle
}

// EliteBatch is the migration payload: the sender's current elite set.
type EliteBatch struct {
	From   int
	Elites []genetics.Individual
}

// TerminationReport tells the master an island reached the target distance.
type TerminationReport struct {
	Distance   float64
	Generation int
}

func (NeighborSetup) isMessage()     {}
func (EliteBatch) isMessage()        {}
func (TerminationReport) isMessage() {}

// Handle addresses one process's mailbox. The mailbox is a buffered channel;
// all sends and receives select against a context so the master's forceful
// termination unblocks anything still waiting on a rendezvous.
type Handle struct {
	id    int
	inbox chan Message
}

// NewHandle creates a mailbox with the given capacity.
func NewHandle(id, capacity int) *Handle {
	return &Handle{id: id, inbox: make(chan Message, capacity)}
}

// ID returns the handle's spawn index.
func (h *Handle) ID() int {
	return h.id
}

// Send delivers a message to the handle's mailbox, or fails when the context
// is cancelled first.
func (h *Handle) Send(ctx context.Context, msg Message) error {
	select {
	case h.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks for the next message, or fails when the context is
// cancelled first.
func (h *Handle) Receive(ctx context.Context) (Message, error) {
	select {
	case msg := <-h.inbox:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain discards every currently queued message and reports how many were
// dropped. The master uses it once after termination to clear late reports.
func (h *Handle) Drain() int {
	dropped := 0
	for {
		select {
		case <-h.inbox:
			dropped++
		default:
			return dropped
		}
	}
}
