package gateway

import (
	"context"
	"errors"
	"log"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

// Recorder is the optional session journal hook.
type Recorder interface {
	Record(event.Envelope) error
}

// Dispatcher is the single consumer of the envelope stream. All store
// mutation happens here, in channel-arrival order; everything else reads
// snapshots. Registration ops are interleaved on the same loop, which is
// what makes subscription lifecycle races impossible by construction.
type Dispatcher struct {
	envelopes <-chan event.Envelope
	store     *state.Store
	mgr       *Manager
	client    *Client  // nil when no request channel is attached
	recorder  Recorder // nil when journaling is off
}

func NewDispatcher(envelopes <-chan event.Envelope, store *state.Store, mgr *Manager, client *Client, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		envelopes: envelopes,
		store:     store,
		mgr:       mgr,
		client:    client,
		recorder:  recorder,
	}
}

// Run consumes until the context is cancelled or the envelope stream ends.
func (d *Dispatcher) Run(ctx context.Context) {
	defer d.mgr.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-d.mgr.Ops():
			op()
		case env, ok := <-d.envelopes:
			if !ok {
				return
			}
			d.apply(env)
		}
	}
}

func (d *Dispatcher) apply(env event.Envelope) {
	if env.Channel == event.ChanResponse {
		if d.client != nil {
			d.client.Settle(env.Payload)
		}
		return
	}

	ev, err := event.Normalize(env)
	if err != nil {
		if errors.Is(err, event.ErrUnknownChannel) {
			log.Printf("dropping event: %v", err)
		} else {
			log.Printf("dropping malformed event: %v", err)
		}
		return
	}

	if d.recorder != nil {
		if err := d.recorder.Record(env); err != nil {
			log.Printf("journal write failed: %v", err)
		}
	}

	d.store.Apply(ev)
	d.mgr.Dispatch(env.Channel, ev)
}
