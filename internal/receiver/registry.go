// Package receiver tracks the message receivers running against a store.
//
// A host keeps one Registry per process and registers every receiver it
// starts, so that shutdown and account removal can stop them before the
// store is wiped or closed.
package receiver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Receiver is a running message pipeline.
type Receiver interface {
	// StopProcessing stops the receiver and waits for in-flight envelopes
	// to be saved, or until ctx is done.
	StopProcessing(ctx context.Context) error
}

// Registry maps ids (usually account or device names) to receivers.
type Registry struct {
	logger *slog.Logger

	mu        sync.Mutex
	receivers map[string]Receiver
}

// NewRegistry returns an empty registry. A nil logger disables logging.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		logger:    logger.With("component", "receiver"),
		receivers: map[string]Receiver{},
	}
}

// Register stores r under id. A receiver already registered under id is
// stopped first; its stop error is returned but r is registered regardless.
func (reg *Registry) Register(ctx context.Context, id string, r Receiver) error {
	reg.mu.Lock()
	prev, ok := reg.receivers[id]
	reg.receivers[id] = r
	reg.mu.Unlock()

	if !ok || prev == r {
		reg.logger.Debug("receiver registered", "id", id)
		return nil
	}
	reg.logger.Info("replacing receiver", "id", id)
	if err := prev.StopProcessing(ctx); err != nil {
		return fmt.Errorf("receiver: stop previous %s: %w", id, err)
	}
	return nil
}

// Get returns the receiver registered under id.
func (reg *Registry) Get(id string) (Receiver, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.receivers[id]
	return r, ok
}

// IDs returns the sorted ids of every registered receiver.
func (reg *Registry) IDs() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	ids := make([]string, 0, len(reg.receivers))
	for id := range reg.receivers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered receivers.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.receivers)
}

// Stop stops and removes the receiver registered under id. Unknown ids are a
// no-op. The receiver is removed even if stopping it fails.
func (reg *Registry) Stop(ctx context.Context, id string) error {
	reg.mu.Lock()
	r, ok := reg.receivers[id]
	delete(reg.receivers, id)
	reg.mu.Unlock()

	if !ok {
		return nil
	}
	if err := r.StopProcessing(ctx); err != nil {
		reg.logger.Warn("receiver stop failed", "id", id, "err", err)
		return fmt.Errorf("receiver: stop %s: %w", id, err)
	}
	reg.logger.Debug("receiver stopped", "id", id)
	return nil
}

// StopAll stops every receiver and empties the registry. Every receiver is
// asked to stop; failures are returned together.
func (reg *Registry) StopAll(ctx context.Context) error {
	reg.mu.Lock()
	receivers := reg.receivers
	reg.receivers = map[string]Receiver{}
	reg.mu.Unlock()

	ids := make([]string, 0, len(receivers))
	for id := range receivers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs *multierror.Error
	for _, id := range ids {
		if err := receivers[id].StopProcessing(ctx); err != nil {
			reg.logger.Warn("receiver stop failed", "id", id, "err", err)
			errs = multierror.Append(errs, fmt.Errorf("receiver: stop %s: %w", id, err))
		}
	}
	return errs.ErrorOrNil()
}
