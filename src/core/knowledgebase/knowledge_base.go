package knowledgebase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"ragchat/src/core/history"
	"ragchat/src/log"
)

// State is the readiness of a KnowledgeBase
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// KnowledgeBase owns the answer generator and the conversation histories.
// The generator is built once; requests arriving before it is ready are
// rejected with ErrNotReady.
type KnowledgeBase struct {
	history *history.Store

	state atomic.Int32
	done  chan struct{}

	mu        sync.RWMutex
	generator Generator
	initErr   error
}

func NewKnowledgeBase(store *history.Store) *KnowledgeBase {
	if store == nil {
		store = history.NewStore(history.DefaultMaxEntries)
	}
	return &KnowledgeBase{
		history: store,
		done:    make(chan struct{}),
	}
}

// Start runs init in the background and returns immediately.
func (kb *KnowledgeBase) Start(ctx context.Context, init Initializer) error {
	if !kb.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return ErrAlreadyStarted
	}
	go kb.run(ctx, init)
	return nil
}

// Initialize runs init and blocks until it finishes.
func (kb *KnowledgeBase) Initialize(ctx context.Context, init Initializer) error {
	if !kb.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return ErrAlreadyStarted
	}
	return kb.run(ctx, init)
}

func (kb *KnowledgeBase) run(ctx context.Context, init Initializer) error {
	defer close(kb.done)
	log.Info("Initializing knowledge base")

	gen, err := init(ctx)
	if err == nil && gen == nil {
		err = fmt.Errorf("initializer returned no generator")
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if err != nil {
		kb.initErr = err
		kb.state.Store(int32(StateFailed))
		log.Error(err, "Knowledge base initialization failed")
		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	kb.generator = gen
	kb.state.Store(int32(StateReady))
	stats := gen.Stats()
	log.Info("Knowledge base ready", "documents", stats.Documents, "chunks", stats.Chunks)
	return nil
}

// Wait blocks until initialization finishes or ctx is done.
func (kb *KnowledgeBase) Wait(ctx context.Context) error {
	select {
	case <-kb.done:
		return kb.readyErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current readiness state
func (kb *KnowledgeBase) State() State {
	return State(kb.state.Load())
}

// Ready returns the generator, or an error explaining why there is none.
func (kb *KnowledgeBase) Ready() (Generator, error) {
	if err := kb.readyErr(); err != nil {
		return nil, err
	}
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.generator, nil
}

func (kb *KnowledgeBase) readyErr() error {
	switch kb.State() {
	case StateReady:
		return nil
	case StateFailed:
		kb.mu.RLock()
		defer kb.mu.RUnlock()
		return fmt.Errorf("%w: %w", ErrInitFailed, kb.initErr)
	default:
		return ErrNotReady
	}
}

// History returns the session store
func (kb *KnowledgeBase) History() *history.Store {
	return kb.history
}
