// Package session implements the session scheduler: the single leader
// that owns the intent graph, the FIFO event queue, the logical clock and
// the map of in-flight cancellation handles for one running agent. It is
// the only component that calls kernel.Process, and the only component
// that ever mutates the intent graph.
package session

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/agentkernel/agentkernel/agent/graph"
	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
)

// Transport is the impure boundary the scheduler dispatches intents
// through and receives events from. Implementations (redis, grpc, an
// in-process channel for tests) own however events actually arrive;
// the scheduler only ever sees EventEnvelope values already tagged with a
// source and the clock value the sender observed.
type Transport interface {
	// Dispatch hands one intent, tagged with the deterministic id the
	// scheduler assigned it, to whatever executes it (the capability
	// runtime, typically). Dispatch must not block on the intent's
	// completion; completion arrives later as an event passed to
	// Scheduler.Enqueue.
	Dispatch(ctx context.Context, id ids.IntentId, intent kernel.Intent) error
}

// completionSource extracts the IntentId a completion-shaped event refers
// to, if any. Events with no corresponding intent (UserMessage, Interrupt,
// Tick) return false.
func completionSource(event kernel.KernelEvent) (ids.IntentId, bool) {
	switch e := event.(type) {
	case kernel.ToolCompleted:
		return e.IntentId, true
	case kernel.LLMCompleted:
		return e.IntentId, true
	case kernel.ApprovalGiven:
		return e.IntentId, true
	case kernel.RuntimeError:
		return e.IntentId, true
	default:
		return ids.IntentId(0), false
	}
}

// queuedEnvelope pairs an EventEnvelope with its arrival order, used as the
// final tiebreaker in the scheduling order.
type queuedEnvelope struct {
	envelope kernel.EventEnvelope
	arrival  uint64
}

// Scheduler is the session's single leader. It is not safe for concurrent
// use from multiple goroutines except through Enqueue, which is safe to
// call from any goroutine feeding events in (e.g. a transport's receive
// loop); Step itself must only ever execute on one goroutine at a time.
type Scheduler struct {
	mu    sync.Mutex
	queue []queuedEnvelope
	nextArrival uint64

	clock *ids.LogicalClock
	graph *graph.IntentGraph
	state kernel.AgentState
	cfg   kernel.Config

	transport Transport

	step int

	// pendingApproval maps a tool-call subject key to the id of its
	// paired RequestApproval intent, so a later CallTool in the same
	// batch can be wired to depend on it.
	pendingApproval map[string]ids.IntentId

	// inflightTools tracks the ids of CallTool intents not yet completed,
	// failed or cancelled, consulted when a RequestLLM intent's dependencies are computed.
	inflightTools []ids.IntentId

	// cancel holds a cancellation handle per dispatched intent id, so a
	// Fail cascade can cancel in-flight work for cancelled descendants.
	cancel map[ids.IntentId]context.CancelFunc

	// sessionID identifies this run for persistence and telemetry; it has
	// no bearing on IntentId generation, which stays purely deterministic.
	sessionID string
}

// New returns a Scheduler ready to run a fresh session, identified by a
// freshly generated session id (see SessionID).
func New(initial kernel.AgentState, cfg kernel.Config, transport Transport) *Scheduler {
	return &Scheduler{
		queue:           nil,
		clock:           ids.NewLogicalClock(),
		graph:           graph.New(),
		state:           initial,
		cfg:             cfg,
		transport:       transport,
		pendingApproval: make(map[string]ids.IntentId),
		cancel:          make(map[ids.IntentId]context.CancelFunc),
		sessionID:       uuid.NewString(),
	}
}

// Enqueue admits one event envelope for future processing. Safe to call
// concurrently with itself and with Step; the queue is guarded by a mutex.
func (s *Scheduler) Enqueue(envelope kernel.EventEnvelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, queuedEnvelope{envelope: envelope, arrival: s.nextArrival})
	s.nextArrival++
}

// pop removes and returns the highest-priority envelope in the queue:
// ordered by logical clock ascending, then EventSource rank ascending,
// then arrival order ascending. Returns false if the queue is empty.
func (s *Scheduler) pop() (kernel.EventEnvelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return kernel.EventEnvelope{}, false
	}
	sort.SliceStable(s.queue, func(i, j int) bool {
		a, b := s.queue[i], s.queue[j]
		if a.envelope.LogicalClock != b.envelope.LogicalClock {
			return a.envelope.LogicalClock < b.envelope.LogicalClock
		}
		if a.envelope.Source.Rank() != b.envelope.Source.Rank() {
			return a.envelope.Source.Rank() < b.envelope.Source.Rank()
		}
		return a.arrival < b.arrival
	})
	head := s.queue[0]
	s.queue = s.queue[1:]
	return head.envelope, true
}

// Step pops and processes exactly one queued event, dispatching any newly
// ready intents through the transport. It returns false when the queue was
// empty. Step is the only method that may call kernel.Process or mutate
// the graph, and must only ever be called from one goroutine.
func (s *Scheduler) Step(ctx context.Context) (bool, error) {
	envelope, ok := s.pop()
	if !ok {
		return false, nil
	}

	s.clock.Update(envelope.LogicalClock)

	if id, isCompletion := completionSource(envelope.Event); isCompletion {
		s.applyCompletion(id, envelope.Event)
	}

	nextState, intents := kernel.Process(s.state, envelope.Event, s.cfg)
	s.state = nextState

	if err := s.admitIntents(intents); err != nil {
		return true, err
	}
	return true, s.dispatchReady(ctx)
}

// applyCompletion marks the graph node for id completed (or failed, for a
// denied approval / non-retryable tool error / runtime error), cascading
// cancellation to any dependents that can now never run. A completion for
// an id the graph has never held is ignored.
func (s *Scheduler) applyCompletion(id ids.IntentId, event kernel.KernelEvent) {
	if _, known := s.graph.Node(id); !known {
		return
	}
	failed := false
	switch e := event.(type) {
	case kernel.ToolCompleted:
		failed = e.Err != "" && !e.Retryable
	case kernel.ApprovalGiven:
		failed = e.Outcome == kernel.ApprovalDeniedOutcome
	case kernel.RuntimeError:
		failed = true
	}

	delete(s.cancel, id)
	s.removeInflightTool(id)

	if failed {
		for _, c := range s.graph.Fail(id) {
			if cancel, ok := s.cancel[c]; ok {
				cancel()
				delete(s.cancel, c)
			}
			s.removeInflightTool(c)
		}
		return
	}
	_ = s.graph.Complete(id) // idempotent: a duplicate completion is a no-op
}

func (s *Scheduler) removeInflightTool(id ids.IntentId) {
	out := s.inflightTools[:0]
	for _, t := range s.inflightTools {
		if t != id {
			out = append(out, t)
		}
	}
	s.inflightTools = out
}

// admitIntents assigns each new intent a deterministic id and inserts it
// into the graph, wiring RequestApproval/CallTool pairs emitted in the
// same batch together per kernel.Dependencies.
func (s *Scheduler) admitIntents(intents []kernel.Intent) error {
	var pendingApproval *ids.IntentId

	for i, intent := range intents {
		if intent.Kind() == kernel.IntentNone {
			continue
		}

		id := ids.FromStep(uint32(s.step), uint32(i))

		var deps []ids.IntentId
		switch v := intent.(type) {
		case kernel.RequestApproval:
			deps = kernel.Dependencies(intent, nil, s.inflightTools)
			approvalID := id
			pendingApproval = &approvalID
		case kernel.CallTool:
			deps = kernel.Dependencies(intent, pendingApproval, s.inflightTools)
			s.inflightTools = append(s.inflightTools, id)
			_ = v
		default:
			deps = kernel.Dependencies(intent, pendingApproval, s.inflightTools)
		}

		if err := s.graph.Insert(id, intent, deps); err != nil {
			return err
		}
	}
	s.step++
	return nil
}

// dispatchReady hands every currently-ready node to the transport and
// marks it Dispatched.
func (s *Scheduler) dispatchReady(ctx context.Context) error {
	for _, id := range s.graph.Ready() {
		node, ok := s.graph.Node(id)
		if !ok {
			continue
		}
		dispatchCtx, cancel := context.WithCancel(ctx)
		s.cancel[id] = cancel
		s.graph.MarkDispatched(id)
		if err := s.transport.Dispatch(dispatchCtx, id, node.Intent); err != nil {
			return err
		}
	}
	return nil
}

// State returns the scheduler's current AgentState snapshot, primarily
// for persistence and inspection; callers must not mutate it.
func (s *Scheduler) State() kernel.AgentState {
	return s.state
}

// SessionID returns the opaque identifier this scheduler was created
// with, suitable as a store.mongostore.Snapshot key.
func (s *Scheduler) SessionID() string {
	return s.sessionID
}
