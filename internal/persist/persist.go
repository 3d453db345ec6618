// Package persist defines the relational-store boundary the engine uses
// for hand-number recovery and fire-and-forget history/chip-transaction
// logging (spec.md §6), plus a bounded best-effort background queue
// grounded on the teacher's internal/server/hand_history package: a
// background goroutine (Manager.run) draining a request channel on a
// ticker, backed by a capacity-bounded buffer (Monitor.buffer, sized by
// FlushHands). This queue's per-item drop-oldest-when-full behavior goes
// beyond that shape (the teacher's monitor instead drops its whole buffer
// and disables itself after repeated flush failures); no pack dependency
// offers a bounded non-blocking queue, so the channel-plus-select pattern
// below is this package's own, built in the teacher's concurrency idiom.
package persist

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/holdemtable/server/internal/card"
)

// ChipTxKind is the kind of ledger entry PersistChipTx records.
type ChipTxKind string

const (
	ChipTxBuyIn   ChipTxKind = "buy_in"
	ChipTxCashOut ChipTxKind = "cash_out"
	ChipTxRebuy   ChipTxKind = "rebuy"
	ChipTxPotWin  ChipTxKind = "pot_win"
)

// SeatSnapshot is one seat's participation in a completed hand, enough to
// reconstruct hand_players rows.
type SeatSnapshot struct {
	SeatNumber    int
	AgentID       string
	StartingStack int
	EndingStack   int
	HoleCards     [2]card.Card
	HoleCardsShown bool
}

// CompletedHand is a finished hand's durable record, enough to
// reconstruct the hands/hand_actions rows.
type CompletedHand struct {
	TableID        string
	HandNumber     int
	StartedAt      time.Time
	CompletedAt    time.Time
	CommunityCards []card.Card
	Pot            int
	WinnerAgentIDs []string
	Seats          []SeatSnapshot
}

// ChipTx is one entry in the chip_transactions ledger.
type ChipTx struct {
	TableID string
	AgentID string
	Kind    ChipTxKind
	Amount  int
	At      time.Time
}

// Store is the relational persistence boundary. The engine consumes it
// through GetMaxHandNumbers at startup (to keep hand numbering monotonic
// across restarts) and the two fire-and-forget writers thereafter.
type Store interface {
	GetMaxHandNumbers(ctx context.Context) (map[string]int, error)
	PersistCompletedHand(ctx context.Context, hand CompletedHand) error
	PersistChipTx(ctx context.Context, tx ChipTx) error
}

// InMemoryStore is a Store backed by plain slices/maps, for tests and for
// running the server without a real database attached.
type InMemoryStore struct {
	mu         chan struct{} // 1-buffered mutex; avoids importing sync for one field
	maxHand    map[string]int
	Hands      []CompletedHand
	ChipTxs    []ChipTx
}

// NewInMemoryStore returns an empty in-memory Store.
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{mu: make(chan struct{}, 1), maxHand: make(map[string]int)}
	s.mu <- struct{}{}
	return s
}

func (s *InMemoryStore) lock()   { <-s.mu }
func (s *InMemoryStore) unlock() { s.mu <- struct{}{} }

func (s *InMemoryStore) GetMaxHandNumbers(_ context.Context) (map[string]int, error) {
	s.lock()
	defer s.unlock()
	out := make(map[string]int, len(s.maxHand))
	for k, v := range s.maxHand {
		out[k] = v
	}
	return out, nil
}

func (s *InMemoryStore) PersistCompletedHand(_ context.Context, hand CompletedHand) error {
	s.lock()
	defer s.unlock()
	s.Hands = append(s.Hands, hand)
	if hand.HandNumber > s.maxHand[hand.TableID] {
		s.maxHand[hand.TableID] = hand.HandNumber
	}
	return nil
}

func (s *InMemoryStore) PersistChipTx(_ context.Context, tx ChipTx) error {
	s.lock()
	defer s.unlock()
	s.ChipTxs = append(s.ChipTxs, tx)
	return nil
}

// job is a closure over one deferred write, queued for the background
// worker.
type job func(ctx context.Context) error

// Queue wraps a Store with a bounded asynchronous write path so the tick
// loop's hand-completion path never blocks on database I/O (spec.md §5:
// "the ticker never blocks on the network, database, or on-chain calls").
// A full queue drops the oldest pending job and logs it.
type Queue struct {
	store  Store
	logger *log.Logger
	jobs   chan job
	done   chan struct{}
}

// NewQueue starts a background worker draining jobs against store. cap
// bounds the number of pending writes kept in memory.
func NewQueue(store Store, logger *log.Logger, cap int) *Queue {
	if cap <= 0 {
		cap = 256
	}
	q := &Queue{
		store:  store,
		logger: logger.With("component", "persist.Queue"),
		jobs:   make(chan job, cap),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for j := range q.jobs {
		if err := j(context.Background()); err != nil {
			q.logger.Error("persist job failed", "err", err)
		}
	}
	close(q.done)
}

func (q *Queue) enqueue(j job) {
	select {
	case q.jobs <- j:
	default:
		// Queue is full: drop the oldest pending job to make room rather
		// than block the caller, and log the loss.
		select {
		case <-q.jobs:
			q.logger.Warn("persist queue full, dropped oldest pending write")
		default:
		}
		select {
		case q.jobs <- j:
		default:
			q.logger.Warn("persist queue still full after eviction, dropping write")
		}
	}
}

// PersistCompletedHand enqueues a fire-and-forget write; it never blocks
// the caller on the underlying store.
func (q *Queue) PersistCompletedHand(hand CompletedHand) {
	q.enqueue(func(ctx context.Context) error {
		return q.store.PersistCompletedHand(ctx, hand)
	})
}

// PersistChipTx enqueues a fire-and-forget write.
func (q *Queue) PersistChipTx(tx ChipTx) {
	q.enqueue(func(ctx context.Context) error {
		return q.store.PersistChipTx(ctx, tx)
	})
}

// Close stops accepting new jobs and waits for the worker to drain the
// remaining queue.
func (q *Queue) Close() {
	close(q.jobs)
	<-q.done
}
