// Package tableman implements the process-wide game manager and tick
// loop: the registry of tables and agents, the periodic ProcessTable
// pass, and the public operations the HTTP layer calls (spec.md §4.6).
// It is the sole caller of internal/hand's state-machine entry points,
// supplying the wall-clock time from its quartz.Clock so internal/hand
// itself stays deterministic and dependency-free.
package tableman

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/holdemtable/server/internal/apperror"
	"github.com/holdemtable/server/internal/config"
	"github.com/holdemtable/server/internal/escrow"
	"github.com/holdemtable/server/internal/hand"
	"github.com/holdemtable/server/internal/persist"
	"github.com/holdemtable/server/internal/table"
)

// Timings bundles the cadence constants spec.md §4.6/§6 names. Tests
// shrink these to keep quartz.Mock-driven scenarios fast.
type Timings struct {
	TickPeriod          time.Duration
	BotThinkDelay       time.Duration
	BotOnlyThinkDelay   time.Duration
	ShowdownHoldHuman   time.Duration
	ShowdownHoldBotOnly time.Duration
	HumanTurnTimeout    time.Duration
	MaxRecurseDepth     int
}

// DefaultTimings returns the cadence spec.md §6 specifies.
func DefaultTimings() Timings {
	return Timings{
		TickPeriod:         500 * time.Millisecond,
		BotThinkDelay:       800 * time.Millisecond,
		BotOnlyThinkDelay:   10 * time.Millisecond,
		ShowdownHoldHuman:   3 * time.Second,
		ShowdownHoldBotOnly: 300 * time.Millisecond,
		HumanTurnTimeout:    30 * time.Second,
		MaxRecurseDepth:     50,
	}
}

// tableEntry pairs a table with the lock and bot RNG its tick processing
// needs. The lock is kept here rather than on table.Table so the table
// package stays free of concurrency concerns.
type tableEntry struct {
	mu    sync.Mutex
	table *table.Table
	rng   *mrand.Rand
}

// Manager is the process-wide registry of tables and the tick loop that
// drives them. It is logically single-threaded per table (spec.md §5):
// each table's lock is acquired once per tick by the ticker and once per
// request by the public operations below.
type Manager struct {
	logger  *log.Logger
	clock   quartz.Clock
	timings Timings
	store   *persist.Queue
	escrow  escrow.Boundary

	mu     sync.RWMutex
	tables map[string]*tableEntry

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Manager seeded with one table per cfg entry, each filled
// with two or three bots across contiguous seats, recovering hand
// numbering from store if it has prior history.
func New(ctx context.Context, cfgs []config.TableConfig, clock quartz.Clock, logger *log.Logger, store *persist.Queue, underlying persist.Store, esc escrow.Boundary, timings Timings) (*Manager, error) {
	m := &Manager{
		logger:  logger.With("component", "tableman.Manager"),
		clock:   clock,
		timings: timings,
		store:   store,
		escrow:  esc,
		tables:  make(map[string]*tableEntry, len(cfgs)),
	}

	maxHands := map[string]int{}
	if underlying != nil {
		recovered, err := underlying.GetMaxHandNumbers(ctx)
		if err != nil {
			m.logger.Warn("could not recover hand numbers, starting from zero", "err", err)
		} else {
			maxHands = recovered
		}
	}

	for _, cfg := range cfgs {
		tc := table.TableConfig{
			ID: cfg.Name, Name: cfg.Name,
			SmallBlind: cfg.SmallBlind, BigBlind: cfg.BigBlind,
			MinBuyIn: cfg.MinBuyIn, MaxBuyIn: cfg.MaxBuyIn, MaxSeats: cfg.MaxSeats,
		}
		t := table.NewTable(tc)
		t.HandCount = maxHands[cfg.Name]

		seed, err := randomSeed()
		if err != nil {
			return nil, fmt.Errorf("tableman: %w: %v", apperror.ErrInvariant, err)
		}
		entry := &tableEntry{table: t, rng: mrand.New(mrand.NewSource(seed))}
		seedBots(t)
		m.tables[cfg.Name] = entry
	}

	return m, nil
}

func randomSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// seedBots fills the first few contiguous seats with bots spread across
// strategies, per spec.md §4.6.
func seedBots(t *table.Table) {
	strategies := []table.AgentType{table.Fish, table.TAG, table.LAG}
	count := 2
	if t.Config.MaxSeats >= 6 {
		count = 3
	}
	for i := 0; i < count && i < len(t.Seats); i++ {
		strategy := strategies[i%len(strategies)]
		agent := &table.Agent{
			ID:          fmt.Sprintf("%s-bot-%d", t.Config.ID, i),
			DisplayName: fmt.Sprintf("%s-%s", strategy.String(), t.Config.ID),
			Type:        strategy,
		}
		buyIn := (t.Config.MinBuyIn + t.Config.MaxBuyIn) / 2
		_ = t.SeatAgent(i, agent, buyIn, false)
	}
}

// Start launches the background ticker; it runs until ctx is cancelled
// or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	ticker := m.clock.NewTicker(m.timings.TickPeriod)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Tick(ctx)
			}
		}
	}()
}

// Stop cancels the ticker and waits for the in-flight tick to finish.
// Tables remain in memory, ready for process restart recovery.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.store.Close()
}

// Tick runs one ProcessTable pass over every table in isolation: a
// failure or slow table never blocks the others (golang.org/x/sync/errgroup,
// one goroutine per table, errors logged rather than propagated since a
// single table's invariant violation must not cancel its siblings).
func (m *Manager) Tick(ctx context.Context) {
	m.mu.RLock()
	entries := make([]*tableEntry, 0, len(m.tables))
	for _, e := range m.tables {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	g, _ := errgroup.WithContext(ctx)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			entry.mu.Lock()
			defer entry.mu.Unlock()
			m.processTableLocked(entry, 0)
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Manager) entry(tableID string) (*tableEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("tableman: %w: unknown table %s", apperror.ErrUnavailable, tableID)
	}
	return e, nil
}

func allBots(t *table.Table) bool {
	for _, s := range t.Seats {
		if s.Occupied() && s.Agent != nil && !s.Agent.IsBot() {
			return false
		}
	}
	return true
}

func (m *Manager) thinkDelay(t *table.Table) time.Duration {
	if allBots(t) {
		return m.timings.BotOnlyThinkDelay
	}
	return m.timings.BotThinkDelay
}

func (m *Manager) showdownHold(t *table.Table) time.Duration {
	if allBots(t) {
		return m.timings.ShowdownHoldBotOnly
	}
	return m.timings.ShowdownHoldHuman
}

func (m *Manager) recordCompletedHand(t *table.Table, h *table.HandState) {
	snap := persist.CompletedHand{
		TableID:        t.Config.ID,
		HandNumber:     h.HandNumber,
		StartedAt:      h.StartedAt,
		CompletedAt:    h.CompletedAt,
		CommunityCards: h.CommunityCards,
		Pot:            h.Pot,
	}
	for _, w := range h.Winners {
		snap.WinnerAgentIDs = append(snap.WinnerAgentIDs, w.AgentID)
		m.store.PersistChipTx(persist.ChipTx{TableID: t.Config.ID, AgentID: w.AgentID, Kind: persist.ChipTxPotWin, Amount: w.Amount, At: h.CompletedAt})
	}
	m.store.PersistCompletedHand(snap)
}
