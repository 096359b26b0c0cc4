package entry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/integration-list-exporter/internal/exporter"
)

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Trigger identifies what started an export.
type Trigger string

// Export triggers.
const (
	TriggerStartup Trigger = "startup"
	TriggerTimer   Trigger = "timer"
	TriggerCommand Trigger = "command"
)

// Generator produces one report. *exporter.Generator satisfies it.
type Generator interface {
	GenerateReport(ctx context.Context) exporter.Result
}

// GeneratorFactory builds the Generator for an entry.
type GeneratorFactory func(e Entry) (Generator, error)

// Run is the outcome of one export for one entry.
type Run struct {
	EntryID string
	Trigger Trigger
	Result  exporter.Result
}

// Observer is notified after every export. Observers must not block for long;
// they run on the exporting goroutine.
type Observer interface {
	ExportFinished(ctx context.Context, run Run)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, run Run)

// ExportFinished calls f.
func (f ObserverFunc) ExportFinished(ctx context.Context, run Run) { f(ctx, run) }

// handle is the per-instance state of a loaded entry.
type handle struct {
	entry  Entry
	gen    Generator
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager loads and unloads entries.
//
// Thread Safety: all methods are safe for concurrent use.
type Manager struct {
	factory  GeneratorFactory
	services *Services
	repo     Repository
	logger   Logger

	now   func() time.Time
	after func(d time.Duration) <-chan time.Time

	mu        sync.Mutex
	handles   map[string]*handle
	observers []Observer
}

// Option configures a Manager.
type Option func(*Manager)

// WithRepository persists entries created and removed through the Manager.
func WithRepository(repo Repository) Option {
	return func(m *Manager) { m.repo = repo }
}

// WithLogger sets the Manager's logger.
func WithLogger(l Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now and time.After. Used by tests.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(m *Manager) {
		m.now = now
		m.after = after
	}
}

// NewManager creates a Manager that registers commands in services.
func NewManager(factory GeneratorFactory, services *Services, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		services: services,
		logger:   noopLogger{},
		now:      time.Now,
		after:    time.After,
		handles:  make(map[string]*handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddObserver registers o for every subsequent export.
func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Setup loads e: it stores the entry's generator, registers the export
// command, runs an initial export and starts the daily timer.
//
// The timer outlives ctx; it stops on Unload or Close.
func (m *Manager) Setup(ctx context.Context, e Entry) error {
	hour, minute, err := ParseUpdateTime(e.UpdateTime)
	if err != nil {
		return err
	}

	gen, err := m.factory(e)
	if err != nil {
		return fmt.Errorf("building generator for %s: %w", e.ID, err)
	}

	timerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &handle{entry: e, gen: gen, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if _, ok := m.handles[e.ID]; ok {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, e.ID)
	}
	m.handles[e.ID] = h
	// Registered under mu so a concurrent Unload sees a consistent count.
	if !m.services.Has(Domain, ServiceExportIntegrations) {
		m.services.Register(Domain, ServiceExportIntegrations, m.handleExportIntegrations)
	}
	m.mu.Unlock()

	m.export(ctx, h, TriggerStartup)

	go m.runTimer(timerCtx, h, hour, minute)

	m.logger.Info("entry loaded", "entry_id", e.ID, "title", e.Title, "update_time", e.UpdateTime)
	return nil
}

// Unload stops e's timer and removes it from the store. The export command is
// removed when no entry remains loaded.
func (m *Manager) Unload(entryID string) error {
	m.mu.Lock()
	h, ok := m.handles[entryID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotLoaded, entryID)
	}
	delete(m.handles, entryID)
	m.mu.Unlock()

	h.cancel()
	<-h.done

	m.mu.Lock()
	if len(m.handles) == 0 {
		m.services.Remove(Domain, ServiceExportIntegrations)
	}
	m.mu.Unlock()

	m.logger.Info("entry unloaded", "entry_id", entryID)
	return nil
}

// Close unloads every entry.
func (m *Manager) Close() {
	for _, e := range m.Entries() {
		_ = m.Unload(e.ID)
	}
}

// Loaded reports whether entryID is loaded.
func (m *Manager) Loaded(entryID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.handles[entryID]
	return ok
}

// Entries returns the loaded entries ordered by creation time.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	entries := make([]Entry, 0, len(m.handles))
	for _, h := range m.handles {
		entries = append(entries, h.entry)
	}
	m.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// ExportAll exports a report for every loaded entry.
func (m *Manager) ExportAll(ctx context.Context, trigger Trigger) []Run {
	m.mu.Lock()
	handles := make([]*handle, 0, len(m.handles))
	for _, h := range m.handles {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	runs := make([]Run, 0, len(handles))
	for _, h := range handles {
		runs = append(runs, m.export(ctx, h, trigger))
	}
	return runs
}

func (m *Manager) handleExportIntegrations(ctx context.Context) error {
	runs := m.ExportAll(ctx, TriggerCommand)
	m.logger.Info("Manual integration export completed", "entries", len(runs))

	var errs []error
	for _, r := range runs {
		if r.Result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.EntryID, r.Result.Err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) export(ctx context.Context, h *handle, trigger Trigger) Run {
	run := Run{
		EntryID: h.entry.ID,
		Trigger: trigger,
		Result:  h.gen.GenerateReport(ctx),
	}

	m.mu.Lock()
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, o := range observers {
		o.ExportFinished(ctx, run)
	}
	return run
}

// runTimer exports at hour:minute local time every day until ctx ends.
func (m *Manager) runTimer(ctx context.Context, h *handle, hour, minute int) {
	defer close(h.done)
	for {
		now := m.now()
		next := NextRun(now, hour, minute)
		m.logger.Debug("next scheduled export", "entry_id", h.entry.ID, "at", next)

		select {
		case <-ctx.Done():
			return
		case <-m.after(next.Sub(now)):
		}
		m.export(ctx, h, TriggerTimer)
	}
}

// Add creates, persists and loads a new entry.
func (m *Manager) Add(ctx context.Context, title, updateTime string) (Entry, error) {
	if m.repo == nil {
		return Entry{}, ErrNoRepository
	}
	e, err := New(title, updateTime)
	if err != nil {
		return Entry{}, err
	}
	if err := m.repo.Create(ctx, &e); err != nil {
		return Entry{}, err
	}
	if err := m.Setup(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Remove unloads and deletes an entry.
func (m *Manager) Remove(ctx context.Context, entryID string) error {
	if m.repo == nil {
		return ErrNoRepository
	}
	if err := m.Unload(entryID); err != nil && !errors.Is(err, ErrNotLoaded) {
		return err
	}
	return m.repo.Delete(ctx, entryID)
}

// LoadAll sets up every persisted entry. Entries that fail to load are
// logged and skipped.
func (m *Manager) LoadAll(ctx context.Context) (int, error) {
	if m.repo == nil {
		return 0, ErrNoRepository
	}
	entries, err := m.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing entries: %w", err)
	}

	loaded := 0
	for _, e := range entries {
		if err := m.Setup(ctx, e); err != nil {
			m.logger.Error("failed to load entry", "entry_id", e.ID, "error", err)
			continue
		}
		loaded++
	}
	return loaded, nil
}
