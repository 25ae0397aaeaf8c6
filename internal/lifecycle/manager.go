// ABOUTME: Instance lifecycle manager: one bound instance per visible surface
// ABOUTME: Push failures tear down every instance and schedule recreation per the retry policy

package lifecycle

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/mauromedda/overlay-wizard/internal/eventbus"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/settings"
)

// Options configures a Manager. Zero fields take defaults; without a
// Scheduler, recovery callbacks run on the runtime timer goroutine.
type Options struct {
	Policy    RetryPolicy
	Scheduler Scheduler
	Bus       *eventbus.Bus[Event]
}

// Manager tracks render instances per surface. It carries no locks: every
// method, and every scheduled callback, must run on the owner's event loop.
type Manager struct {
	factory Factory
	target  func() []string
	policy  RetryPolicy
	sched   Scheduler
	bus     *eventbus.Bus[Event]

	tracked map[string]Instance
	states  map[string]State
	last    settings.Record

	recovery   Timer
	attempt    int
	recovering bool
}

// New returns a manager that creates instances with factory. target reports
// the surfaces that should be visible when a scheduled recovery fires.
func New(factory Factory, target func() []string, opts Options) *Manager {
	if opts.Policy == (RetryPolicy{}) {
		opts.Policy = DefaultRetryPolicy()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewLoopScheduler(func(fn func()) { fn() })
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New[Event]()
	}
	if target == nil {
		target = func() []string { return nil }
	}
	return &Manager{
		factory: factory,
		target:  target,
		policy:  opts.Policy.normalized(),
		sched:   opts.Scheduler,
		bus:     opts.Bus,
		tracked: make(map[string]Instance),
		states:  make(map[string]State),
	}
}

// Events returns the bus lifecycle events are published on.
func (m *Manager) Events() *eventbus.Bus[Event] { return m.bus }

// Reconcile makes the tracked set equal visible: it disposes instances for
// hidden surfaces, creates instances for visible untracked surfaces and
// applies rec to the new ones. A pending recovery is cancelled first.
func (m *Manager) Reconcile(visible []string, rec settings.Record) error {
	m.CancelRecovery()
	return m.reconcile(visible, rec)
}

func (m *Manager) reconcile(visible []string, rec settings.Record) error {
	m.last = rec.Clone()

	for _, id := range m.Tracked() {
		if !slices.Contains(visible, id) {
			m.dispose(id)
		}
	}

	var loadErrs []error
	for _, id := range visible {
		if _, ok := m.tracked[id]; ok {
			continue
		}
		m.states[id] = Loading
		inst, err := m.factory(id)
		if err != nil {
			m.states[id] = Empty
			m.publish(Event{Kind: EventFailed, Surface: id, Err: err})
			loadErrs = append(loadErrs, fmt.Errorf("load %s: %w", id, err))
			continue
		}
		if err := apply(inst, rec); err != nil {
			m.tracked[id] = inst
			return m.fail(id, err)
		}
		m.tracked[id] = inst
		m.states[id] = Bound
		m.publish(Event{Kind: EventCreated, Surface: id})
	}

	if len(loadErrs) > 0 {
		m.scheduleRecovery()
		return errors.Join(loadErrs...)
	}
	return nil
}

// Push applies rec to every tracked instance in surface order after
// validating all of them. Any failure disposes every instance, empties the
// tracked set and schedules recreation.
func (m *Manager) Push(rec settings.Record) error {
	m.last = rec.Clone()

	ids := m.Tracked()
	for _, id := range ids {
		if v, ok := m.tracked[id].(Validator); ok {
			if err := v.Validate(); err != nil {
				return m.fail(id, err)
			}
		}
	}
	for _, id := range ids {
		if err := m.tracked[id].ApplyProperties(rec); err != nil {
			return m.fail(id, err)
		}
	}
	return nil
}

func apply(inst Instance, rec settings.Record) error {
	if v, ok := inst.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return inst.ApplyProperties(rec)
}

func (m *Manager) fail(id string, err error) error {
	m.states[id] = Error
	log.Error("render binding failed on %s: %v", id, err)
	m.publish(Event{Kind: EventFailed, Surface: id, Err: err})

	m.DisposeAll()
	m.scheduleRecovery()
	return fmt.Errorf("push to %s: %w", id, err)
}

// DisposeAll disposes every tracked instance. Dispose errors are logged and
// do not stop the loop.
func (m *Manager) DisposeAll() {
	for _, id := range m.Tracked() {
		m.dispose(id)
	}
}

func (m *Manager) dispose(id string) {
	inst := m.tracked[id]
	delete(m.tracked, id)
	m.states[id] = Empty
	if err := inst.Dispose(); err != nil {
		log.Warn("dispose %s: %v", id, err)
	}
	m.publish(Event{Kind: EventDisposed, Surface: id})
}

func (m *Manager) scheduleRecovery() {
	m.CancelRecovery()
	if !m.recovering {
		m.attempt = 0
	}
	if m.attempt >= m.policy.MaxAttempts {
		log.Warn("render recovery gave up after %d attempt(s)", m.attempt)
		return
	}
	delay := m.policy.DelayFor(m.attempt)
	m.recovery = m.sched.AfterFunc(delay, m.recover)
	m.publish(Event{Kind: EventRecoveryScheduled, Attempt: m.attempt + 1})
}

func (m *Manager) recover() {
	m.recovery = nil
	m.attempt++
	visible := m.target()
	m.publish(Event{Kind: EventRecovering, Attempt: m.attempt})

	m.recovering = true
	defer func() { m.recovering = false }()
	if err := m.reconcile(visible, m.last); err != nil {
		log.Warn("render recovery attempt %d: %v", m.attempt, err)
	}
}

// CancelRecovery stops a pending recovery. It reports whether one was pending.
func (m *Manager) CancelRecovery() bool {
	if m.recovery == nil {
		return false
	}
	stopped := m.recovery.Stop()
	m.recovery = nil
	return stopped
}

// RecoveryPending reports whether a recreation is scheduled.
func (m *Manager) RecoveryPending() bool { return m.recovery != nil }

// Tracked returns the tracked surface ids in order.
func (m *Manager) Tracked() []string {
	return slices.Sorted(maps.Keys(m.tracked))
}

// Len returns the number of tracked instances.
func (m *Manager) Len() int { return len(m.tracked) }

// Instance returns the instance bound to surface.
func (m *Manager) Instance(surface string) (Instance, bool) {
	inst, ok := m.tracked[surface]
	return inst, ok
}

// State returns the lifecycle state of surface.
func (m *Manager) State(surface string) State {
	return m.states[surface]
}

func (m *Manager) publish(e Event) {
	m.bus.Publish(e)
}
