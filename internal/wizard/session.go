// ABOUTME: Wizard session: the one context object that owns store, instances, modal and bridge
// ABOUTME: Every mutator runs on the event loop; host I/O is split into jobs and apply steps

package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mauromedda/overlay-wizard/internal/engine"
	"github.com/mauromedda/overlay-wizard/internal/eventbus"
	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/lifecycle"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/render"
	"github.com/mauromedda/overlay-wizard/internal/scenes"
	"github.com/mauromedda/overlay-wizard/internal/settings"
)

// Step is a wizard page.
type Step int

const (
	StepType   Step = 1
	StepEdit   Step = 2
	StepReview Step = 3
)

func (s Step) String() string {
	switch s {
	case StepType:
		return "Choose type"
	case StepEdit:
		return "Customize"
	case StepReview:
		return "Review"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// DefaultSettleDelay is the wait before the review preview is re-rendered.
const DefaultSettleDelay = 150 * time.Millisecond

var (
	ErrInvalidStep = errors.New("invalid step")
	ErrNoType      = errors.New("no overlay type selected")
	ErrTypeLocked  = errors.New("overlay type can only change on the first step")
	ErrNotReview   = errors.New("only available on the review step")
	ErrNotReady    = errors.New("host is not ready")
	ErrNoSource    = errors.New("no existing source to save")
	ErrBadColor    = errors.New("color must be #RRGGBB")
)

// Options configures a Session. Zero fields take defaults.
type Options struct {
	Bridge      host.Bridge
	Scheduler   lifecycle.Scheduler
	Policy      lifecycle.RetryPolicy
	SettleDelay time.Duration
	// Asset is the engine asset for webcam surfaces.
	Asset *engine.Asset
	// Factory overrides how instances are created for a surface.
	Factory lifecycle.Factory
	Events  *eventbus.Bus[lifecycle.Event]
	// Seed replaces the initial webcam record (query-string seeding).
	Seed settings.Record
	// OnRefresh is called with the active record whenever a step 2 or 3 is
	// entered, so the front end can resync its inputs.
	OnRefresh func(settings.Type, settings.Record)
}

// Session is the wizard state machine.
type Session struct {
	store    *settings.Store
	manager  *lifecycle.Manager
	surfaces map[string]*render.Surface
	modal    *scenes.Modal
	bridge   host.Bridge
	sched    lifecycle.Scheduler
	settle   time.Duration
	asset    *engine.Asset
	onFresh  func(settings.Type, settings.Record)

	step      Step
	selected  settings.Type
	existing  string
	ready     bool
	uploading bool

	settleTimer lifecycle.Timer
	forced      int
}

// New returns a session on step 1.
func New(opts Options) *Session {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Asset == nil {
		opts.Asset = engine.DefaultAsset()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = lifecycle.NewLoopScheduler(func(fn func()) { fn() })
	}

	s := &Session{
		store:    settings.NewStore(),
		surfaces: make(map[string]*render.Surface),
		modal:    scenes.NewModal(),
		bridge:   opts.Bridge,
		sched:    opts.Scheduler,
		settle:   opts.SettleDelay,
		asset:    opts.Asset,
		onFresh:  opts.OnRefresh,
		step:     StepType,
	}
	if opts.Seed != nil {
		if err := s.store.Replace(settings.Webcam, opts.Seed); err != nil {
			log.Warn("seed settings: %v", err)
		}
	}

	factory := opts.Factory
	if factory == nil {
		factory = s.createInstance
	}
	s.manager = lifecycle.New(factory, s.VisibleSurfaces, lifecycle.Options{
		Policy:    opts.Policy,
		Scheduler: opts.Scheduler,
		Bus:       opts.Events,
	})
	return s
}

// SurfaceID names the preview surface of a type on a step.
func SurfaceID(t settings.Type, step Step) string {
	return fmt.Sprintf("%s-step%d", t, int(step))
}

func surfaceType(id string) settings.Type {
	name, _, _ := strings.Cut(id, "-step")
	return settings.Type(name)
}

func (s *Session) createInstance(id string) (lifecycle.Instance, error) {
	surf := s.surface(id)
	if surfaceType(id) == settings.Webcam {
		return render.LoadEngine(s.asset, surf)
	}
	return render.NewCanvasInstance(surf), nil
}

func (s *Session) surface(id string) *render.Surface {
	surf, ok := s.surfaces[id]
	if !ok {
		surf = render.NewSurface(id, render.GroupContainer)
		s.surfaces[id] = surf
	}
	return surf
}

// Surface returns the surface called id, or nil if it was never created.
func (s *Session) Surface(id string) *render.Surface { return s.surfaces[id] }

// VisibleSurfaces returns the surfaces that should be shown on the current
// step: none on step 1, the selected type's surface for the step otherwise.
func (s *Session) VisibleSurfaces() []string {
	if s.step == StepType || s.selected == "" {
		return nil
	}
	return []string{SurfaceID(s.selected, s.step)}
}

// Step returns the current step.
func (s *Session) Step() Step { return s.step }

// SelectedType returns the chosen type, or "" when none is chosen.
func (s *Session) SelectedType() settings.Type { return s.selected }

// ActiveType is the type whose record is being edited. Webcam until a type
// is chosen.
func (s *Session) ActiveType() settings.Type {
	if s.selected == "" {
		return settings.Webcam
	}
	return s.selected
}

// Record returns the active record with defaults filled in.
func (s *Session) Record() settings.Record { return s.store.Get(s.ActiveType()) }

// Store exposes the settings store.
func (s *Session) Store() *settings.Store { return s.store }

// Manager exposes the instance lifecycle manager.
func (s *Session) Manager() *lifecycle.Manager { return s.manager }

// Modal exposes the scene-selection modal.
func (s *Session) Modal() *scenes.Modal { return s.modal }

// Bridge returns the host bridge.
func (s *Session) Bridge() host.Bridge { return s.bridge }

// ExistingSource returns the id of the source being edited, if any.
func (s *Session) ExistingSource() string { return s.existing }

// SetReady records that the host API is usable.
func (s *Session) SetReady(ready bool) { s.ready = ready }

// Ready reports whether the host API is usable.
func (s *Session) Ready() bool { return s.ready }

// ForcedRenders counts settle-delay re-renders that have run.
func (s *Session) ForcedRenders() int { return s.forced }

// SelectType chooses the overlay type. Only allowed on step 1.
func (s *Session) SelectType(t settings.Type) error {
	if s.step != StepType {
		return ErrTypeLocked
	}
	if _, err := settings.ParseType(string(t)); err != nil {
		return err
	}
	s.selected = t
	return nil
}

// NextEnabled reports whether Next is actionable.
func (s *Session) NextEnabled() bool {
	switch s.step {
	case StepType:
		return s.selected != ""
	case StepEdit:
		return true
	default:
		return false
	}
}

// BackEnabled reports whether Back is actionable.
func (s *Session) BackEnabled() bool { return s.step > StepType }

// Next advances one step.
func (s *Session) Next() error {
	if !s.NextEnabled() {
		return fmt.Errorf("next from step %d: %w", s.step, ErrInvalidStep)
	}
	return s.GoToStep(s.step + 1)
}

// Back returns one step.
func (s *Session) Back() error {
	if !s.BackEnabled() {
		return fmt.Errorf("back from step %d: %w", s.step, ErrInvalidStep)
	}
	return s.GoToStep(s.step - 1)
}

// GoToStep moves to step n and reconciles render instances with what is
// now visible.
func (s *Session) GoToStep(n Step) error {
	if n < StepType || n > StepReview {
		return fmt.Errorf("step %d: %w", n, ErrInvalidStep)
	}
	if n > StepType && s.selected == "" {
		return ErrNoType
	}

	s.cancelSettle()
	s.step = n

	rec := s.Record()
	if n >= StepEdit && s.onFresh != nil {
		s.onFresh(s.ActiveType(), rec)
	}
	visible := s.VisibleSurfaces()
	kept := false
	for _, id := range visible {
		if _, ok := s.manager.Instance(id); ok {
			kept = true
		}
	}
	if err := s.manager.Reconcile(visible, rec); err != nil {
		log.Warn("step %d: %v", n, err)
	}
	// Instances that survived reconciliation still show the previous record.
	if kept {
		s.push()
	}
	if n == StepReview {
		s.settleTimer = s.sched.AfterFunc(s.settle, s.forceRender)
	}
	return nil
}

func (s *Session) cancelSettle() {
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
}

// forceRender re-pushes the record once the review layout has settled.
func (s *Session) forceRender() {
	s.settleTimer = nil
	if s.step != StepReview {
		return
	}
	s.forced++
	if err := s.manager.Push(s.Record()); err != nil {
		log.Warn("forced render: %v", err)
	}
}

// SaveVisible reports whether the save-existing action is offered.
func (s *Session) SaveVisible() bool { return s.existing != "" }

// CreateVisible reports whether the add-new action is offered.
func (s *Session) CreateVisible() bool { return s.ready }

// Instruction phrasings on the review step.
const (
	InstructBoth   = "Use the buttons below to save existing or add new source."
	InstructSave   = `Use the "Save Existing" button below to update your source.`
	InstructCreate = `Use the "Add New" button below to create your source.`
	InstructReady  = "Your source configuration is ready."
)

// Instructions returns the review-step guidance for the actions currently
// offered, or "" off the review step.
func (s *Session) Instructions() string {
	if s.step != StepReview {
		return ""
	}
	save, create := s.SaveVisible(), s.CreateVisible()
	switch {
	case save && create:
		return InstructBoth
	case save:
		return InstructSave
	case create:
		return InstructCreate
	default:
		return InstructReady
	}
}

// SetField updates one field of the active record and pushes it to the
// bound instances. Input errors are returned and leave the record as it
// was; render failures are recovered by the lifecycle manager.
func (s *Session) SetField(field string, value any) error {
	t := s.ActiveType()
	if err := s.store.Update(t, settings.Record{field: value}); err != nil {
		return err
	}
	s.push()
	return nil
}

// SetColorText applies the color text input: a missing '#' is added and
// only #RRGGBB is accepted.
func (s *Session) SetColorText(input string) error {
	hex, ok := settings.NormalizeHex(input)
	if !ok {
		return fmt.Errorf("%q: %w", input, ErrBadColor)
	}
	return s.SetField(settings.FieldColor, hex)
}

func (s *Session) push() {
	if err := s.manager.Push(s.Record()); err != nil {
		log.Warn("render push: %v", err)
	}
}

// SetAsset swaps the engine asset and rebuilds visible instances.
func (s *Session) SetAsset(a *engine.Asset) error {
	if a == nil {
		return errors.New("nil asset")
	}
	s.asset = a
	s.manager.DisposeAll()
	return s.manager.Reconcile(s.VisibleSurfaces(), s.Record())
}

// Shutdown cancels pending timers and disposes every instance.
func (s *Session) Shutdown() {
	s.cancelSettle()
	s.manager.CancelRecovery()
	s.manager.DisposeAll()
}
