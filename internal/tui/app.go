// ABOUTME: Root AppModel wiring the wizard session into the Bubble Tea event loop
// ABOUTME: Routes keys per step, runs host jobs as commands, and composites modal overlays

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mauromedda/overlay-wizard/internal/config"
	"github.com/mauromedda/overlay-wizard/internal/engine"
	"github.com/mauromedda/overlay-wizard/internal/eventbus"
	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/keybindings"
	"github.com/mauromedda/overlay-wizard/internal/lifecycle"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/scenes"
	"github.com/mauromedda/overlay-wizard/internal/settings"
	"github.com/mauromedda/overlay-wizard/internal/types"
	"github.com/mauromedda/overlay-wizard/internal/wizard"
)

// closeTimeout bounds the final navigate-to-editor call on exit.
const closeTimeout = 5 * time.Second

// Deps holds the external dependencies of the TUI.
type Deps struct {
	Bridge      host.Bridge
	Asset       *engine.Asset
	Policy      lifecycle.RetryPolicy
	SettleDelay time.Duration
	Seed        settings.Record
	ExportDir   string

	// Keys maps key presses to actions; nil uses the defaults.
	Keys *keybindings.Manager
	// Watcher, when set, reloads the engine asset on change.
	Watcher *config.Watcher
	// OnReady runs off the loop once Bridge.Init succeeds.
	OnReady func()
	// Scheduler overrides the loop scheduler; tests pass a manual clock.
	Scheduler lifecycle.Scheduler
}

// shared holds mutable state that must survive AppModel value copies.
// Bubble Tea's Update is single-threaded; other goroutines only reach the
// loop through Program.Send.
type shared struct {
	program   *tea.Program
	ctx       context.Context
	cancel    context.CancelFunc
	session   *wizard.Session
	lastEvent string
	refreshed bool
	unsubs    []func()
}

// send posts msg to the running program. Messages sent before the program
// exists are dropped.
func (sh *shared) send(msg tea.Msg) {
	if sh.program != nil {
		sh.program.Send(msg)
	}
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	sh   *shared
	deps Deps

	width, height int

	typeCursor  int
	fieldCursor int
	editing     bool
	input       string

	list     SceneListModel
	alert    *types.Alert
	status   string
	busy     string
	showHelp bool
	help     *markdownRenderer
	quitting bool
}

// NewAppModel creates an AppModel and its wizard session.
func NewAppModel(deps Deps) AppModel {
	ctx, cancel := context.WithCancel(context.Background())
	sh := &shared{ctx: ctx, cancel: cancel}

	sched := deps.Scheduler
	if sched == nil {
		sched = lifecycle.NewLoopScheduler(func(fn func()) {
			sh.send(loopCallbackMsg{fn: fn})
		})
	}

	events := eventbus.New[lifecycle.Event]()
	sh.unsubs = append(sh.unsubs, events.Subscribe(func(e lifecycle.Event) {
		sh.lastEvent = describeEvent(e)
	}))

	sh.session = wizard.New(wizard.Options{
		Bridge:      deps.Bridge,
		Scheduler:   sched,
		Policy:      deps.Policy,
		SettleDelay: deps.SettleDelay,
		Asset:       deps.Asset,
		Events:      events,
		Seed:        deps.Seed,
		OnRefresh: func(settings.Type, settings.Record) {
			sh.refreshed = true
		},
	})

	if deps.Bridge != nil {
		sh.unsubs = append(sh.unsubs, deps.Bridge.OnNavigation(func(nav host.Navigation) {
			sh.send(navigationMsg{nav: nav})
		}))
	}
	if deps.ExportDir == "" {
		deps.ExportDir = "."
	}
	if deps.Keys == nil {
		deps.Keys = keybindings.Default()
	}

	return AppModel{
		sh:   sh,
		deps: deps,
		list: NewSceneListModel(sh.session.Modal()),
		help: newMarkdownRenderer(helpMarkdown(deps.Keys)),
	}
}

// Session exposes the wizard session.
func (m AppModel) Session() *wizard.Session { return m.sh.session }

// Init starts the host handshake and the asset watcher.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initHost()}
	if m.deps.Watcher != nil {
		cmds = append(cmds, waitForAsset(m.deps.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m AppModel) initHost() tea.Cmd {
	b, ctx := m.deps.Bridge, m.sh.ctx
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		return hostReadyMsg{err: b.Init(ctx)}
	}
}

func waitForAsset(w *config.Watcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Events()
		if !ok {
			return watchStoppedMsg{}
		}
		return assetChangedMsg{path: path}
	}
}

// runJob runs a wizard job in a command and wraps its result.
func runJob[T any](ctx context.Context, job wizard.Job[T], wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return wrap(job(ctx))
	}
}

// Update routes messages to the session and sub-models.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	s := m.sh.session

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case loopCallbackMsg:
		msg.fn()

	case hostReadyMsg:
		if msg.err != nil {
			log.Error("host init: %v", msg.err)
			m.status = "Host unavailable: " + msg.err.Error()
			break
		}
		s.SetReady(true)
		if onReady := m.deps.OnReady; onReady != nil {
			cmd = func() tea.Msg {
				onReady()
				return nil
			}
		}

	case navigationMsg:
		m.busy = "Loading source..."
		cmd = runJob(m.sh.ctx, s.LoadNavigation(msg.nav), func(r wizard.NavigationResult) tea.Msg {
			return navigationLoadedMsg{res: r}
		})

	case navigationLoadedMsg:
		m.busy = ""
		m.fail(s.ApplyNavigation(msg.res))
		m.syncTypeCursor()

	case scenesLoadedMsg:
		if msg.err != nil {
			if alert := s.Modal().LoadFailed(msg.err); alert != nil {
				m.alert = alert
			}
			break
		}
		s.Modal().Populate(msg.listing)

	case publishDoneMsg:
		m.busy = ""
		if err := s.ApplyPublish(msg.err); err != nil {
			m.fail(err)
			break
		}
		m.status = "Source added to scene."

	case saveDoneMsg:
		m.busy = ""
		if err := s.ApplySave(msg.err); err != nil {
			m.fail(err)
			break
		}
		m.status = "Source saved."

	case uploadDoneMsg:
		m.busy = ""
		if err := s.CompleteUpload(msg.res); err != nil {
			m.fail(err)
			break
		}
		m.status = "Image uploaded."

	case closeDoneMsg:
		if msg.err != nil {
			log.Warn("returning to editor: %v", msg.err)
		}
		return m, tea.Quit

	case assetChangedMsg:
		m.reloadAsset(msg.path)
		cmd = waitForAsset(m.deps.Watcher)

	case watchStoppedMsg:
		log.Debug("asset watcher stopped")

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	}

	if m.sh.refreshed {
		m.sh.refreshed = false
		m.editing = false
		m.input = ""
		m.fieldCursor = min(m.fieldCursor, len(settings.Fields(s.ActiveType()))-1)
	}
	return m, cmd
}

// fail surfaces err: alerts become a dialog, anything else a status line.
func (m *AppModel) fail(err error) {
	if err == nil {
		return
	}
	var alert *types.Alert
	if errors.As(err, &alert) {
		m.alert = alert
		return
	}
	m.status = "Error: " + err.Error()
}

func (m *AppModel) syncTypeCursor() {
	for i, t := range settings.Types {
		if t == m.sh.session.SelectedType() {
			m.typeCursor = i
		}
	}
}

func (m *AppModel) reloadAsset(path string) {
	asset, err := engine.LoadFile(path)
	if err != nil {
		log.Warn("reloading asset: %v", err)
		m.status = "Asset reload failed: " + err.Error()
		return
	}
	if err := m.sh.session.SetAsset(asset); err != nil {
		log.Warn("applying asset: %v", err)
	}
	m.status = "Asset reloaded."
}

func (m AppModel) handleKey(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	s := m.sh.session
	action := m.deps.Keys.ActionForKey(msg)

	if action == config.ActionQuit {
		return m.quit()
	}
	if m.quitting {
		return m, nil
	}
	if m.alert != nil {
		if action == config.ActionAccept || action == config.ActionCancel {
			m.alert = nil
		}
		return m, nil
	}
	if m.showHelp {
		if action == config.ActionCancel || action == config.ActionHelp {
			m.showHelp = false
		}
		return m, nil
	}
	if s.Modal().IsOpen() {
		return m.handleModalKey(msg, action)
	}
	if m.editing {
		return m.handleInputKey(msg, action)
	}
	if action == config.ActionHelp {
		m.showHelp = true
		return m, nil
	}

	m.status = ""
	switch s.Step() {
	case wizard.StepType:
		return m.handleTypeKey(action)
	case wizard.StepEdit:
		return m.handleEditKey(action)
	default:
		return m.handleReviewKey(action)
	}
}

func (m AppModel) quit() (AppModel, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}
	m.quitting = true
	job := m.sh.session.CloseJob()
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		return closeDoneMsg{err: job(ctx)}
	}
}

func (m AppModel) handleTypeKey(action config.KeyAction) (AppModel, tea.Cmd) {
	s := m.sh.session
	switch action {
	case config.ActionUp:
		m.typeCursor = max(m.typeCursor-1, 0)
	case config.ActionDown:
		m.typeCursor = min(m.typeCursor+1, len(settings.Types)-1)
	case config.ActionAccept, config.ActionNext:
		if action == config.ActionAccept {
			m.fail(s.SelectType(settings.Types[m.typeCursor]))
		}
		if s.NextEnabled() {
			m.fieldCursor = 0
			m.fail(s.Next())
		}
	}
	return m, nil
}

// numericStep is the arrow-key increment per numeric field.
var numericStep = map[string]float64{
	settings.FieldRotation:     5,
	settings.FieldBorderRadius: 1,
	settings.FieldStrokeWidth:  1,
}

func (m AppModel) handleEditKey(action config.KeyAction) (AppModel, tea.Cmd) {
	s := m.sh.session
	fields := settings.Fields(s.ActiveType())
	field := fields[m.fieldCursor]

	switch action {
	case config.ActionUp:
		m.fieldCursor = max(m.fieldCursor-1, 0)
	case config.ActionDown:
		m.fieldCursor = min(m.fieldCursor+1, len(fields)-1)
	case config.ActionLeft:
		m.adjust(field, -1)
	case config.ActionRight:
		m.adjust(field, 1)
	case config.ActionAccept:
		if field == settings.FieldAspectRatio {
			m.adjust(field, 1)
			break
		}
		m.editing = true
		m.input = ""
		if field != settings.FieldCustomImageURL {
			m.input = settings.FormatValue(s.Record()[field])
		}
	case config.ActionNext:
		m.fail(s.Next())
	case config.ActionBack, config.ActionCancel:
		m.fail(s.Back())
	}
	return m, nil
}

// adjust nudges a numeric field or cycles the aspect ratio.
func (m *AppModel) adjust(field string, dir int) {
	s := m.sh.session
	rec := s.Record()
	if step, ok := numericStep[field]; ok {
		m.fail(s.SetField(field, rec.Number(field)+float64(dir)*step))
		return
	}
	if field != settings.FieldAspectRatio {
		return
	}
	n := len(settings.AspectRatios)
	i := 0
	for j, r := range settings.AspectRatios {
		if r == rec.String(field) {
			i = j
		}
	}
	m.fail(s.SetField(field, settings.AspectRatios[((i+dir)%n+n)%n]))
}

// handleInputKey edits the text buffer. Only accept and cancel are looked
// up; every other key is literal input.
func (m AppModel) handleInputKey(msg tea.KeyMsg, action config.KeyAction) (AppModel, tea.Cmd) {
	switch {
	case action == config.ActionCancel:
		m.editing = false
		m.input = ""
	case action == config.ActionAccept:
		return m.commitInput()
	case msg.Type == tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case msg.Type == tea.KeyRunes, msg.Type == tea.KeySpace:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m AppModel) commitInput() (AppModel, tea.Cmd) {
	s := m.sh.session
	field := settings.Fields(s.ActiveType())[m.fieldCursor]
	input := strings.TrimSpace(m.input)
	m.editing = false
	m.input = ""

	switch field {
	case settings.FieldColor:
		m.fail(s.SetColorText(input))
	case settings.FieldCustomImageURL:
		return m.startUpload(input)
	default:
		m.fail(s.SetField(field, input))
	}
	return m, nil
}

func (m AppModel) startUpload(path string) (AppModel, tea.Cmd) {
	s := m.sh.session
	if path == "" {
		return m, nil
	}
	f, err := wizard.FileFromPath(path)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	job, err := s.StartUpload(f)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	m.busy = "Uploading image..."
	return m, runJob(m.sh.ctx, job, func(r wizard.UploadResult) tea.Msg {
		return uploadDoneMsg{res: r}
	})
}

func (m AppModel) handleReviewKey(action config.KeyAction) (AppModel, tea.Cmd) {
	s := m.sh.session
	if action == config.ActionBack || action == config.ActionCancel {
		m.fail(s.Back())
		return m, nil
	}
	if m.busy != "" {
		return m, nil
	}

	switch action {
	case config.ActionSave:
		if !s.SaveVisible() {
			break
		}
		job, err := s.SaveJob()
		if err != nil {
			m.fail(err)
			break
		}
		m.busy = "Saving source..."
		return m, runJob(m.sh.ctx, job, func(err error) tea.Msg { return saveDoneMsg{err: err} })

	case config.ActionAddNew:
		if !s.CreateVisible() {
			break
		}
		if err := s.OpenSceneModal(); err != nil {
			m.fail(err)
			break
		}
		m.list = m.list.Reset()
		b, ctx := s.Bridge(), m.sh.ctx
		return m, func() tea.Msg {
			listing, err := scenes.Load(ctx, b)
			return scenesLoadedMsg{listing: listing, err: err}
		}

	case config.ActionExportMask:
		path, err := s.ExportMaskFile(m.deps.ExportDir)
		if err != nil {
			m.fail(err)
			break
		}
		m.status = "Mask written to " + path
	}
	return m, nil
}

// handleModalKey confirms or cancels the scene picker; other keys drive the
// list, where letters extend the filter.
func (m AppModel) handleModalKey(msg tea.KeyMsg, action config.KeyAction) (AppModel, tea.Cmd) {
	s := m.sh.session
	switch action {
	case config.ActionCancel:
		if m.busy == "" {
			s.Modal().Close()
		}
		return m, nil
	case config.ActionAccept:
		if m.busy != "" || !s.Modal().CanConfirm() {
			return m, nil
		}
		job, err := s.PublishJob()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.busy = "Adding source..."
		return m, runJob(m.sh.ctx, job, func(err error) tea.Msg { return publishDoneMsg{err: err} })
	}
	if m.busy != "" {
		return m, nil
	}
	updated, _ := m.list.Update(msg)
	m.list = updated.(SceneListModel)
	return m, nil
}

// View renders the current step with any modal composited on top.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	s := Styles()

	var body string
	switch m.sh.session.Step() {
	case wizard.StepType:
		body = m.viewTypeStep(s)
	case wizard.StepEdit:
		body = m.viewEditStep(s)
	default:
		body = m.viewReviewStep(s)
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(s),
		"",
		body,
		"",
		m.viewFooter(s),
	)

	var overlay string
	switch {
	case m.alert != nil:
		overlay = s.AlertBox.Render(s.Error.Bold(true).Render(m.alert.Title) + "\n\n" +
			m.alert.Message + "\n\n" + s.Muted.Render(m.keyFor(config.ActionAccept)+" to dismiss"))
	case m.showHelp:
		overlay = s.Box.Render(m.help.Render(max(min(m.width-8, 72), 20)))
	case m.sh.session.Modal().IsOpen():
		overlay = m.viewModal(s)
	}
	if overlay == "" || m.width == 0 || m.height == 0 {
		if overlay != "" {
			return view + "\n" + overlay
		}
		return view
	}
	return overlayRender(view, overlay, m.width, m.height)
}

var stepTitles = []string{"Type", "Customize", "Review"}

func (m AppModel) viewHeader(s ThemeStyles) string {
	cur := m.sh.session.Step()
	parts := make([]string, len(stepTitles))
	for i, title := range stepTitles {
		label := fmt.Sprintf("%d %s", i+1, title)
		if wizard.Step(i+1) <= cur {
			parts[i] = s.StepDone.Render(label)
		} else {
			parts[i] = s.Step.Render(label)
		}
	}
	return s.Title.Render("Overlay Wizard") + "   " + strings.Join(parts, s.Muted.Render(" › "))
}

func (m AppModel) viewTypeStep(s ThemeStyles) string {
	var b strings.Builder
	b.WriteString("Choose the overlay to configure:\n\n")
	for i, t := range settings.Types {
		marker := "  "
		if i == m.typeCursor {
			marker = "❯ "
		}
		line := marker + t.DisplayName()
		if t == m.sh.session.SelectedType() {
			line += " " + s.Muted.Render("(selected)")
		}
		if i == m.typeCursor {
			line = s.Value.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + s.Muted.Render(m.keyFor(config.ActionAccept)+" to select and continue"))
	return b.String()
}

func (m AppModel) viewEditStep(s ThemeStyles) string {
	sess := m.sh.session
	rec := sess.Record()

	var b strings.Builder
	for i, field := range settings.Fields(sess.ActiveType()) {
		value := settings.FormatValue(rec[field])
		if m.editing && i == m.fieldCursor {
			value = m.input + "▏"
		} else if value == "" {
			value = s.Muted.Render("(none)")
		}
		line := s.Label.Render(field) + s.Value.Render(value)
		if i == m.fieldCursor {
			line = s.Selected.Render("❯") + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if sess.Uploading() {
		b.WriteString("\n" + s.Status.Render("Uploading..."))
	}
	b.WriteString("\n" + s.Muted.Render(fmt.Sprintf("%s/%s adjust · %s edit · %s review · %s back",
		m.keyFor(config.ActionLeft), m.keyFor(config.ActionRight), m.keyFor(config.ActionAccept),
		m.keyFor(config.ActionNext), m.keyFor(config.ActionCancel))))
	return lipgloss.JoinHorizontal(lipgloss.Top, b.String(), "    ", m.viewPreview(s))
}

func (m AppModel) viewReviewStep(s ThemeStyles) string {
	sess := m.sh.session

	var buttons []string
	if sess.SaveVisible() {
		buttons = append(buttons, s.Button.Render(m.keyFor(config.ActionSave)+" Save Existing"))
	}
	if sess.CreateVisible() {
		buttons = append(buttons, s.Button.Render(m.keyFor(config.ActionAddNew)+" Add New"))
	}
	buttons = append(buttons, s.Button.Render(m.keyFor(config.ActionExportMask)+" Export Mask"))

	left := lipgloss.JoinVertical(lipgloss.Left,
		sess.Instructions(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...),
		"",
		s.Muted.Render(m.keyFor(config.ActionCancel)+" back"),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", m.viewPreview(s))
}

func (m AppModel) viewPreview(s ThemeStyles) string {
	sess := m.sh.session
	visible := sess.VisibleSurfaces()
	if len(visible) == 0 {
		return ""
	}
	id := visible[0]
	if _, ok := sess.Manager().Instance(id); !ok {
		return s.Muted.Render("preview unavailable")
	}
	surface := sess.Surface(id)
	if surface == nil {
		return ""
	}
	cols := 32
	if m.width > 0 {
		cols = max(min(m.width/3, 48), 12)
	}
	return strings.Join(renderHalfBlock(surface.Image(), cols), "\n")
}

func (m AppModel) viewModal(s ThemeStyles) string {
	modal := m.sh.session.Modal()
	confirm := s.Disabled.Render(modal.Title())
	if modal.CanConfirm() && m.busy == "" {
		confirm = s.Button.Render(modal.Title())
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Select Scene"),
		modal.Subtitle(),
		"",
		m.list.View(),
		"",
		confirm+"  "+s.Muted.Render(m.keyFor(config.ActionAccept)+" confirm · "+m.keyFor(config.ActionCancel)+" cancel"),
	))
}

func (m AppModel) viewFooter(s ThemeStyles) string {
	var parts []string
	if m.busy != "" {
		parts = append(parts, s.Status.Render(m.busy))
	}
	if m.status != "" {
		st := s.Status
		if strings.HasPrefix(m.status, "Error") {
			st = s.Error
		}
		parts = append(parts, st.Render(m.status))
	}
	if m.sh.lastEvent != "" {
		parts = append(parts, s.Muted.Render(m.sh.lastEvent))
	}
	ready := s.Muted.Render("host: offline")
	if m.sh.session.Ready() {
		ready = s.Muted.Render("host: ready")
	}
	parts = append(parts, ready, s.Muted.Render(m.keyFor(config.ActionHelp)+" help · "+m.keyFor(config.ActionQuit)+" close"))
	return strings.Join(parts, s.Muted.Render(" │ "))
}

// keyFor returns the first key bound to action for on-screen hints.
func (m AppModel) keyFor(action config.KeyAction) string {
	if keys := m.deps.Keys.Keys(action); len(keys) > 0 {
		return keys[0]
	}
	return "-"
}

func describeEvent(e lifecycle.Event) string {
	switch e.Kind {
	case lifecycle.EventFailed:
		return fmt.Sprintf("render failed on %s", e.Surface)
	case lifecycle.EventRecoveryScheduled:
		return fmt.Sprintf("recovery scheduled (attempt %d)", e.Attempt)
	case lifecycle.EventRecovering:
		return fmt.Sprintf("recovering (attempt %d)", e.Attempt)
	default:
		return ""
	}
}

// shutdown releases subscriptions and cancels in-flight host jobs.
func (m AppModel) shutdown() {
	for _, unsub := range m.sh.unsubs {
		unsub()
	}
	m.sh.session.Shutdown()
	m.sh.cancel()
}
