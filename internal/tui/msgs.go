// ABOUTME: Message types routed through the wizard's Bubble Tea event loop
// ABOUTME: Host job results, loop callbacks, navigation and asset-reload events

package tui

import (
	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/scenes"
	"github.com/mauromedda/overlay-wizard/internal/wizard"
)

// loopCallbackMsg carries a deferred callback posted by the LoopScheduler.
type loopCallbackMsg struct{ fn func() }

// hostReadyMsg reports the outcome of Bridge.Init.
type hostReadyMsg struct{ err error }

// navigationMsg is a host navigation into the wizard.
type navigationMsg struct{ nav host.Navigation }

// navigationLoadedMsg carries the settings fetched for a navigation.
type navigationLoadedMsg struct{ res wizard.NavigationResult }

// scenesLoadedMsg carries the scene listing for the open modal.
type scenesLoadedMsg struct {
	listing scenes.Listing
	err     error
}

// publishDoneMsg reports the end of a publish through the scene modal.
type publishDoneMsg struct{ err error }

// saveDoneMsg reports the end of a save-existing.
type saveDoneMsg struct{ err error }

// uploadDoneMsg reports the end of an asset upload.
type uploadDoneMsg struct{ res wizard.UploadResult }

// closeDoneMsg is sent once the host was told to return to the editor.
type closeDoneMsg struct{ err error }

// assetChangedMsg reports a change to the watched engine asset file.
type assetChangedMsg struct{ path string }

// watchStoppedMsg is sent when the asset watcher channel closes.
type watchStoppedMsg struct{}
