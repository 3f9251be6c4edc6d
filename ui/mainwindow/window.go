// Package mainwindow builds the application windows and wires the
// interface controls to the core model.
package mainwindow

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"image-compare/internal/analyze"
	"image-compare/internal/app"
	"image-compare/internal/overlay"
	"image-compare/internal/raster"
	"image-compare/internal/view"
	"image-compare/ui/canvas"
	"image-compare/ui/prefs"
)

const appTitle = "Image Compare"

// MainWindow owns the control window and one window per open view.
type MainWindow struct {
	fyneApp fyne.App
	main    fyne.Window
	state   *app.State
	prefs   *prefs.Prefs
	log     *zap.Logger

	canvases map[view.ID]*canvas.ViewCanvas
	windows  map[view.ID]fyne.Window

	status *widget.Label

	// pendingOverlay collects file paths for the next sliding overlay.
	pendingOverlay []string
	pendingLabel   *widget.Label
}

// New creates the main control window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs, log *zap.Logger) *MainWindow {
	if log == nil {
		log = zap.NewNop()
	}
	mw := &MainWindow{
		fyneApp:  fyneApp,
		state:    state,
		prefs:    p,
		log:      log,
		canvases: make(map[view.ID]*canvas.ViewCanvas),
		windows:  make(map[view.ID]fyne.Window),
	}

	mw.main = fyneApp.NewWindow(appTitle)
	mw.main.Resize(fyne.NewSize(float32(p.WindowWidth)/3, float32(p.WindowHeight)/3))
	mw.main.SetMaster()
	if p.Fullscreen {
		mw.main.SetFullScreen(true)
	}

	mw.status = widget.NewLabel("Drop images via the buttons above.")
	mw.pendingLabel = widget.NewLabel("Overlay queue: empty")

	openBtn := widget.NewButton("Open Image...", func() {
		mw.showOpenDialog(func(path string) {
			if err := mw.OpenImageFile(path); err != nil {
				dialog.ShowError(err, mw.main)
			}
		})
	})
	queueBtn := widget.NewButton("Queue Overlay Layer...", func() {
		mw.showOpenDialog(func(path string) {
			mw.queueOverlayLayer(path)
		})
	})
	createBtn := widget.NewButton("Create Sliding Overlay", func() {
		if err := mw.CreateOverlay(mw.pendingOverlay); err != nil {
			dialog.ShowError(err, mw.main)
			return
		}
		mw.pendingOverlay = nil
		mw.updatePendingLabel()
	})

	syncCheck := widget.NewCheck("Sync pan/zoom", func(on bool) {
		mw.state.SetSyncEnabled(on, mw.anyViewID())
		mw.prefs.SyncEnabled = on
		mw.refreshAll()
	})
	syncCheck.SetChecked(state.SyncEnabled())

	saveSessionBtn := widget.NewButton("Save Session...", func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			if err := mw.SaveSession(path); err != nil {
				dialog.ShowError(err, mw.main)
			}
		}, mw.main)
	})
	openSessionBtn := widget.NewButton("Open Session...", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			if err := mw.RestoreSession(path); err != nil {
				dialog.ShowError(err, mw.main)
			}
		}, mw.main)
	})

	smoothCheck := widget.NewCheck("Smooth sampling", func(on bool) {
		mw.state.SetSmoothSampling(on)
		mw.prefs.SmoothSampling = on
		mw.refreshAll()
	})
	smoothCheck.SetChecked(state.SmoothSampling())

	controls := container.NewVBox(
		openBtn,
		queueBtn,
		mw.pendingLabel,
		createBtn,
		saveSessionBtn,
		openSessionBtn,
		syncCheck,
		smoothCheck,
	)
	mw.main.SetContent(container.NewBorder(nil, mw.status, nil, nil, controls))
	mw.main.SetOnClosed(func() {
		if err := mw.prefs.Save(); err != nil {
			mw.log.Warn("saving preferences", zap.Error(err))
		}
	})
	return mw
}

// ShowAndRun shows the main window and enters the event loop.
func (mw *MainWindow) ShowAndRun() {
	mw.main.ShowAndRun()
}

// OpenImageFile loads an image file into a new synchronized view window.
func (mw *MainWindow) OpenImageFile(path string) error {
	r, err := raster.Load(path)
	if err != nil {
		return err
	}
	v, err := mw.state.OpenImageView(path, r, mw.prefs.WindowWidth, mw.prefs.WindowHeight)
	if err != nil {
		return err
	}
	mw.prefs.AddRecent(path)
	mw.openViewWindow(v, nil)
	return nil
}

// queueOverlayLayer appends a file to the pending overlay, capped at the
// stack's slot count.
func (mw *MainWindow) queueOverlayLayer(path string) {
	if len(mw.pendingOverlay) >= overlay.NumSlots {
		mw.status.SetText(fmt.Sprintf("Overlay already has %d layers", overlay.NumSlots))
		return
	}
	mw.pendingOverlay = append(mw.pendingOverlay, path)
	mw.updatePendingLabel()
}

func (mw *MainWindow) updatePendingLabel() {
	if len(mw.pendingOverlay) == 0 {
		mw.pendingLabel.SetText("Overlay queue: empty")
		return
	}
	mw.pendingLabel.SetText(fmt.Sprintf("Overlay queue: %d layer(s)", len(mw.pendingOverlay)))
}

// CreateOverlay loads the queued files into an overlay stack (first file is
// the base) and opens a sliding overlay window.
func (mw *MainWindow) CreateOverlay(paths []string) error {
	if len(paths) < 2 {
		return fmt.Errorf("a sliding overlay needs a base and at least one layer")
	}
	stack := overlay.NewStack()
	for i, path := range paths {
		r, err := raster.Load(path)
		if err != nil {
			return err
		}
		if err := stack.SetSlot(i, r); err != nil {
			return err
		}
	}
	v, err := mw.state.OpenOverlayView(paths[0], stack, mw.prefs.WindowWidth, mw.prefs.WindowHeight)
	if err != nil {
		return err
	}
	mw.openViewWindow(v, stack)
	return nil
}

// openViewWindow creates the window, canvas, and controls for one view.
// stack is nil for plain image views.
func (mw *MainWindow) openViewWindow(v *view.View, stack *overlay.Stack) {
	id := v.ID()
	win := mw.fyneApp.NewWindow(fmt.Sprintf("%s - %s", appTitle, v.Name()))
	win.Resize(fyne.NewSize(float32(mw.prefs.WindowWidth)/2, float32(mw.prefs.WindowHeight)/2))

	vc := canvas.NewViewCanvas(mw.state, id)
	vc.OnGesture(mw.refreshAll)
	vc.OnReadout(func(p analyze.PixelReadout) {
		mw.status.SetText(p.String())
	})
	mw.canvases[id] = vc
	mw.windows[id] = win

	var bottom fyne.CanvasObject
	if stack != nil {
		bottom = mw.overlayControls(id, stack)
	} else {
		bottom = mw.imageControls(id)
	}

	win.SetContent(container.NewBorder(nil, bottom, nil, nil, vc))
	win.SetOnClosed(func() {
		mw.state.CloseView(id)
		delete(mw.canvases, id)
		delete(mw.windows, id)
	})
	win.Show()
}

// imageControls builds the toolbar shared by every view window.
func (mw *MainWindow) imageControls(id view.ID) fyne.CanvasObject {
	fitBtn := widget.NewButton("Fit", func() {
		mw.state.FitAndCenter(id)
		mw.refreshAll()
	})
	actualBtn := widget.NewButton("1:1", func() {
		mw.state.ActualSize(id)
		mw.refreshAll()
	})
	return container.NewHBox(fitBtn, actualBtn)
}

// overlayControls adds split and opacity controls to the shared toolbar.
func (mw *MainWindow) overlayControls(id view.ID, stack *overlay.Stack) fyne.CanvasObject {
	lockBtn := widget.NewButton("Lock Split", func() {
		mw.state.ToggleSplitLock(id)
	})

	sliderNames := []string{"", "Top right", "Bottom right", "Bottom left"}
	sliders := make([]fyne.CanvasObject, 0, overlay.NumSlots-1)
	for slot := overlay.SlotTopRight; slot < overlay.NumSlots; slot++ {
		if stack.Raster(slot) == nil {
			continue
		}
		slot := slot
		s := widget.NewSlider(0, 100)
		s.SetValue(stack.Opacity(slot) * 100)
		s.OnChanged = func(v float64) {
			mw.state.SetOpacity(id, slot, v/100)
			mw.refresh(id)
		}
		sliders = append(sliders, container.NewBorder(nil, nil, widget.NewLabel(sliderNames[slot]), nil, s))
	}

	// Corner previews: hovering shows a single layer in full, clicking
	// locks the split there.
	corners := container.NewHBox(
		mw.cornerButton(id, "Base", 1, 1),
		mw.cornerButton(id, "TR", 0, 1),
		mw.cornerButton(id, "BR", 0, 0),
		mw.cornerButton(id, "BL", 1, 0),
	)

	return container.NewVBox(
		container.NewHBox(mw.imageControls(id), lockBtn, corners),
		container.NewVBox(sliders...),
	)
}

func (mw *MainWindow) cornerButton(id view.ID, label string, x, y float64) fyne.CanvasObject {
	return newHoverButton(label,
		func() { // tapped: jump there and lock
			if v, ok := mw.state.View(id); ok && v.Split() != nil {
				v.Split().LockAt(cornerPoint(x, y))
			}
			mw.refresh(id)
		},
		func(hovering bool) {
			if hovering {
				mw.state.PreviewSplitCorner(id, cornerPoint(x, y))
			} else {
				mw.state.EndSplitPreview(id)
			}
			mw.refresh(id)
		},
	)
}

func (mw *MainWindow) anyViewID() view.ID {
	ids := mw.state.ViewIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

func (mw *MainWindow) refresh(id view.ID) {
	if vc, ok := mw.canvases[id]; ok {
		vc.Refresh()
	}
}

// refreshAll redraws every open view, so synchronized windows stay
// consistent after a gesture in any one of them.
func (mw *MainWindow) refreshAll() {
	for _, vc := range mw.canvases {
		vc.Refresh()
	}
}

func (mw *MainWindow) showOpenDialog(onOpen func(path string)) {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		if !raster.IsSupportedFormat(path) {
			dialog.ShowError(fmt.Errorf("unsupported format: %s", path), mw.main)
			return
		}
		onOpen(path)
	}, mw.main)
}
