// Package canvas provides the view widget that feeds gestures into the
// core model and displays the rendered frames it gets back.
package canvas

import (
	"image"
	"image/draw"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"image-compare/internal/analyze"
	"image-compare/internal/app"
	"image-compare/internal/transform"
	"image-compare/internal/view"
	"image-compare/pkg/colorutil"
	"image-compare/pkg/geometry"
)

// ViewCanvas displays one view and translates its pointer, drag, and
// scroll events into core gestures.
type ViewCanvas struct {
	widget.BaseWidget

	state *app.State
	id    view.ID

	raster *fynecanvas.Raster

	// onGesture is invoked after any gesture that may have changed other
	// synchronized views, so the owner can refresh them all.
	onGesture func()

	// onReadout receives the pixel readout under the cursor.
	onReadout func(analyze.PixelReadout)

	// deviceScale reports the points-to-pixels factor of the canvas the
	// widget is attached to. Frames render at pixel size while events
	// arrive in points, so every event coordinate is multiplied by this
	// before it reaches the core.
	deviceScale func() float64
}

var _ desktop.Hoverable = (*ViewCanvas)(nil)

// NewViewCanvas creates a canvas widget bound to one open view.
func NewViewCanvas(state *app.State, id view.ID) *ViewCanvas {
	vc := &ViewCanvas{
		state: state,
		id:    id,
	}
	vc.deviceScale = vc.driverScale
	vc.raster = fynecanvas.NewRaster(vc.draw)
	vc.raster.ScaleMode = fynecanvas.ImageScalePixels
	vc.raster.SetMinSize(fyne.NewSize(400, 300))
	vc.ExtendBaseWidget(vc)
	return vc
}

// ViewID returns the id of the view this canvas displays.
func (vc *ViewCanvas) ViewID() view.ID {
	return vc.id
}

// OnGesture sets a callback fired after pan/zoom gestures.
func (vc *ViewCanvas) OnGesture(fn func()) {
	vc.onGesture = fn
}

// OnReadout sets a callback receiving the pixel readout under the cursor.
func (vc *ViewCanvas) OnReadout(fn func(analyze.PixelReadout)) {
	vc.onReadout = fn
}

// draw renders the view's frame over the dark background.
func (vc *ViewCanvas) draw(w, h int) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), &image.Uniform{colorutil.Background}, image.Point{}, draw.Src)

	frame, err := vc.state.Render(vc.id, w, h)
	if err != nil {
		return out
	}
	draw.Draw(out, out.Bounds(), frame, image.Point{}, draw.Over)
	return out
}

// driverScale looks up the attached canvas's device scale factor.
func (vc *ViewCanvas) driverScale() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	c := app.Driver().CanvasForObject(vc)
	if c == nil || c.Scale() <= 0 {
		return 1
	}
	return float64(c.Scale())
}

// framePos converts an event position in points to frame pixels.
func (vc *ViewCanvas) framePos(p fyne.Position) geometry.Point2D {
	s := vc.deviceScale()
	return geometry.NewPoint2D(float64(p.X)*s, float64(p.Y)*s)
}

// Dragged pans the view. Dragging moves the content with the pointer, so
// the image-space offset shifts the opposite way.
func (vc *ViewCanvas) Dragged(ev *fyne.DragEvent) {
	s := vc.deviceScale()
	vc.state.Pan(vc.id, geometry.NewPoint2D(float64(-ev.Dragged.DX)*s, float64(-ev.Dragged.DY)*s))
	vc.gestureDone()
}

// DragEnd implements fyne.Draggable.
func (vc *ViewCanvas) DragEnd() {}

// Scrolled zooms about the cursor position, one step per wheel event.
func (vc *ViewCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	factor := transform.ZoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / transform.ZoomStep
	}
	vc.state.Zoom(vc.id, factor, vc.framePos(ev.Position))
	vc.gestureDone()
}

// MouseIn implements desktop.Hoverable.
func (vc *ViewCanvas) MouseIn(ev *desktop.MouseEvent) {
	vc.MouseMoved(ev)
}

// MouseMoved feeds the pointer position to the split (for overlay views)
// and publishes the pixel readout.
func (vc *ViewCanvas) MouseMoved(ev *desktop.MouseEvent) {
	readout, ok := vc.state.PointerMoved(vc.id, vc.framePos(ev.Position))
	if ok && vc.onReadout != nil {
		vc.onReadout(readout)
	}
	vc.raster.Refresh()
}

// MouseOut implements desktop.Hoverable.
func (vc *ViewCanvas) MouseOut() {}

// Refresh redraws the canvas.
func (vc *ViewCanvas) Refresh() {
	vc.raster.Refresh()
	vc.BaseWidget.Refresh()
}

func (vc *ViewCanvas) gestureDone() {
	if vc.onGesture != nil {
		vc.onGesture()
	} else {
		vc.raster.Refresh()
	}
}

// CreateRenderer implements fyne.Widget.
func (vc *ViewCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(vc.raster)
}
