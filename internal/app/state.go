package app

import (
	"image"
	"math"
	"sync"

	"go.uber.org/zap"

	"image-compare/internal/analyze"
	"image-compare/internal/overlay"
	"image-compare/internal/raster"
	"image-compare/internal/transform"
	"image-compare/internal/view"
	"image-compare/internal/viewsync"
	"image-compare/pkg/geometry"
)

// State holds the open views, the sync group, and the compositor. All
// gesture handling runs on the event thread; the mutex only guards against
// stray background access.
type State struct {
	mu sync.RWMutex

	log   *zap.Logger
	views *view.Registry
	sync  *viewsync.Group
	comp  *overlay.Compositor
}

// NewState creates an empty application state with nearest-neighbor
// sampling and synchronized pan/zoom enabled.
func NewState(log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		log:   log,
		views: view.NewRegistry(),
		sync:  viewsync.NewGroup(log),
		comp:  overlay.NewCompositor(overlay.SamplingNearest),
	}
}

// View looks up an open view by id.
func (s *State) View(id view.ID) (*view.View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.Get(id)
}

// ViewIDs returns the ids of all open views in ascending order.
func (s *State) ViewIDs() []view.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.IDs()
}

// OpenImageView opens a plain image view, fits the image to the viewport,
// and joins it to the sync group.
func (s *State) OpenImageView(name string, r *raster.Raster, viewportW, viewportH int) (*view.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.views.OpenImage(name, r, viewportW, viewportH)
	v.Transform().FitAndCenter(geometry.NewSize(float64(r.Width()), float64(r.Height())))
	if err := s.sync.AddMember(v.ID(), v.Transform(), r.Width(), r.Height()); err != nil {
		s.views.Close(v.ID())
		return nil, err
	}
	s.log.Info("opened image view",
		zap.Int("view", int(v.ID())),
		zap.String("name", name),
		zap.Int("width", r.Width()),
		zap.Int("height", r.Height()))
	return v, nil
}

// OpenOverlayView opens a sliding overlay view for a populated stack and
// joins it to the sync group.
func (s *State) OpenOverlayView(name string, stack *overlay.Stack, viewportW, viewportH int) (*view.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.views.OpenOverlay(name, stack, viewportW, viewportH)
	if err != nil {
		return nil, err
	}
	w, h, _ := stack.Dimensions()
	v.Transform().FitAndCenter(geometry.NewSize(float64(w), float64(h)))
	if err := s.sync.AddMember(v.ID(), v.Transform(), w, h); err != nil {
		s.views.Close(v.ID())
		return nil, err
	}
	s.log.Info("opened overlay view",
		zap.Int("view", int(v.ID())),
		zap.String("name", name),
		zap.Int("layers", stack.PopulatedCount()))
	return v, nil
}

// CloseView removes a view from the registry and from the sync group in
// one step, so no membership entry can outlive the view.
func (s *State) CloseView(id view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync.Remove(id)
	s.views.Close(id)
	s.log.Debug("closed view", zap.Int("view", int(id)))
}

// Pan applies a pan gesture from the given view, fanned out across the
// sync group. Stale references are logged and skipped.
func (s *State) Pan(id view.ID, deltaScreen geometry.Point2D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sync.Pan(id, deltaScreen); err != nil {
		s.log.Debug("pan fan-out", zap.Error(err))
	}
}

// Zoom applies a zoom gesture from the given view, fanned out across the
// sync group.
func (s *State) Zoom(id view.ID, factor float64, anchorScreen geometry.Point2D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sync.Zoom(id, factor, anchorScreen); err != nil {
		s.log.Debug("zoom fan-out", zap.Error(err))
	}
}

// Wheel converts a raw wheel delta into a zoom anchored at the cursor.
func (s *State) Wheel(id view.ID, rawDelta float64, anchorScreen geometry.Point2D) {
	notches := transform.WheelNotches(rawDelta)
	if notches == 0 {
		return
	}
	s.Zoom(id, math.Pow(transform.ZoomStep, notches), anchorScreen)
}

// PointerMoved feeds a pointer position (in view screen coordinates) to an
// overlay view's split and returns the pixel readout under the cursor.
func (s *State) PointerMoved(id view.ID, screenPos geometry.Point2D) (analyze.PixelReadout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views.Get(id)
	if !ok {
		s.log.Debug("pointer move for closed view", zap.Int("view", int(id)))
		return analyze.PixelReadout{}, false
	}

	if v.Kind() == view.KindOverlay {
		vw, vh := v.Transform().Viewport()
		v.Split().PointerMoved(geometry.NewPoint2D(
			screenPos.X/float64(vw),
			screenPos.Y/float64(vh),
		))
	}

	r := readoutRaster(v)
	if r == nil {
		return analyze.PixelReadout{}, false
	}
	p := v.Transform().ScreenToImage(screenPos)
	return analyze.Pixel(r, int(p.X), int(p.Y)), true
}

// readoutRaster picks the raster sampled for the status readout.
func readoutRaster(v *view.View) *raster.Raster {
	if v.Kind() == view.KindOverlay {
		return v.Stack().Raster(overlay.SlotBase)
	}
	return v.Image()
}

// ToggleSplitLock flips the split lock of an overlay view.
func (s *State) ToggleSplitLock(id view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views.Get(id); ok && v.Split() != nil {
		v.Split().ToggleLock()
	}
}

// PreviewSplitCorner temporarily moves an overlay view's rendered split to
// a corner, without changing the stored split.
func (s *State) PreviewSplitCorner(id view.ID, corner geometry.Point2D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views.Get(id); ok && v.Split() != nil {
		v.Split().Preview(corner)
	}
}

// EndSplitPreview reverts a split preview.
func (s *State) EndSplitPreview(id view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views.Get(id); ok && v.Split() != nil {
		v.Split().EndPreview()
	}
}

// SetOpacity sets an overlay slot's opacity on the given view.
func (s *State) SetOpacity(id view.ID, slot int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views.Get(id)
	if !ok || v.Stack() == nil {
		s.log.Debug("opacity change for closed view", zap.Int("view", int(id)))
		return
	}
	v.Stack().SetOpacity(slot, value)
}

// SyncEnabled reports whether synchronized pan/zoom is on.
func (s *State) SyncEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sync.Enabled()
}

// SetSyncEnabled toggles synchronized pan/zoom. Re-enabling re-establishes
// the footprint invariant from the given view outward.
func (s *State) SetSyncEnabled(enabled bool, fromID view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !enabled {
		s.sync.Disable()
		return
	}
	if err := s.sync.Enable(fromID); err != nil {
		s.log.Debug("sync re-enable", zap.Error(err))
	}
}

// SmoothSampling reports whether interpolated sampling is on.
func (s *State) SmoothSampling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comp.Sampling() == overlay.SamplingBilinear
}

// SetSmoothSampling switches between nearest-neighbor and bilinear
// sampling for all rendering.
func (s *State) SetSmoothSampling(smooth bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if smooth {
		s.comp.SetSampling(overlay.SamplingBilinear)
	} else {
		s.comp.SetSampling(overlay.SamplingNearest)
	}
}

// Resize updates a view's viewport size.
func (s *State) Resize(id view.ID, w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views.Get(id); ok {
		v.Transform().SetViewport(w, h)
	}
}

// FitAndCenter fits a view's content to its viewport.
func (s *State) FitAndCenter(id view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views.Get(id); ok {
		w, h := v.ContentSize()
		v.Transform().FitAndCenter(geometry.NewSize(float64(w), float64(h)))
	}
}

// ActualSize shows a view's content at a 1:1 pixel mapping.
func (s *State) ActualSize(id view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views.Get(id); ok {
		v.Transform().ActualSize()
	}
}

// Render produces the frame for one view at the given size. Overlay views
// are composited by quadrant; plain views sample their single raster.
func (s *State) Render(id view.ID, w, h int) (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views.Get(id)
	if !ok {
		return nil, viewsync.ErrStaleView
	}
	v.Transform().SetViewport(w, h)

	if v.Kind() == view.KindOverlay {
		return s.comp.Render(v.Stack(), v.Transform(), v.Split().Effective(), w, h)
	}
	return s.comp.RenderImage(v.Image(), v.Transform(), w, h), nil
}
