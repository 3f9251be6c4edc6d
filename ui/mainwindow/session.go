package mainwindow

import (
	"fmt"

	"go.uber.org/zap"

	"image-compare/internal/overlay"
	"image-compare/internal/raster"
	"image-compare/internal/session"
	"image-compare/internal/view"
)

// SaveSession writes the open views and overlay settings to a session file.
func (mw *MainWindow) SaveSession(path string) error {
	f := session.New(appTitle)
	f.SyncEnabled = mw.state.SyncEnabled()
	f.SmoothSampling = mw.state.SmoothSampling()

	for _, id := range mw.state.ViewIDs() {
		v, ok := mw.state.View(id)
		if !ok {
			continue
		}
		switch v.Kind() {
		case view.KindImage:
			f.AddImage(path, v.Image().Path())
		case view.KindOverlay:
			layers := make([]session.Layer, 0, overlay.NumSlots)
			for slot := 0; slot < overlay.NumSlots; slot++ {
				r := v.Stack().Raster(slot)
				if r == nil {
					break
				}
				layers = append(layers, session.Layer{
					ImagePath: r.Path(),
					Opacity:   v.Stack().Opacity(slot),
				})
			}
			f.SetLayers(path, layers)
			f.SplitPos = v.Split().Position()
			f.SplitLocked = v.Split().Mode() == overlay.Locked
		}
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	mw.log.Info("saved session", zap.String("path", path))
	return nil
}

// RestoreSession reopens the views recorded in a session file.
func (mw *MainWindow) RestoreSession(path string) error {
	f, err := session.Load(path)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	mw.state.SetSmoothSampling(f.SmoothSampling)

	for i := range f.ImagePaths {
		if err := mw.OpenImageFile(f.ImagePath(path, i)); err != nil {
			return err
		}
	}

	if len(f.Layers) > 0 {
		stack := overlay.NewStack()
		for i := range f.Layers {
			r, err := raster.Load(f.LayerPath(path, i))
			if err != nil {
				return err
			}
			if err := stack.SetSlot(i, r); err != nil {
				return err
			}
			stack.SetOpacity(i, f.Layers[i].Opacity)
		}
		v, err := mw.state.OpenOverlayView(f.LayerPath(path, 0), stack, mw.prefs.WindowWidth, mw.prefs.WindowHeight)
		if err != nil {
			return err
		}
		if f.SplitLocked {
			v.Split().LockAt(f.SplitPos)
		} else {
			v.Split().Set(f.SplitPos)
		}
		mw.openViewWindow(v, stack)
	}

	mw.state.SetSyncEnabled(f.SyncEnabled, mw.anyViewID())
	mw.log.Info("restored session",
		zap.String("path", path),
		zap.Int("images", len(f.ImagePaths)),
		zap.Int("layers", len(f.Layers)))
	return nil
}
