// Package view defines the open views of the application and the registry
// that owns them.
package view

import (
	"sort"

	"image-compare/internal/overlay"
	"image-compare/internal/raster"
	"image-compare/internal/transform"
)

// ID identifies an open view. IDs are never reused within a process.
type ID int

// Kind distinguishes plain image views from sliding overlay views. Both
// kinds own a transform; only overlay views own a stack and split.
type Kind int

const (
	KindImage Kind = iota
	KindOverlay
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "Image"
	case KindOverlay:
		return "Overlay"
	default:
		return "Unknown"
	}
}

// View is one open view window's model state.
type View struct {
	id   ID
	kind Kind
	name string

	transform *transform.State

	// Plain image views only.
	image *raster.Raster

	// Overlay views only.
	stack *overlay.Stack
	split *overlay.Split
}

// ID returns the view's identifier.
func (v *View) ID() ID {
	return v.id
}

// Kind returns the view kind.
func (v *View) Kind() Kind {
	return v.kind
}

// Name returns the display name.
func (v *View) Name() string {
	return v.name
}

// Transform returns the view's transform state.
func (v *View) Transform() *transform.State {
	return v.transform
}

// Image returns the raster of a plain image view, or nil for overlays.
func (v *View) Image() *raster.Raster {
	return v.image
}

// Stack returns the overlay stack, or nil for plain image views.
func (v *View) Stack() *overlay.Stack {
	return v.stack
}

// Split returns the overlay split, or nil for plain image views.
func (v *View) Split() *overlay.Split {
	return v.split
}

// ContentSize returns the native pixel dimensions of the view's content.
func (v *View) ContentSize() (int, int) {
	switch v.kind {
	case KindImage:
		if v.image != nil {
			return v.image.Size()
		}
	case KindOverlay:
		if v.stack != nil {
			if w, h, ok := v.stack.Dimensions(); ok {
				return w, h
			}
		}
	}
	return 0, 0
}

// Registry is an arena of open views keyed by id. Group membership
// elsewhere is held as sets of ids, never as pointers into the registry,
// so closing a view cannot leave dangling references.
type Registry struct {
	nextID ID
	views  map[ID]*View
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nextID: 1,
		views:  make(map[ID]*View),
	}
}

// OpenImage registers a plain image view for the given raster.
func (r *Registry) OpenImage(name string, img *raster.Raster, viewportW, viewportH int) *View {
	v := &View{
		id:        r.nextID,
		kind:      KindImage,
		name:      name,
		transform: transform.New(viewportW, viewportH),
		image:     img,
	}
	r.nextID++
	r.views[v.id] = v
	return v
}

// OpenOverlay registers a sliding overlay view for a populated stack. The
// stack must be ready to composite.
func (r *Registry) OpenOverlay(name string, stack *overlay.Stack, viewportW, viewportH int) (*View, error) {
	if stack == nil || !stack.Ready() {
		return nil, overlay.ErrNotReady
	}
	v := &View{
		id:        r.nextID,
		kind:      KindOverlay,
		name:      name,
		transform: transform.New(viewportW, viewportH),
		stack:     stack,
		split:     overlay.NewSplit(),
	}
	r.nextID++
	r.views[v.id] = v
	return v, nil
}

// Get looks up a view by id.
func (r *Registry) Get(id ID) (*View, bool) {
	v, ok := r.views[id]
	return v, ok
}

// Close removes a view from the registry. Closing an unknown id is a no-op.
func (r *Registry) Close(id ID) {
	delete(r.views, id)
}

// Len returns the number of open views.
func (r *Registry) Len() int {
	return len(r.views)
}

// IDs returns the open view ids in ascending order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
