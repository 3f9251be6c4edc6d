package mainwindow

import (
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"image-compare/pkg/geometry"
)

func cornerPoint(x, y float64) geometry.Point2D {
	return geometry.NewPoint2D(x, y)
}

// hoverButton is a button that also reports hover transitions, used for
// the split corner previews.
type hoverButton struct {
	widget.Button
	onHover func(hovering bool)
}

func newHoverButton(label string, tapped func(), onHover func(hovering bool)) *hoverButton {
	b := &hoverButton{onHover: onHover}
	b.Text = label
	b.OnTapped = tapped
	b.ExtendBaseWidget(b)
	return b
}

func (b *hoverButton) MouseIn(ev *desktop.MouseEvent) {
	b.Button.MouseIn(ev)
	if b.onHover != nil {
		b.onHover(true)
	}
}

func (b *hoverButton) MouseOut() {
	b.Button.MouseOut()
	if b.onHover != nil {
		b.onHover(false)
	}
}
