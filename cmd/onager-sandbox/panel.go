package main

import (
	"image"
	"image/color"

	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/milk9111/onager2d/broadphase"
)

// panelBroadphases lists the strategy buttons in display order.
var panelBroadphases = []struct {
	label string
	name  string
}{
	{"N-Squared", broadphase.NameNSquared},
	{"Sweep-and-Prune", broadphase.NameSweepAndPrune},
	{"Spatial-Hash", broadphase.NameSpatialHash},
}

// controlPanel is a column of buttons in the top-right corner that mirrors
// the keyboard controls.
type controlPanel struct {
	ui    *ebitenui.UI
	panel *widget.Container
}

// NewControlPanel builds the panel using colored nine-slices and the built-in
// basic font, so no theme assets are needed.
func NewControlPanel(g *Game) *controlPanel {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	pressedImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	stretch := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: pressedImg}),
			widget.ButtonOpts.Text(label, face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(stretch),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		)
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(widget.Insets{Top: 10, Bottom: 10, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)

	panel.AddChild(widget.NewText(
		widget.TextOpts.Text("Physics", face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	))
	panel.AddChild(button("Pause", func() { g.physics.SetEnabled(false) }))
	panel.AddChild(button("Resume", func() { g.physics.SetEnabled(true) }))

	panel.AddChild(widget.NewText(
		widget.TextOpts.Text("Broadphase", face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	))
	for _, bp := range panelBroadphases {
		bp := bp
		panel.AddChild(button(bp.label, func() { g.selectBroadphase(bp.name) }))
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &controlPanel{
		ui:    &ebitenui.UI{Container: root},
		panel: panel,
	}
}

// Contains reports whether the screen point lies over the panel, so clicks
// on buttons do not also spawn bodies.
func (p *controlPanel) Contains(x, y int) bool {
	return image.Pt(x, y).In(p.panel.GetWidget().Rect)
}
