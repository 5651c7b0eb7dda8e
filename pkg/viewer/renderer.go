package viewer

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/meshwerk/citytwin/pkg/editor"
	"github.com/meshwerk/citytwin/pkg/geometry"
)

var (
	fillColor      = color.RGBA{158, 158, 170, 255}
	selectedColor  = color.RGBA{255, 140, 40, 255}
	edgeColor      = color.RGBA{40, 40, 48, 255}
	backgroundGray = color.RGBA{24, 24, 28, 255}
)

// MeshRenderer is the editor's 3D preview widget. It rasterizes the
// session's working geometry on the CPU with flat shading and a depth
// buffer, paints selected faces in a highlight color, and maps taps
// back to faces through a pick ray.
type MeshRenderer struct {
	widget.BaseWidget
	session    *editor.Session
	camera     *Camera
	img        *canvas.Image
	width      float64
	height     float64
	dragStart  *fyne.Position
	isDragging bool
	onChange   func()
}

// NewMeshRenderer creates a preview over an editor session
func NewMeshRenderer(session *editor.Session) *MeshRenderer {
	r := &MeshRenderer{
		session: session,
		camera:  NewCamera(session.Geometry().Bounds()),
		img:     canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
	}
	r.img.FillMode = canvas.ImageFillStretch
	r.ExtendBaseWidget(r)
	return r
}

// SetOnChange registers a callback fired after any selection change
// made through the widget
func (r *MeshRenderer) SetOnChange(callback func()) {
	r.onChange = callback
}

// ResetCamera refits the camera to the current geometry bounds
func (r *MeshRenderer) ResetCamera() {
	r.camera = NewCamera(r.session.Geometry().Bounds())
	r.Render(r.width, r.height)
}

// CreateRenderer creates the renderer for the widget
func (r *MeshRenderer) CreateRenderer() fyne.WidgetRenderer {
	return &meshWidgetRenderer{renderer: r}
}

// Render redraws the preview at the given size
func (r *MeshRenderer) Render(width, height float64) {
	if width < 1 || height < 1 {
		return
	}
	r.width = width
	r.height = height

	w, h := int(width), int(height)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = backgroundGray.R
		img.Pix[i+1] = backgroundGray.G
		img.Pix[i+2] = backgroundGray.B
		img.Pix[i+3] = 255
	}
	zbuffer := make([]float64, w*h)
	for i := range zbuffer {
		zbuffer[i] = math.MaxFloat64
	}

	geom := r.session.Geometry()
	light := geometry.NewVector3(0.3, 0.5, 0.8).Normalize()

	for f := 0; f < geom.FaceCount(); f++ {
		tri := geom.FaceTriangle(f)
		x1, y1, z1 := r.camera.Project(tri.V1, width, height)
		x2, y2, z2 := r.camera.Project(tri.V2, width, height)
		x3, y3, z3 := r.camera.Project(tri.V3, width, height)

		base := fillColor
		if r.session.HasSelectedFace(f) {
			base = selectedColor
		}
		col := shade(base, tri.Normal(), light)

		fillTriangleWithDepth(img, zbuffer, x1, y1, z1, x2, y2, z2, x3, y3, z3, col)
		drawLine(img, int(x1), int(y1), int(x2), int(y2), edgeColor)
		drawLine(img, int(x2), int(y2), int(x3), int(y3), edgeColor)
		drawLine(img, int(x3), int(y3), int(x1), int(y1), edgeColor)
	}

	r.img.Image = img
	r.img.Refresh()
}

// shade scales a base color by a simple lambert term
func shade(base color.RGBA, normal, light geometry.Vector3) color.RGBA {
	lambert := math.Abs(normal.Dot(light))
	k := 0.35 + 0.65*lambert
	return color.RGBA{
		R: uint8(float64(base.R) * k),
		G: uint8(float64(base.G) * k),
		B: uint8(float64(base.B) * k),
		A: 255,
	}
}

// Dragged orbits the camera
func (r *MeshRenderer) Dragged(event *fyne.DragEvent) {
	if r.dragStart != nil {
		deltaX := event.Position.X - r.dragStart.X
		deltaY := event.Position.Y - r.dragStart.Y

		r.camera.Rotate(float64(deltaY)*0.01, float64(deltaX)*0.01)
		r.Render(r.width, r.height)
	}
	r.dragStart = &event.Position
	r.isDragging = true
}

// DragEnd ends a camera orbit
func (r *MeshRenderer) DragEnd() {
	r.dragStart = nil
	r.isDragging = false
}

// Scrolled zooms the camera
func (r *MeshRenderer) Scrolled(event *fyne.ScrollEvent) {
	delta := -float64(event.Scrolled.DY) * 0.001
	r.camera.Zoom(delta)
	r.Render(r.width, r.height)
}

// Tapped picks the face under the pointer and toggles it into the
// session's selection
func (r *MeshRenderer) Tapped(event *fyne.PointEvent) {
	if r.isDragging {
		return
	}

	ray := r.camera.PickRay(float64(event.Position.X), float64(event.Position.Y), r.width, r.height)
	face, ok := r.pickFace(ray)
	if !ok {
		r.session.ClearSelection()
	} else {
		r.session.SelectFace(face)
	}
	r.Render(r.width, r.height)
	if r.onChange != nil {
		r.onChange()
	}
}

// pickFace finds the nearest face along the ray
func (r *MeshRenderer) pickFace(ray geometry.Ray) (int, bool) {
	geom := r.session.Geometry()
	bestFace := -1
	bestT := math.MaxFloat64
	for f := 0; f < geom.FaceCount(); f++ {
		t, ok := ray.IntersectTriangle(geom.FaceTriangle(f))
		if ok && t < bestT {
			bestT = t
			bestFace = f
		}
	}
	return bestFace, bestFace >= 0
}

// meshWidgetRenderer implements fyne.WidgetRenderer
type meshWidgetRenderer struct {
	renderer *MeshRenderer
}

func (m *meshWidgetRenderer) Layout(size fyne.Size) {
	m.renderer.img.Resize(size)
	m.renderer.Render(float64(size.Width), float64(size.Height))
}

func (m *meshWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (m *meshWidgetRenderer) Refresh() {
	canvas.Refresh(m.renderer)
}

func (m *meshWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{m.renderer.img}
}

func (m *meshWidgetRenderer) Destroy() {}
