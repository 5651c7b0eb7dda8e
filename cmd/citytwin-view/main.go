package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/meshwerk/citytwin/internal/config"
	"github.com/meshwerk/citytwin/internal/viewer"
	"github.com/meshwerk/citytwin/pkg/backend"
	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/scene"
	"github.com/meshwerk/citytwin/pkg/watcher"
)

type App struct {
	state      *viewer.State
	controller *viewer.Controller
	info       *infoPanel

	camera         rl.Camera3D
	cameraTarget   rl.Vector3
	cameraDistance float32
	cameraAngleX   float32
	cameraAngleY   float32
	mouseDownPos   rl.Vector2
	mouseMoved     bool

	sceneDir     string
	logger       *slog.Logger
	client       backend.Client
	reloadNeeded atomic.Bool
}

// infoPanel renders the clicked building's properties as screen text
type infoPanel struct {
	record *scene.PropertyRecord
}

func (p *infoPanel) ShowBuilding(rec *scene.PropertyRecord) { p.record = rec }
func (p *infoPanel) ClearBuilding()                         { p.record = nil }

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: citytwin-view <scene-dir>")
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("CITYTWIN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	app := &App{
		sceneDir: os.Args[1],
		logger:   logger,
		info:     &infoPanel{},
	}
	if cfg.BackendURL != "" {
		app.client = backend.NewHTTPClient(cfg.BackendURL, logger)
	}

	if err := app.loadScene(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}

	if cfg.AutoReload {
		w, err := watcher.New(cfg.WatchDebounce, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
		if err := w.Watch(app.sceneDir, func() { app.reloadNeeded.Store(true) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error watching scene: %v\n", err)
			os.Exit(1)
		}
		w.Start()
	}

	rl.InitWindow(1400, 900, "CityTwin - Scene Viewer")
	rl.SetTargetFPS(60)

	app.fitCamera()

	for !rl.WindowShouldClose() {
		if app.reloadNeeded.Swap(false) {
			if err := app.loadScene(); err != nil {
				logger.Error("scene reload failed", "error", err)
			}
		}

		app.handleInput()
		app.updateCamera()

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(15, 18, 25, 255))

		rl.BeginMode3D(app.camera)
		app.drawChunks()
		app.drawCustomMeshes()
		rl.EndMode3D()

		app.drawUI()
		rl.EndDrawing()
	}

	rl.CloseWindow()
}

func (app *App) loadScene() error {
	s, err := scene.Load(app.sceneDir, app.logger)
	if err != nil {
		return err
	}

	state := viewer.NewState(scene.NewResolver(s.FaceMap, s.Properties, app.logger), app.logger)
	for id, buf := range s.Chunks {
		state.AddChunk(viewer.NewChunk(id, buf))
	}

	if app.client != nil {
		ctx := context.Background()
		ids, err := app.client.ListCustomMeshes(ctx)
		if err != nil {
			app.logger.Warn("custom mesh listing failed", "error", err)
		} else if len(ids) > 0 {
			state.SubstituteBatch(ctx, ids, app.client)
		}
	}

	app.state = state
	app.controller = viewer.NewController(state, app.info)
	app.info.ClearBuilding()
	return nil
}

// fitCamera frames the whole scene
func (app *App) fitCamera() {
	bbox := geometry.NewBoundingBox()
	for _, chunk := range app.state.Chunks() {
		b := chunk.Geom.Bounds()
		if !b.IsEmpty() {
			bbox.Extend(b.Min)
			bbox.Extend(b.Max)
		}
	}
	center := bbox.Center()
	distance := float32(bbox.Diagonal())
	if bbox.IsEmpty() || distance < 1 {
		center = geometry.NewVector3(0, 0, 0)
		distance = 100
	}

	app.cameraTarget = rl.Vector3{X: float32(center.X), Y: float32(center.Y), Z: float32(center.Z)}
	app.cameraDistance = distance
	app.cameraAngleX = 0.6
	app.cameraAngleY = 0.8

	app.camera = rl.Camera3D{
		Position:   rl.Vector3{X: 0, Y: 0, Z: app.cameraDistance},
		Target:     app.cameraTarget,
		Up:         rl.Vector3{X: 0, Y: 0, Z: 1},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}
}

func (app *App) updateCamera() {
	x := app.cameraDistance * float32(math.Cos(float64(app.cameraAngleX))*math.Sin(float64(app.cameraAngleY)))
	y := app.cameraDistance * float32(math.Cos(float64(app.cameraAngleX))*math.Cos(float64(app.cameraAngleY)))
	z := app.cameraDistance * float32(math.Sin(float64(app.cameraAngleX)))

	app.camera.Position = rl.Vector3{
		X: app.cameraTarget.X + x,
		Y: app.cameraTarget.Y + y,
		Z: app.cameraTarget.Z + z,
	}
	app.camera.Target = app.cameraTarget
}

func (app *App) handleInput() {
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		app.mouseDownPos = rl.GetMousePosition()
		app.mouseMoved = false
	}

	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			app.mouseMoved = true
			app.cameraAngleY += delta.X * 0.01
			app.cameraAngleX += delta.Y * 0.01

			if app.cameraAngleX > 1.5 {
				app.cameraAngleX = 1.5
			}
			if app.cameraAngleX < 0.05 {
				app.cameraAngleX = 0.05
			}
		}
	}

	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		currentPos := rl.GetMousePosition()
		if !app.mouseMoved && rl.Vector2Distance(app.mouseDownPos, currentPos) < 5.0 {
			app.controller.Click(app.pointerRay())
		}
	}

	wheel := rl.GetMouseWheelMove()
	if wheel != 0 {
		app.cameraDistance *= (1.0 - wheel*0.03)
		if app.cameraDistance < 1.0 {
			app.cameraDistance = 1.0
		}
	}

	if !rl.IsMouseButtonDown(rl.MouseLeftButton) {
		app.controller.PointerMove(app.pointerRay())
	}
}

// pointerRay converts the mouse position into a world-space ray
func (app *App) pointerRay() geometry.Ray {
	ray := rl.GetMouseRay(rl.GetMousePosition(), app.camera)
	return geometry.NewRay(
		geometry.NewVector3(float64(ray.Position.X), float64(ray.Position.Y), float64(ray.Position.Z)),
		geometry.NewVector3(float64(ray.Direction.X), float64(ray.Direction.Y), float64(ray.Direction.Z)),
	)
}

var (
	buildingColor = rl.NewColor(150, 155, 170, 255)
	hoverColor    = rl.NewColor(240, 220, 90, 255)
	selectedColor = rl.NewColor(255, 140, 40, 255)
	customColor   = rl.NewColor(110, 190, 140, 255)
)

// drawChunks draws the procedural geometry face by face, skipping
// masked faces and tinting the hovered and selected buildings
func (app *App) drawChunks() {
	hovered := app.state.Highlight.Hovered
	selected := app.state.Highlight.Selected

	for _, chunk := range app.state.Chunks() {
		geom := chunk.Geom
		for f := 0; f < geom.FaceCount(); f++ {
			if chunk.FaceHidden(f) {
				continue
			}

			col := buildingColor
			if len(geom.BuildingIDs) > 0 {
				vi := geom.FaceVertices(f)
				id := geom.BuildingIDs[vi[0]]
				if id == selected && selected >= 0 {
					col = selectedColor
				} else if id == hovered && hovered >= 0 {
					col = hoverColor
				}
			}

			tri := geom.FaceTriangle(f)
			rl.DrawTriangle3D(rlVec(tri.V1), rlVec(tri.V2), rlVec(tri.V3), shade(col, tri.Normal()))
		}
	}
}

// drawCustomMeshes draws the user-authored replacement meshes
func (app *App) drawCustomMeshes() {
	for _, m := range app.state.CustomMeshes() {
		for f := 0; f < m.Geom.FaceCount(); f++ {
			tri := m.Geom.FaceTriangle(f)
			rl.DrawTriangle3D(rlVec(tri.V1), rlVec(tri.V2), rlVec(tri.V3), shade(customColor, tri.Normal()))
		}
	}
}

func rlVec(v geometry.Vector3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

var lightDir = geometry.NewVector3(-0.4, -0.6, -0.8).Normalize()

// shade bakes a simple diffuse term into the face color
func shade(base rl.Color, normal geometry.Vector3) rl.Color {
	k := math.Max(0.35, -normal.Dot(lightDir))
	return rl.NewColor(
		uint8(float64(base.R)*k),
		uint8(float64(base.G)*k),
		uint8(float64(base.B)*k),
		255,
	)
}

func (app *App) drawUI() {
	rl.DrawText("drag: orbit | wheel: zoom | click: select building", 10, 10, 16, rl.LightGray)
	rl.DrawText(fmt.Sprintf("custom meshes: %d", app.state.CustomMeshCount()), 10, 32, 16, rl.LightGray)

	rec := app.info.record
	if rec == nil {
		return
	}

	y := int32(60)
	line := func(text string) {
		rl.DrawText(text, 10, y, 18, rl.RayWhite)
		y += 22
	}
	line(fmt.Sprintf("Building: %s", displayName(rec)))
	line(fmt.Sprintf("OSM ID: %d", rec.OSMID))
	if rec.BuildingType != "" {
		line(fmt.Sprintf("Type: %s", rec.BuildingType))
	}
	if rec.Height > 0 {
		line(fmt.Sprintf("Height: %.1f m (%s)", rec.Height, rec.HeightSource))
	}
	if rec.AddrStreet != "" {
		line(fmt.Sprintf("Address: %s %s, %s %s", rec.AddrStreet, rec.AddrNumber, rec.AddrPostcode, rec.AddrCity))
	}
	if rec.Amenity != "" {
		line(fmt.Sprintf("Amenity: %s", rec.Amenity))
	}
	if rec.Shop != "" {
		line(fmt.Sprintf("Shop: %s", rec.Shop))
	}
}

func displayName(rec *scene.PropertyRecord) string {
	if rec.Name != "" {
		return rec.Name
	}
	return string(rec.BuildingID)
}
