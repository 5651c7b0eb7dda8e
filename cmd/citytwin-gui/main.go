package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/meshwerk/citytwin/internal/config"
	"github.com/meshwerk/citytwin/pkg/analysis"
	"github.com/meshwerk/citytwin/pkg/backend"
	"github.com/meshwerk/citytwin/pkg/editor"
	"github.com/meshwerk/citytwin/pkg/meshio"
	"github.com/meshwerk/citytwin/pkg/scene"
	"github.com/meshwerk/citytwin/pkg/viewer"
)

type App struct {
	window    fyne.Window
	cfg       *config.Config
	session   *editor.Session
	renderer  *viewer.MeshRenderer
	filePath  string
	infoLabel *widget.Label
}

func main() {
	cfg, err := config.Load(os.Getenv("CITYTWIN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow("CityTwin - Mesh Editor")

	appInstance := &App{window: w, cfg: cfg}

	if len(os.Args) > 1 {
		appInstance.loadFile(os.Args[1])
	} else {
		appInstance.showWelcomeScreen()
	}

	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
}

func (a *App) showWelcomeScreen() {
	welcomeLabel := widget.NewLabel("CityTwin Mesh Editor")
	welcomeLabel.TextStyle = fyne.TextStyle{Bold: true}

	openButton := widget.NewButton("Open Mesh File", func() {
		a.showFileDialog()
	})

	content := container.NewVBox(
		container.NewCenter(welcomeLabel),
		container.NewCenter(widget.NewLabel("Open a building mesh to start editing")),
		container.NewCenter(openButton),
	)
	a.window.SetContent(content)
}

func (a *App) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		a.loadFile(reader.URI().Path())
	}, a.window)
}

func (a *App) loadFile(filename string) {
	f, err := os.Open(filename)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to open mesh file: %w", err), a.window)
		return
	}
	defer f.Close()

	buf, err := meshio.Decode(f)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to parse mesh file: %w", err), a.window)
		return
	}

	a.filePath = filename
	a.session = editor.Open(buf, nil)
	a.setupMainUI()
}

func (a *App) setupMainUI() {
	a.renderer = viewer.NewMeshRenderer(a.session)
	a.renderer.SetOnChange(a.updateInfo)
	a.infoLabel = widget.NewLabel("")

	distanceEntry := widget.NewEntry()
	distanceEntry.SetText("1.0")
	extrudeButton := widget.NewButton("Extrude", func() {
		d, err := strconv.ParseFloat(distanceEntry.Text, 64)
		if err != nil {
			dialog.ShowError(fmt.Errorf("invalid distance: %w", err), a.window)
			return
		}
		a.applyOp(a.session.ExtrudeFaces(d), "extrude needs a face selection")
	})

	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText("0.001")
	weldButton := widget.NewButton("Weld", func() {
		th, err := strconv.ParseFloat(thresholdEntry.Text, 64)
		if err != nil {
			dialog.ShowError(fmt.Errorf("invalid threshold: %w", err), a.window)
			return
		}
		a.applyOp(a.session.WeldVertices(th), "weld threshold must be positive")
	})

	deleteButton := widget.NewButton("Delete Faces", func() {
		a.applyOp(a.session.DeleteSelectedFaces(), "delete needs a face selection")
	})
	flipButton := widget.NewButton("Flip Normals", func() {
		a.applyOp(a.session.FlipNormals(), "flip requires flat geometry")
	})
	insetButton := widget.NewButton("Inset 50%", func() {
		a.applyOp(a.session.InsetFaces(0.5), "inset needs a face selection")
	})
	centerButton := widget.NewButton("Center", func() {
		a.session.CenterGeometry()
		a.refresh()
	})
	groundButton := widget.NewButton("Place on Ground", func() {
		a.session.PlaceOnGround()
		a.refresh()
	})

	undoButton := widget.NewButton("Undo", func() {
		if a.session.Undo() {
			a.refresh()
		}
	})
	redoButton := widget.NewButton("Redo", func() {
		if a.session.Redo() {
			a.refresh()
		}
	})
	clearButton := widget.NewButton("Clear Selection", func() {
		a.session.ClearSelection()
		a.refresh()
	})
	saveButton := widget.NewButton("Save", a.save)

	panel := container.NewVBox(
		widget.NewLabel("Mesh Information:"),
		widget.NewSeparator(),
		a.infoLabel,
		widget.NewSeparator(),
		widget.NewLabel("Extrude distance:"),
		distanceEntry,
		extrudeButton,
		widget.NewLabel("Weld threshold:"),
		thresholdEntry,
		weldButton,
		deleteButton,
		flipButton,
		insetButton,
		centerButton,
		groundButton,
		widget.NewSeparator(),
		undoButton,
		redoButton,
		clearButton,
		widget.NewSeparator(),
		saveButton,
	)

	infoScroll := container.NewVScroll(panel)
	infoScroll.SetMinSize(fyne.NewSize(300, 0))

	content := container.NewBorder(nil, nil, nil, infoScroll, a.renderer)
	a.window.SetContent(content)

	a.updateInfo()
	a.renderer.Render(800, 600)
}

func (a *App) applyOp(ok bool, failMsg string) {
	if !ok {
		dialog.ShowInformation("Nothing to do", failMsg, a.window)
		return
	}
	a.refresh()
}

func (a *App) refresh() {
	a.renderer.ResetCamera()
	a.updateInfo()
}

func (a *App) updateInfo() {
	stats := analysis.AnalyzeBuffer(a.session.Geometry())
	dirty := ""
	if a.session.IsDirty() {
		dirty = " (unsaved)"
	}
	a.infoLabel.SetText(fmt.Sprintf(
		"File: %s%s\nVertices: %d\nFaces: %d\nSelected faces: %d\nSurface area: %.2f\nDimensions:\n  X: %.2f\n  Y: %.2f\n  Z: %.2f",
		a.filePath, dirty,
		stats.VertexCount,
		stats.FaceCount,
		a.session.SelectedFaceCount(),
		stats.SurfaceArea,
		stats.Dimensions.X,
		stats.Dimensions.Y,
		stats.Dimensions.Z,
	))
}

func (a *App) save() {
	f, err := os.Create(a.filePath)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to write mesh file: %w", err), a.window)
		return
	}
	defer f.Close()

	if err := meshio.Encode(f, a.session.Geometry()); err != nil {
		dialog.ShowError(fmt.Errorf("failed to encode mesh: %w", err), a.window)
		return
	}
	a.session.AcknowledgeSave()
	a.updateInfo()

	if a.cfg.BackendURL != "" {
		a.offerUpload()
	}
}

// offerUpload asks for the building's OSM ID and pushes the edited
// mesh to the backend as its replacement
func (a *App) offerUpload() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("OSM ID")
	dialog.ShowForm("Upload to backend", "Upload", "Skip",
		[]*widget.FormItem{widget.NewFormItem("Building", entry)},
		func(confirmed bool) {
			if !confirmed {
				return
			}
			id, err := strconv.ParseInt(entry.Text, 10, 64)
			if err != nil {
				dialog.ShowError(fmt.Errorf("invalid OSM ID: %w", err), a.window)
				return
			}
			client := backend.NewHTTPClient(a.cfg.BackendURL, nil)
			err = client.UploadMesh(context.Background(), scene.OSMID(id), a.session.Geometry(), "mesh_editor")
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			dialog.ShowInformation("Uploaded", "Replacement mesh stored.", a.window)
		}, a.window)
}
