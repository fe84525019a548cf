package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scrollscene/internal/effects"
	"github.com/ivlev/scrollscene/internal/scene"
	"github.com/ivlev/scrollscene/internal/source"
)

func TestViewCentreRay(t *testing.T) {
	v := NewView(scene.Camera{Position: mgl64.Vec3{0, 0, 1}}, DefaultFOV, 100, 100)

	// Even-sized frame: the centre sits between pixels 49 and 50
	d := v.Ray(49, 49).Add(v.Ray(50, 50)).Normalize()
	if d.Sub(mgl64.Vec3{0, 0, -1}).Len() > 1e-9 {
		t.Errorf("Expected centre ray along -Z, got %v", d)
	}

	// Turning the camera left by 90 degrees about Y looks down -X
	turned := NewView(scene.Camera{Rotation: mgl64.Vec3{0, math.Pi / 2, 0}}, DefaultFOV, 100, 100)
	d = turned.Ray(49, 49).Add(turned.Ray(50, 50)).Normalize()
	if d.Sub(mgl64.Vec3{-1, 0, 0}).Len() > 1e-9 {
		t.Errorf("Expected centre ray along -X, got %v", d)
	}
}

func TestViewProject(t *testing.T) {
	cam := scene.Camera{Position: mgl64.Vec3{0.06, 0.04, 0.51}, Rotation: mgl64.Vec3{-0.09, 0.13, 0.01}}
	v := NewView(cam, DefaultFOV, 320, 180)

	for _, px := range [][2]int{{10, 10}, {160, 90}, {300, 170}} {
		dir := v.Ray(px[0], px[1])
		p := cam.Position.Add(dir.Mul(2))
		x, y, ok := v.Project(p)
		if !ok {
			t.Fatalf("pixel %v projected behind the camera", px)
		}
		if math.Abs(x-float64(px[0])-0.5) > 1e-6 || math.Abs(y-float64(px[1])-0.5) > 1e-6 {
			t.Errorf("pixel %v round-tripped to %.3f, %.3f", px, x, y)
		}
	}

	if _, _, ok := v.Project(cam.Position.Add(mgl64.Vec3{0, 0, 5})); ok {
		t.Error("A point behind the camera must not project")
	}
}

func TestRenderDefaultScene(t *testing.T) {
	st := scene.NewState()
	r := New(160, 90)

	img := r.Render(st.Snapshot(), 0)
	defer r.Pool.Put(img)

	if img.Bounds() != image.Rect(0, 0, 160, 90) {
		t.Fatalf("Unexpected bounds %v", img.Bounds())
	}
	centre := img.RGBAAt(80, 45)
	if centre == Background {
		t.Error("The panel should fill the centre of the default view")
	}
	t.Logf("centre pixel: %v", centre)
}

func TestRenderLightsBrighten(t *testing.T) {
	st := scene.NewState()
	r := New(64, 36)

	lit := r.Render(st.Snapshot(), 0)
	litCentre := lit.RGBAAt(32, 18)
	r.Pool.Put(lit)

	st.EachLight(func(l *scene.Light) { l.Enabled = false })
	dark := r.Render(st.Snapshot(), 0)
	darkCentre := dark.RGBAAt(32, 18)

	if sum(litCentre) <= sum(darkCentre) {
		t.Errorf("Lights should brighten the panel: lit=%v dark=%v", litCentre, darkCentre)
	}
}

func TestRenderBackdrop(t *testing.T) {
	bd := &source.Backdrop{Image: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	for i := range bd.Image.Pix {
		bd.Image.Pix[i] = 255
	}

	st := scene.NewState()
	st.UpdateToggles(func(tg *scene.Toggles) { tg.EnableColoredLights = false })
	r := New(64, 36)
	r.Backdrop = bd

	img := r.Render(st.Snapshot(), 0)
	c := img.RGBAAt(32, 18)
	if c.R != c.G || c.G != c.B {
		t.Errorf("White backdrop under white lights should be grey, got %v", c)
	}
}

func TestPrepareLights(t *testing.T) {
	ls := []scene.Light{
		{ID: "a", Type: scene.LightPoint, Enabled: true, Intensity: 1, Color: "#ff0000"},
		{ID: "b", Type: scene.LightPoint, Enabled: false, Intensity: 1, Color: "#00ff00"},
		{ID: "c", Type: scene.LightPoint, Enabled: true, Intensity: 0, Color: "#0000ff"},
		{ID: "d", Type: scene.LightPoint, Enabled: true, Intensity: 1, Color: "not-a-colour"},
	}

	got := prepareLights(ls, true)
	if len(got) != 2 {
		t.Fatalf("Expected 2 active lights, got %d", len(got))
	}
	if got[0].rgb.R != 1 || got[0].rgb.G != 0 {
		t.Errorf("Expected red, got %v", got[0].rgb)
	}
	if got[1].rgb.R != 1 || got[1].rgb.G != 1 || got[1].rgb.B != 1 {
		t.Errorf("Invalid colour should fall back to white, got %v", got[1].rgb)
	}

	plain := prepareLights(ls, false)
	if plain[0].rgb.G != 1 {
		t.Error("Colored lights disabled should render white")
	}
}

func TestLightContribution(t *testing.T) {
	p := mgl64.Vec3{}

	point := shadedLight{Light: scene.Light{Type: scene.LightPoint, Position: mgl64.Vec3{0, 0, 1}, Intensity: 1, Decay: 1}}
	point.rgb.R, point.rgb.G, point.rgb.B = 1, 1, 1
	r, _, _ := point.contribution(p)
	if math.Abs(r-0.5) > 1e-9 {
		t.Errorf("Point light at distance 1 should give 0.5, got %f", r)
	}

	below := point
	below.Position = mgl64.Vec3{0, 0, -1}
	if r, _, _ := below.contribution(p); r != 0 {
		t.Errorf("Light behind the panel must not contribute, got %f", r)
	}

	cut := point
	cut.Distance = 0.5
	if r, _, _ := cut.contribution(p); r != 0 {
		t.Errorf("Light beyond its distance must not contribute, got %f", r)
	}

	spot := point
	spot.Type = scene.LightSpot
	spot.Angle = math.Pi / 6
	spot.Target = &mgl64.Vec3{5, 0, 1} // aimed away from p
	if r, _, _ := spot.contribution(p); r != 0 {
		t.Errorf("Spot aimed away must not contribute, got %f", r)
	}
	spot.Target = &mgl64.Vec3{}
	if r, _, _ := spot.contribution(p); math.Abs(r-0.5) > 1e-9 {
		t.Errorf("Spot aimed at p should match the point light, got %f", r)
	}

	dir := point
	dir.Type = scene.LightDirectional
	dir.Direction = &mgl64.Vec3{0, 0, -2}
	if r, _, _ := dir.contribution(p); math.Abs(r-1) > 1e-9 {
		t.Errorf("Directional light straight down should give 1, got %f", r)
	}
}

func TestFloatOffset(t *testing.T) {
	if floatOffset(scene.FloatEffect{}, 3) != 0 {
		t.Error("Disabled float effect must not move the panel")
	}
	f := scene.FloatEffect{Enabled: true, Speed: 1, Factor: 1, Range: 1}
	if got := floatOffset(f, math.Pi/2); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("Expected peak offset 0.1, got %f", got)
	}
}

func TestTerminalDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(8, 5)

	grid := &effects.Grid{Cols: 2, Rows: 2, CellSize: 4, Cells: []effects.Cell{
		{Glyph: 'A', Color: color.RGBA{255, 0, 0, 255}},
		{Glyph: 'B', Color: color.RGBA{0, 255, 0, 255}},
		{Glyph: 'C', Color: color.RGBA{0, 0, 255, 255}},
		{Glyph: 0},
	}}

	term := NewTerminal(screen)
	if cols, rows := term.Viewport(); cols != 8 || rows != 4 {
		t.Fatalf("Expected 8x4 viewport, got %dx%d", cols, rows)
	}
	term.Draw(grid)
	term.Status("p=%.2f", 0.5)
	term.Show()

	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, 'A'}, {3, 1, 'A'}, {4, 0, 'B'}, {7, 1, 'B'},
		{0, 2, 'C'}, {7, 3, ' '}, {0, 4, 'p'}, {7, 4, ' '},
	}
	for _, tt := range tests {
		mainc, _, _, _ := screen.GetContent(tt.x, tt.y)
		if mainc != tt.want {
			t.Errorf("(%d,%d): expected %q, got %q", tt.x, tt.y, tt.want, mainc)
		}
	}

	_, _, style, _ := screen.GetContent(0, 0)
	fg, _, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("Expected red foreground, got %v", fg)
	}
}

func sum(c color.RGBA) int {
	return int(c.R) + int(c.G) + int(c.B)
}
