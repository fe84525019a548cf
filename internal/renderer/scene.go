package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/scrollscene/internal/scene"
	"github.com/ivlev/scrollscene/internal/source"
	"github.com/ivlev/scrollscene/internal/system"
)

const (
	DefaultFOV = 75 * math.Pi / 180 // vertical

	// The geometry is a single panel on the z=0 plane facing +Z
	PanelHalfWidth  = 0.8
	PanelHalfHeight = 0.45

	gridStep     = 0.1
	gridLineHalf = 0.004
	ambient      = 0.12
)

// Background is the clear colour outside the panel
var Background = color.RGBA{R: 8, G: 8, B: 10, A: 255}

// Renderer ray-casts the scene panel from the snapshot camera and shades it
// with the snapshot lights.
type Renderer struct {
	Width, Height int
	FOV           float64

	// Backdrop is the panel albedo; nil draws a procedural grid
	Backdrop *source.Backdrop
	Pool     *system.ImagePool
}

func New(w, h int) *Renderer {
	return &Renderer{Width: w, Height: h, FOV: DefaultFOV, Pool: system.NewImagePool()}
}

// View is the camera basis used for one frame
type View struct {
	Eye     mgl64.Vec3
	Orient  mgl64.Quat
	tanHalf float64
	aspect  float64
	w, h    int
}

// NewView builds the pinhole camera for a w x h frame. Rotation is applied
// in XYZ order; the camera looks down its local -Z.
func NewView(c scene.Camera, fov float64, w, h int) View {
	return View{
		Eye:     c.Position,
		Orient:  mgl64.AnglesToQuat(c.Rotation[0], c.Rotation[1], c.Rotation[2], mgl64.XYZ),
		tanHalf: math.Tan(fov / 2),
		aspect:  float64(w) / float64(h),
		w:       w,
		h:       h,
	}
}

// Ray returns the world direction through the centre of pixel x, y
func (v View) Ray(x, y int) mgl64.Vec3 {
	nx := (2*(float64(x)+0.5)/float64(v.w) - 1) * v.aspect * v.tanHalf
	ny := (1 - 2*(float64(y)+0.5)/float64(v.h)) * v.tanHalf
	return v.Orient.Rotate(mgl64.Vec3{nx, ny, -1}.Normalize())
}

// Project maps a world point to pixel coordinates. ok is false behind the
// camera.
func (v View) Project(p mgl64.Vec3) (x, y float64, ok bool) {
	local := v.Orient.Inverse().Rotate(p.Sub(v.Eye))
	if local[2] >= 0 {
		return 0, 0, false
	}
	nx := local[0] / -local[2] / (v.aspect * v.tanHalf)
	ny := local[1] / -local[2] / v.tanHalf
	x = (nx + 1) / 2 * float64(v.w)
	y = (1 - ny) / 2 * float64(v.h)
	return x, y, true
}

// shadedLight is a light with its colour parsed once per frame
type shadedLight struct {
	scene.Light
	rgb colorful.Color
}

// Render draws one frame of snap at time t (seconds, drives the float
// effect). The frame comes from the pool; callers return it with Pool.Put.
func (r *Renderer) Render(snap scene.Snapshot, t float64) *image.RGBA {
	img := r.Pool.Get(r.Width, r.Height)
	view := NewView(snap.Camera, r.fov(), r.Width, r.Height)
	lights := prepareLights(snap.Lights, snap.Toggles.EnableColoredLights)
	panelZ := floatOffset(snap.Float, t)

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			img.SetRGBA(x, y, r.shadePixel(view, x, y, panelZ, lights, snap.Toggles))
		}
	}

	if snap.Toggles.ShowLightHelpers {
		drawLightHelpers(img, view, lights)
	}
	if snap.Toggles.ShowRotationAxis {
		drawAxis(img, view)
	}
	return img
}

func (r *Renderer) fov() float64 {
	if r.FOV <= 0 {
		return DefaultFOV
	}
	return r.FOV
}

func (r *Renderer) shadePixel(view View, x, y int, panelZ float64, lights []shadedLight, tg scene.Toggles) color.RGBA {
	dir := view.Ray(x, y)
	if dir[2] >= 0 {
		return Background
	}
	dist := (panelZ - view.Eye[2]) / dir[2]
	if dist <= 0 {
		return Background
	}
	hit := view.Eye.Add(dir.Mul(dist))
	if math.Abs(hit[0]) > PanelHalfWidth || math.Abs(hit[1]) > PanelHalfHeight {
		return Background
	}

	u := (hit[0] + PanelHalfWidth) / (2 * PanelHalfWidth)
	v := 1 - (hit[1]+PanelHalfHeight)/(2*PanelHalfHeight)
	ar, ag, ab := r.albedo(u, v, hit, tg.ShowWireframe)

	lr, lg, lb := ambient, ambient, ambient
	for i := range lights {
		cr, cg, cb := lights[i].contribution(hit)
		lr += cr
		lg += cg
		lb += cb
	}

	return color.RGBA{R: toByte(ar * lr), G: toByte(ag * lg), B: toByte(ab * lb), A: 255}
}

func (r *Renderer) albedo(u, v float64, hit mgl64.Vec3, wireframe bool) (float64, float64, float64) {
	if r.Backdrop != nil {
		return r.Backdrop.Sample(u, v)
	}
	if wireframe && (onGrid(hit[0]) || onGrid(hit[1])) {
		return 1, 1, 1
	}
	return 0.55, 0.55, 0.58
}

func onGrid(c float64) bool {
	m := math.Mod(math.Abs(c), gridStep)
	return m < gridLineHalf || gridStep-m < gridLineHalf
}

// floatOffset bobs the panel along Z while the float effect is on
func floatOffset(f scene.FloatEffect, t float64) float64 {
	if !f.Enabled {
		return 0
	}
	return math.Sin(t*f.Speed) * f.Range * f.Factor * 0.1
}

func prepareLights(ls []scene.Light, colored bool) []shadedLight {
	out := make([]shadedLight, 0, len(ls))
	for _, l := range ls {
		if !l.Enabled || l.Intensity <= 0 {
			continue
		}
		rgb := colorful.Color{R: 1, G: 1, B: 1}
		if colored {
			if c, err := colorful.Hex(l.Color); err == nil {
				rgb = c
			}
		}
		out = append(out, shadedLight{Light: l, rgb: rgb})
	}
	return out
}

// contribution is the diffuse light reaching the panel point p (normal +Z)
func (l *shadedLight) contribution(p mgl64.Vec3) (float64, float64, float64) {
	var k float64
	switch l.Type {
	case scene.LightDirectional:
		dir := l.direction()
		k = math.Max(0, -dir[2])
	case scene.LightPoint, scene.LightSpot:
		toLight := l.Position.Sub(p)
		d := toLight.Len()
		if d < 1e-9 {
			return 0, 0, 0
		}
		k = math.Max(0, toLight[2]/d) * attenuation(d, l.Distance, l.Decay)
		if l.Type == scene.LightSpot {
			k *= l.cone(toLight.Mul(-1 / d))
		}
	}
	k *= l.Intensity
	return l.rgb.R * k, l.rgb.G * k, l.rgb.B * k
}

// attenuation uses a smooth cut-off window at distance (0 means unlimited)
func attenuation(d, distance, decay float64) float64 {
	if decay <= 0 {
		decay = 1
	}
	a := 1 / (1 + math.Pow(d, decay))
	if distance > 0 {
		w := clamp01(1 - math.Pow(d/distance, 4))
		a *= w * w
	}
	return a
}

func (l *shadedLight) direction() mgl64.Vec3 {
	if l.Direction != nil && l.Direction.Len() > 0 {
		return l.Direction.Normalize()
	}
	target := mgl64.Vec3{}
	if l.Target != nil {
		target = *l.Target
	}
	d := target.Sub(l.Position)
	if d.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// cone returns the spot falloff for a ray leaving the light along rayDir
func (l *shadedLight) cone(rayDir mgl64.Vec3) float64 {
	angle := l.Angle
	if angle <= 0 {
		angle = math.Pi / 3
	}
	cosTheta := rayDir.Dot(l.direction())
	outer := math.Cos(angle)
	inner := math.Cos(angle * (1 - clamp01(l.Penumbra)))
	return smoothstep(outer, inner, cosTheta)
}

func drawLightHelpers(img *image.RGBA, view View, lights []shadedLight) {
	for _, l := range lights {
		x, y, ok := view.Project(l.Position)
		if !ok {
			continue
		}
		c := color.RGBA{R: toByte(l.rgb.R), G: toByte(l.rgb.G), B: toByte(l.rgb.B), A: 255}
		fillSquare(img, int(x), int(y), 2, c)
	}
}

func drawAxis(img *image.RGBA, view View) {
	axes := []struct {
		dir mgl64.Vec3
		c   color.RGBA
	}{
		{mgl64.Vec3{0.2, 0, 0}, color.RGBA{255, 60, 60, 255}},
		{mgl64.Vec3{0, 0.2, 0}, color.RGBA{60, 255, 60, 255}},
		{mgl64.Vec3{0, 0, 0.2}, color.RGBA{60, 60, 255, 255}},
	}
	for _, a := range axes {
		for i := 0; i <= 32; i++ {
			x, y, ok := view.Project(a.dir.Mul(float64(i) / 32))
			if ok {
				fillSquare(img, int(x), int(y), 0, a.c)
			}
		}
	}
}

func fillSquare(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	rect := image.Rect(cx-r, cy-r, cx+r+1, cy+r+1).Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x >= edge0 {
			return 1
		}
		return 0
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func toByte(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
