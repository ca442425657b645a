package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/vec"
)

const eps = 1e-9

func newInitialized(t *testing.T) *Controller {
	t.Helper()
	c := New(DefaultOptions(), nil)
	require.True(t, c.Initialize(Rect{X: 0, Y: 0, Width: 1000, Height: 1000}, Size{Width: 800, Height: 600}))
	return c
}

func TestInitializeFitTransform(t *testing.T) {
	c := newInitialized(t)

	tr := c.Transform()
	assert.Equal(t, 1.1, tr.Scale)
	assert.InDelta(t, 400-500*1.1, tr.TranslateX, eps)
	assert.InDelta(t, 300-500*1.1, tr.TranslateY, eps)

	initial, ok := c.InitialTransform()
	require.True(t, ok)
	assert.Equal(t, tr, initial)
}

func TestInitializeNotMeasurable(t *testing.T) {
	c := New(DefaultOptions(), nil)

	assert.False(t, c.Initialize(Rect{}, Size{Width: 800, Height: 600}))
	assert.False(t, c.Initialize(Rect{Width: 10, Height: 10}, Size{}))
	assert.False(t, c.Initialized())
	assert.Equal(t, Identity, c.Transform())

	// reset before a scene exists is a no-op
	c.ResetView()
	assert.Equal(t, Identity, c.Transform())
}

func TestInitializeReplacesState(t *testing.T) {
	c := newInitialized(t)
	c.ActivateRegion("RO", Rect{X: 600, Y: 400, Width: 50, Height: 30})
	c.BeginPan(1, 1)

	require.True(t, c.Initialize(Rect{Width: 200, Height: 100}, Size{Width: 100, Height: 100}))

	_, ok := c.Selected()
	assert.False(t, ok)
	assert.False(t, c.Dragging())
	assert.InDelta(t, 50-100*1.1, c.Transform().TranslateX, eps)
}

func TestFitToContainer(t *testing.T) {
	opts := DefaultOptions()
	opts.FitToContainer = true
	c := New(opts, nil)
	require.True(t, c.Initialize(Rect{Width: 400, Height: 200}, Size{Width: 800, Height: 800}))
	assert.Equal(t, 2.0, c.Transform().Scale)

	// derived scale is still clamped
	require.True(t, c.Initialize(Rect{Width: 1, Height: 1}, Size{Width: 800, Height: 800}))
	assert.Equal(t, opts.ScaleMax, c.Transform().Scale)
}

func TestZoomScenario(t *testing.T) {
	c := New(DefaultOptions(), nil)
	c.Zoom(400, 300, ZoomIn)

	tr := c.Transform()
	assert.InDelta(t, 1.1, tr.Scale, eps)
	assert.InDelta(t, -40, tr.TranslateX, eps)
	assert.InDelta(t, -30, tr.TranslateY, eps)
}

func TestZoomKeepsPointUnderCursor(t *testing.T) {
	pointers := []vec.Vec2{{X: 0, Y: 0}, {X: 400, Y: 300}, {X: 17.5, Y: 593.25}, {X: -120, Y: 42}}
	for _, p := range pointers {
		for _, d := range []Direction{ZoomIn, ZoomOut} {
			c := newInitialized(t)
			c.BeginPan(0, 0)
			c.ContinuePan(33, -12)
			c.EndPan()

			before := c.Transform().ToScene(p)
			c.Zoom(p.X, p.Y, d)
			after := c.Transform().ToScene(p)

			assert.InDelta(t, before.X, after.X, 1e-9, "pointer %v dir %v", p, d)
			assert.InDelta(t, before.Y, after.Y, 1e-9, "pointer %v dir %v", p, d)
		}
	}
}

func TestZoomClampIdempotent(t *testing.T) {
	for _, d := range []Direction{ZoomIn, ZoomOut} {
		c := newInitialized(t)
		var prev Transform
		clamped := false
		for i := 0; i < 200; i++ {
			c.Zoom(123, 456, d)
			tr := c.Transform()
			if clamped {
				assert.Equal(t, prev, tr, "transform drifted at the bound (%v)", d)
			}
			if tr.Scale == DefaultOptions().ScaleMin || tr.Scale == DefaultOptions().ScaleMax {
				clamped = true
			}
			prev = tr
		}
		require.True(t, clamped, "never reached a bound zooming %v", d)
		assert.GreaterOrEqual(t, prev.Scale, DefaultOptions().ScaleMin)
		assert.LessOrEqual(t, prev.Scale, DefaultOptions().ScaleMax)
	}
}

func TestZoomScaleStaysInBounds(t *testing.T) {
	c := newInitialized(t)
	seq := []Direction{ZoomIn, ZoomIn, ZoomOut, ZoomIn, ZoomOut, ZoomOut, ZoomOut}
	for i := 0; i < 100; i++ {
		c.Zoom(float64(i), float64(2*i), seq[i%len(seq)])
		s := c.Transform().Scale
		assert.True(t, s >= 0.6 && s <= 8.0, "scale %g out of bounds", s)
	}
}

func TestPanAdditivity(t *testing.T) {
	stepwise := newInitialized(t)
	stepwise.BeginPan(10, 10)
	stepwise.ContinuePan(15, 7)  // d1 = (5, -3)
	stepwise.ContinuePan(27, 11) // d2 = (12, 4)
	stepwise.EndPan()

	combined := newInitialized(t)
	combined.BeginPan(10, 10)
	combined.ContinuePan(27, 11) // d1+d2
	combined.EndPan()

	assert.Equal(t, combined.Transform(), stepwise.Transform())
	assert.Equal(t, combined.Transform().Scale, 1.1)
}

func TestPanDuplicateMoveIsHarmless(t *testing.T) {
	c := newInitialized(t)
	start := c.Transform()
	c.BeginPan(0, 0)
	assert.True(t, c.ContinuePan(5, 5))
	assert.False(t, c.ContinuePan(5, 5))
	c.EndPan()

	assert.InDelta(t, start.TranslateX+5, c.Transform().TranslateX, eps)
	assert.InDelta(t, start.TranslateY+5, c.Transform().TranslateY, eps)
}

func TestContinuePanWithoutDrag(t *testing.T) {
	c := newInitialized(t)
	start := c.Transform()
	assert.False(t, c.ContinuePan(100, 100))
	c.EndPan()
	c.EndPan()
	assert.Equal(t, start, c.Transform())
}

func TestResetRestoresInitialExactly(t *testing.T) {
	c := newInitialized(t)
	want := c.Transform()

	c.BeginPan(3, 3)
	c.ContinuePan(91.3, -7.1)
	c.EndPan()
	c.Zoom(1, 2, ZoomIn)
	c.Zoom(300, 200, ZoomOut)
	c.ActivateRegion("de", Rect{X: 480, Y: 350, Width: 60, Height: 70})

	c.ResetView()
	assert.Equal(t, want, c.Transform())
}

func TestActivateThenDismiss(t *testing.T) {
	c := newInitialized(t)
	bbox := Rect{X: 600, Y: 400, Width: 50, Height: 30}
	c.ActivateRegion("RO", bbox)

	code, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "ro", code)

	focused := c.Transform()
	assert.Equal(t, 2.2, focused.Scale)
	assert.InDelta(t, 400-625*2.2, focused.TranslateX, eps)
	assert.InDelta(t, 300-415*2.2, focused.TranslateY, eps)
	assert.Equal(t, StateSelected, c.PresentationOf("ro"))

	c.Dismiss()
	_, ok = c.Selected()
	assert.False(t, ok)
	assert.Equal(t, focused, c.Transform())
	assert.Equal(t, StateDefault, c.PresentationOf("ro"))
}

func TestActivateUnknownRegion(t *testing.T) {
	c := newInitialized(t)
	before := c.Transform()

	c.ActivateRegion("xx", Rect{})

	code, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "xx", code)
	assert.Equal(t, before, c.Transform())
}

func TestSelectionSurvivesPanAndZoom(t *testing.T) {
	c := newInitialized(t)
	c.ActivateRegion("fr", Rect{X: 100, Y: 100, Width: 10, Height: 10})
	c.BeginPan(0, 0)
	c.ContinuePan(10, 10)
	c.EndPan()
	c.Zoom(5, 5, ZoomOut)

	code, ok := c.Selected()
	assert.True(t, ok)
	assert.Equal(t, "fr", code)
}

func TestZoomIndependentOfDrag(t *testing.T) {
	a := newInitialized(t)
	b := newInitialized(t)
	b.BeginPan(50, 50)

	a.Zoom(200, 100, ZoomIn)
	b.Zoom(200, 100, ZoomIn)

	assert.Equal(t, a.Transform(), b.Transform())
	assert.True(t, b.Dragging())
}

func TestHoverAndPresentation(t *testing.T) {
	c := newInitialized(t)
	c.Hover("PL")
	assert.Equal(t, StateHovered, c.PresentationOf("pl"))
	assert.Equal(t, StateDefault, c.PresentationOf(""))

	c.ActivateRegion("pl", Rect{X: 1, Y: 1, Width: 1, Height: 1})
	assert.Equal(t, StateSelected, c.PresentationOf("PL"))

	c.Hover("")
	assert.Equal(t, "", c.Hovered())
}

func TestSetColorModeLeavesTransform(t *testing.T) {
	c := newInitialized(t)
	before := c.Transform()
	c.SetColorMode(ColorIdeology)
	assert.Equal(t, ColorIdeology, c.ColorMode())
	assert.Equal(t, before, c.Transform())
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{TranslateX: -205, TranslateY: 12.5, Scale: 1.7}
	p := vec.Vec2{X: 333.3, Y: -71}
	s := tr.ToScreen(p)
	assert.InDelta(t, p.X*1.7-205, s.X, eps)
	assert.InDelta(t, p.Y*1.7+12.5, s.Y, eps)

	back := tr.ToScene(s)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	assert.Equal(t, "translate(-205, 12.5) scale(1.7)", tr.String())
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	bad := []func(*Options){
		func(o *Options) { o.ScaleMin = 0 },
		func(o *Options) { o.ScaleMin, o.ScaleMax = 5, 4 },
		func(o *Options) { o.FitScale = 100 },
		func(o *Options) { o.FocusScale = 0.1 },
		func(o *Options) { o.ZoomInFactor = 1 },
		func(o *Options) { o.ZoomOutFactor = 1.2 },
	}
	for i, mutate := range bad {
		o := DefaultOptions()
		mutate(&o)
		assert.Error(t, o.Validate(), "case %d", i)
	}
}

func TestDirectionAndColorMode(t *testing.T) {
	assert.Equal(t, ZoomOut, DirectionFromDelta(3))
	assert.Equal(t, ZoomIn, DirectionFromDelta(-1))
	assert.Equal(t, ZoomIn, DirectionFromDelta(0))

	m := ColorNeutral
	seen := map[ColorMode]bool{}
	for i := 0; i < int(numColorModes); i++ {
		seen[m] = true
		parsed, err := ParseColorMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
		m = m.Next()
	}
	assert.Equal(t, ColorNeutral, m)
	assert.Len(t, seen, int(numColorModes))

	_, err := ParseColorMode("rainbow")
	assert.Error(t, err)
}

func TestRectHelpers(t *testing.T) {
	r := RectFromPoints([]vec.Vec2{{X: 3, Y: 4}, {X: -1, Y: 10}, {X: 2, Y: 2}})
	assert.Equal(t, Rect{X: -1, Y: 2, Width: 4, Height: 8}, r)
	assert.True(t, r.Contains(vec.Vec2{X: 0, Y: 5}))
	assert.False(t, r.Contains(vec.Vec2{X: 0, Y: 11}))
	assert.True(t, Rect{}.Empty())

	u := r.Union(Rect{X: 10, Y: 10, Width: 1, Height: 1})
	assert.Equal(t, Rect{X: -1, Y: 2, Width: 12, Height: 9}, u)
	assert.Equal(t, r, Rect{}.Union(r))
	assert.False(t, math.IsNaN(u.Center().X))
}
