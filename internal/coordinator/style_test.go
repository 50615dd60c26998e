package coordinator

import (
	"image"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/testutil"
)

func TestStyle_MapTypeBeforeInit(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	c.SetMapType(model.MapTypeTerrain)
	assert.Empty(t, eng.Ops())
	assert.Equal(t, model.MapTypeTerrain, c.MapType())

	bringUp(t, c, eng)
	assert.Equal(t, []string{"style.set asset://styles/terrain.json"}, eng.OpsWithPrefix("style.set"))
}

func TestStyle_CustomJSON(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	assert.True(t, c.SetMapStyle(&model.MapStyleOptions{JSON: `{"layers":[]}`}))
	bringUp(t, c, eng)

	assert.True(t, c.SetMapStyle(nil))
	assert.Equal(t, []string{
		"style.set asset://styles/streets.json +json",
		"style.set asset://styles/streets.json",
	}, eng.OpsWithPrefix("style.set"))
}

func TestStyle_SwapResubmitsEveryKind(t *testing.T) {
	c, eng, rec := newTestCoordinator(t)
	bringUp(t, c, eng)
	c.AddPolyline(model.DefaultPolylineOptions())
	opts := model.DefaultMarkerOptions()
	opts.Icon = &model.BitmapDescriptor{Name: "pin", Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	c.AddMarker(opts)
	before := len(eng.Ops())

	c.SetMapType(model.MapTypeSatellite)
	require.True(t, eng.SignalStyleLoaded())

	assert.Equal(t, []string{
		"style.set asset://styles/satellite.json",
		"engine.style_loaded asset://styles/satellite.json",
		"style.image pin",
		"fill.resubmit 0",
		"line.resubmit 1",
		"symbol.resubmit 1",
	}, eng.Ops()[before:])
	assert.True(t, eng.Map().CurrentStyle().HasImage("pin"))
	applied := rec.OfKind(EventStyleApplied)
	assert.Equal(t, "asset://styles/satellite.json", applied[len(applied)-1].Subject)
	assert.Equal(t, PhaseLoaded, c.Phase())
}

func TestStyle_ResubmitFailureIsIsolated(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	c, eng, rec := newTestCoordinator(t, WithLogger(logger))
	bringUp(t, c, eng)
	eng.FailResubmit("line", true)

	c.SetMapType(model.MapTypeHybrid)
	require.True(t, eng.SignalStyleLoaded())

	assert.Equal(t, []string{"fill.resubmit 0"}, eng.OpsWithPrefix("fill.resubmit"))
	assert.Equal(t, []string{"line.resubmit failed"}, eng.OpsWithPrefix("line.resubmit"))
	assert.Equal(t, []string{"symbol.resubmit 0"}, eng.OpsWithPrefix("symbol.resubmit"))

	faults := rec.OfKind(EventResubmitFault)
	require.Len(t, faults, 1)
	assert.Equal(t, "line", faults[0].Subject)

	warns := logs.AtLevel(slog.LevelWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, "style resubmit failed", warns[0].Message)
	assert.Equal(t, "line", warns[0].Attrs["kind"])
	assert.Equal(t, "test-1", warns[0].Attrs["session"])
}

func TestBitmaps_BufferedUntilStyleReady(t *testing.T) {
	c, eng, rec := newTestCoordinator(t)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	c.AddBitmap("a", img)
	c.AddBitmap("b", img)
	c.AddBitmap("a", img)

	assert.Equal(t, 2, c.Stats().PendingBitmaps)
	assert.Len(t, rec.OfKind(EventBitmapQueued), 3)

	c.OnCreate(nil)
	require.True(t, eng.SignalMapReady())
	assert.Empty(t, eng.OpsWithPrefix("style.image"), "no upload before the style is ready")

	require.True(t, eng.SignalStyleLoaded())
	assert.Equal(t, []string{"style.image a", "style.image b"}, eng.OpsWithPrefix("style.image"))
	assert.Zero(t, c.Stats().PendingBitmaps)

	c.AddBitmap("c", img)
	assert.Equal(t, "style.image c", eng.OpsWithPrefix("style.image")[2])
	assert.Len(t, rec.OfKind(EventBitmapQueued), 3)
}

func TestBitmaps_NilImageIgnored(t *testing.T) {
	c, _, rec := newTestCoordinator(t)
	c.AddBitmap("empty", nil)
	assert.Zero(t, c.Stats().PendingBitmaps)
	assert.Empty(t, rec.OfKind(EventBitmapQueued))
}
