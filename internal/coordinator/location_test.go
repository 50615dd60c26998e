package coordinator

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/testutil"
)

func TestLocation_RequestAppliedAtLoaded(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	c.SetMyLocationEnabled(true)
	assert.True(t, c.IsMyLocationEnabled())
	assert.Empty(t, eng.Ops())

	bringUp(t, c, eng)

	ops := eng.Ops()
	assert.Equal(t, []string{
		"location.activate asset://styles/streets.json",
		"location.enable true",
	}, ops[len(ops)-2:])
	assert.True(t, eng.Map().Location().Enabled())
}

func TestLocation_ToggleWhenLoaded(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	bringUp(t, c, eng)

	c.SetMyLocationEnabled(true)
	c.SetMyLocationEnabled(false)

	assert.Equal(t, []string{"location.enable true", "location.enable false"}, eng.OpsWithPrefix("location.enable"))
	assert.False(t, c.IsMyLocationEnabled())
}

func TestLocation_PermissionDeniedDisablesTracking(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	c, eng, rec := newTestCoordinator(t, WithLogger(logger))
	eng.DenyLocationPermission(true)
	c.SetMyLocationEnabled(true)

	bringUp(t, c, eng)

	assert.Equal(t, []string{"location.denied"}, eng.OpsWithPrefix("location.denied"))
	assert.False(t, c.IsMyLocationEnabled())
	assert.Equal(t, PhaseLoaded, c.Phase(), "a permission fault is not fatal")

	faults := rec.OfKind(EventPermissionFault)
	require.Len(t, faults, 1)
	assert.Equal(t, "location", faults[0].Subject)

	warns := logs.AtLevel(slog.LevelWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, "location permission denied, disabling tracking", warns[0].Message)
}

func TestLocation_MyLocation(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	assert.Nil(t, c.MyLocation())

	bringUp(t, c, eng)
	assert.Nil(t, c.MyLocation())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	eng.SetLastLocation(&model.Location{Point: model.LatLng(48.1, 11.6), Accuracy: 5, Provider: "gps", Time: at})
	loc := c.MyLocation()
	require.NotNil(t, loc)
	assert.Equal(t, model.LatLng(48.1, 11.6), loc.Point)
	assert.Equal(t, "gps", loc.Provider)
}
