package coordinator

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/mapbridge/internal/model"
)

// TransactionCode selects a raw transport operation.
type TransactionCode int

// Known transaction codes. Payloads are JSON documents; codes without a
// payload ignore it.
const (
	TransactClear                 TransactionCode = 1 // no payload
	TransactStopAnimation         TransactionCode = 2 // no payload
	TransactSetMapType            TransactionCode = 3 // {"map_type": "satellite"}
	TransactSetMyLocationEnabled  TransactionCode = 4 // {"enabled": true}
	TransactResetMinMaxZoom       TransactionCode = 5 // no payload
	TransactSetContentDescription TransactionCode = 6 // {"description": "..."}
	TransactMoveCamera            TransactionCode = 7 // {"lat": 0, "lng": 0, "zoom": 10}
	TransactSetWatermarkEnabled   TransactionCode = 8 // {"enabled": false}
)

type transactPayload struct {
	MapType     string   `json:"map_type"`
	Enabled     *bool    `json:"enabled"`
	Description string   `json:"description"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Zoom        *float64 `json:"zoom"`
}

// Transact handles a raw transport call. Unknown codes and malformed payloads
// are logged and rejected with false; nothing is returned to the caller as an
// error.
func (c *Coordinator) Transact(code TransactionCode, payload []byte) bool {
	var p transactPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return c.rejectTransact(code, fmt.Errorf("decode payload: %w", err))
		}
	}

	switch code {
	case TransactClear:
		c.Clear()
	case TransactStopAnimation:
		c.StopAnimation()
	case TransactSetMapType:
		t, err := model.ParseMapType(p.MapType)
		if err != nil {
			return c.rejectTransact(code, err)
		}
		c.SetMapType(t)
	case TransactSetMyLocationEnabled:
		if p.Enabled == nil {
			return c.rejectTransact(code, fmt.Errorf("missing enabled"))
		}
		c.SetMyLocationEnabled(*p.Enabled)
	case TransactResetMinMaxZoom:
		c.ResetMinMaxZoomPreference()
	case TransactSetContentDescription:
		c.SetContentDescription(p.Description)
	case TransactMoveCamera:
		target := model.LatLng(p.Lat, p.Lng)
		if p.Zoom != nil {
			c.MoveCamera(model.NewLatLngZoom(target, *p.Zoom))
		} else {
			c.MoveCamera(model.NewLatLng(target))
		}
	case TransactSetWatermarkEnabled:
		if p.Enabled == nil {
			return c.rejectTransact(code, fmt.Errorf("missing enabled"))
		}
		c.SetWatermarkEnabled(*p.Enabled)
	default:
		c.log().Debug("transact [unknown]", "code", int(code), "size", len(payload))
		c.emitf(EventTransactRejected, "transact", "code=%d unknown", int(code))
		return false
	}
	return true
}

func (c *Coordinator) rejectTransact(code TransactionCode, err error) bool {
	c.log().Warn("transact rejected", "code", int(code), "error", err)
	c.emitf(EventTransactRejected, "transact", "code=%d %v", int(code), err)
	return false
}
