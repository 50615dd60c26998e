// Package coordinator adapts a generic interactive-map surface onto an
// embedded rendering engine.
//
// The Coordinator accepts map operations (camera moves, overlays, style
// changes, listener registration) at any time, including before the engine
// finished its asynchronous startup, and applies them once the engine is ready.
//
// READINESS:
//
// A map instance moves strictly forward through
//
//	New -> Created -> Initialized -> StyleReady -> Loaded
//
// and to Destroyed on teardown. Re-creating after Destroyed starts a fresh
// sequence. Each operation is gated on one phase:
//
//   - camera commands, zoom preferences, UI settings: Initialized
//   - overlay attachment, bitmap upload: StyleReady (per-kind manager present)
//   - location tracking, the loaded callback: Loaded
//
// Operations issued earlier are buffered: camera commands in an ordered
// command queue, overlays in a per-kind pending list, zoom preferences in
// last-write-wins fields, bitmaps by name. Buffers drain in submission order
// at the matching transition and never replay twice.
//
// LOCKING:
//
// One mutex guards the state machine, the camera queue and every pending and
// live index. Overlay attachment happens under the lock so a primitive is
// always either pending or live. Camera commands, style loads and every
// caller callback run outside it; the engine may call back synchronously.
//
// ERRORS:
//
// Nothing here is fatal. Caller callbacks run behind a recover guard, location
// permission faults disable tracking, ground and tile overlays are inert, and
// unknown transport codes are rejected. Faults are logged with log/slog and
// offered to the Recorder.
//
// Buffered work is retained indefinitely when the engine never becomes ready.
// There is no timeout and no cap.
package coordinator
