// Package render declares the contract of the embedded map-rendering engine.
//
// The engine owns tile loading, drawing, gesture recognition and style
// parsing. The coordinator only talks to it through these interfaces:
//
//   - View: the embedded rendering view and its host lifecycle calls
//   - Map: the live map handle delivered asynchronously by View.GetMapAsync
//   - Style: a loaded style, able to accept named images
//   - Manager: one annotation manager per overlay kind (lines, fills, symbols)
//   - LocationComponent: the engine's user-location puck
//
// Engine callbacks may arrive on any goroutine. Implementations must not hold
// internal locks while invoking listeners.
package render
