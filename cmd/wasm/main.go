//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/planemotion/planemotion/backend-go/internal/engine"
	"github.com/planemotion/planemotion/backend-go/internal/scene"
)

// resizeHandlePx is the screen-space pick radius for resize handles. It is
// divided by the zoom so handles feel the same size at every zoom level.
const resizeHandlePx = 8.0

const (
	buttonLeft   = 0
	buttonMiddle = 1
	buttonRight  = 2
)

var (
	eng *engine.Engine

	// Last known pointer position in world coordinates, used for the
	// connection preview line.
	mouseWx, mouseWy float64
)

func main() {
	eng = engine.New()

	editor := js.Global().Get("Object").New()

	// --- Pointer events (screen coordinates) ---
	editor.Set("pointerDown", js.FuncOf(pointerDown))
	editor.Set("pointerMove", js.FuncOf(pointerMove))
	editor.Set("pointerUp", js.FuncOf(pointerUp))
	editor.Set("wheel", js.FuncOf(wheel))

	// --- Commands ---
	editor.Set("createCircle", js.FuncOf(createCircle))
	editor.Set("createRectangle", js.FuncOf(createRectangle))
	editor.Set("createTrapezoid", js.FuncOf(createTrapezoid))
	editor.Set("deleteSelected", js.FuncOf(deleteSelected))
	editor.Set("scaleSelected", js.FuncOf(scaleSelected))
	editor.Set("rotateSelected", js.FuncOf(rotateSelected))
	editor.Set("cancelConnection", js.FuncOf(cancelConnection))
	editor.Set("resetViewport", js.FuncOf(resetViewport))
	editor.Set("clearScene", js.FuncOf(clearScene))
	editor.Set("loadDocument", js.FuncOf(loadDocument))

	// --- Queries ---
	editor.Set("frame", js.FuncOf(frame))
	editor.Set("getDocument", js.FuncOf(getDocument))
	editor.Set("status", js.FuncOf(status))

	js.Global().Set("planemotionEditor", editor)
	js.Global().Set("planemotionWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func trackMouse(sx, sy float64) {
	mouseWx, mouseWy = eng.ScreenToWorld(sx, sy)
}

// --- Pointer Handlers ---

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	button := args[0].Int()
	sx, sy := args[1].Float(), args[2].Float()
	trackMouse(sx, sy)

	switch button {
	case buttonLeft:
		eng.RecordLastClick(mouseWx, mouseWy)
		threshold := resizeHandlePx / eng.Viewport().Zoom()
		if eng.StartResize(mouseWx, mouseWy, threshold) {
			return nil
		}
		if eng.StartDrag(mouseWx, mouseWy) {
			return nil
		}
		eng.SelectAt(mouseWx, mouseWy)
	case buttonMiddle:
		eng.StartPan(sx, sy)
	case buttonRight:
		eng.StartConnectionAt(mouseWx, mouseWy)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	sx, sy := args[0].Float(), args[1].Float()
	trackMouse(sx, sy)

	switch {
	case eng.IsDragging():
		eng.UpdateDrag(mouseWx, mouseWy)
	case eng.IsResizing():
		eng.UpdateResize(mouseWx, mouseWy)
	case eng.IsPanning():
		eng.UpdatePan(sx, sy)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	switch args[0].Int() {
	case buttonLeft:
		eng.StopDrag()
		eng.StopResize()
	case buttonMiddle:
		eng.StopPan()
	}
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	deltaY := args[0].Float()
	sx, sy := args[1].Float(), args[2].Float()

	// Wheel up zooms in
	eng.ZoomViewport(-deltaY, sx, sy)
	trackMouse(sx, sy)
	return nil
}

// --- Command Handlers ---

func shapeAtArgs(args []js.Value) (float64, float64, bool) {
	if len(args) >= 2 {
		return args[0].Float(), args[1].Float(), true
	}
	if p, ok := eng.LastClick(); ok {
		return p.X, p.Y, true
	}
	return 0, 0, false
}

func createCircle(this js.Value, args []js.Value) interface{} {
	if x, y, ok := shapeAtArgs(args); ok {
		eng.CreateCircle(x, y)
	}
	return nil
}

func createRectangle(this js.Value, args []js.Value) interface{} {
	if x, y, ok := shapeAtArgs(args); ok {
		eng.CreateRectangle(x, y)
	}
	return nil
}

func createTrapezoid(this js.Value, args []js.Value) interface{} {
	if x, y, ok := shapeAtArgs(args); ok {
		eng.CreateTrapezoid(x, y)
	}
	return nil
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DeleteSelected())
}

func scaleSelected(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.ScaleSelected(args[0].Float())
	return nil
}

func rotateSelected(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.RotateSelected(args[0].Float())
	return nil
}

func cancelConnection(this js.Value, args []js.Value) interface{} {
	eng.CancelConnection()
	return nil
}

func resetViewport(this js.Value, args []js.Value) interface{} {
	eng.ResetViewport()
	return nil
}

func clearScene(this js.Value, args []js.Value) interface{} {
	eng.ClearScene()
	return nil
}

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	s, err := scene.Unmarshal([]byte(args[0].String()))
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	eng.SetScene(s)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func frame(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.FrameJSON(mouseWx, mouseWy))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := scene.Marshal(eng.Scene())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(string(data))
}

func status(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Status())
}
