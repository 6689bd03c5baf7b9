// Package raylib implements render.Backend on top of
// gen2brain/raylib-go, the graphics library SPEC_FULL.md's Domain
// Stack names (and the teacher's own choice of backend). Window
// lifecycle and per-command drawing follow the teacher's
// RaylibRenderer (Init/BeginFrame/EndFrame/RenderFrame), narrowed to
// the smaller render.Backend V-table: this package no longer walks
// KRB or computes layout itself — render.Emitter does that once,
// backend-agnostically, and hands this package a finished command
// buffer to execute.
package raylib

import (
	"errors"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kryonlabs/kryon-runtime/render"
	"github.com/kryonlabs/kryon-runtime/runtime"
)

var errWindowInit = errors.New("raylib backend: InitWindow failed or window is not ready")

const baseFontSize = 18.0

// Backend is the raylib-backed render.Backend.
type Backend struct {
	width, height int
	focused       bool
}

// New creates an unopened backend; call Open to create the window.
func New() *Backend { return &Backend{} }

// Open creates the raylib window, mirroring RaylibRenderer.Init's
// resizable/target-FPS setup.
func (b *Backend) Open(title string, width, height int, resizable bool) error {
	b.width, b.height = width, height
	log.Printf("raylib backend: opening window %dx%d %q", width, height, title)
	rl.InitWindow(int32(width), int32(height), title)
	if resizable {
		rl.SetWindowState(rl.FlagWindowResizable)
	} else {
		rl.ClearWindowState(rl.FlagWindowResizable)
	}
	rl.SetTargetFPS(60)
	if !rl.IsWindowReady() {
		return errWindowInit
	}
	b.focused = rl.IsWindowFocused()
	return nil
}

func (b *Backend) BeginFrame() error {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 30, 255))
	return nil
}

func (b *Backend) ExecuteCommands(cmds []render.Command) error {
	for _, c := range cmds {
		switch c.Kind {
		case render.CmdDrawRect:
			rl.DrawRectangle(int32(c.X), int32(c.Y), int32(c.W), int32(c.H), rl.NewColor(c.Color[0], c.Color[1], c.Color[2], c.Color[3]))
		case render.CmdDrawText:
			size := c.FontSize
			if size == 0 {
				size = baseFontSize
			}
			rl.DrawText(c.Text, int32(c.X), int32(c.Y), int32(size), rl.NewColor(c.Color[0], c.Color[1], c.Color[2], c.Color[3]))
		}
	}
	return nil
}

func (b *Backend) EndFrame() error {
	rl.EndDrawing()
	return nil
}

func (b *Backend) MeasureTextWidth(text string, fontSize float32) float32 {
	if fontSize == 0 {
		fontSize = baseFontSize
	}
	return float32(rl.MeasureText(text, int32(fontSize)))
}

func (b *Backend) SetCursor(hint string) {
	switch hint {
	case "pointer":
		rl.SetMouseCursor(rl.MouseCursorPointingHand)
	default:
		rl.SetMouseCursor(rl.MouseCursorDefault)
	}
}

// ShouldClose reports whether the window's close button/Esc was hit,
// the poll the cmd-level run loop checks each iteration.
func (b *Backend) ShouldClose() bool { return rl.WindowShouldClose() }

// Close releases the window.
func (b *Backend) Close() { rl.CloseWindow() }

// PollEvents drains raylib's own input state into push: pointer
// move/down/up, window resize (mirroring the teacher's
// RaylibRenderer.RenderFrame IsWindowResized check), window focus
// change, text input, and a key-down for the Ctrl+I inspector toggle.
// No other key-down events and no key-up events are pushed.
func (b *Backend) PollEvents(push func(runtime.Event)) {
	x, y := float32(rl.GetMouseX()), float32(rl.GetMouseY())
	push(runtime.Event{Type: runtime.EventPointerMove, X: x, Y: y})
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		push(runtime.Event{Type: runtime.EventPointerDown, X: x, Y: y})
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		push(runtime.Event{Type: runtime.EventPointerUp, X: x, Y: y})
	}

	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		b.width, b.height = w, h
		push(runtime.Event{Type: runtime.EventWindowResize, Width: w, Height: h})
	}

	if focused := rl.IsWindowFocused(); focused != b.focused {
		b.focused = focused
		push(runtime.Event{Type: runtime.EventWindowFocus, Focused: focused})
	}

	for r := rl.GetCharPressed(); r != 0; r = rl.GetCharPressed() {
		push(runtime.Event{Type: runtime.EventTextInput, Text: string(r)})
	}

	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	if ctrl && rl.IsKeyPressed(rl.KeyI) {
		push(runtime.Event{Type: runtime.EventKeyDown, Key: "ctrl+i"})
	}
}
