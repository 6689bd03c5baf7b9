// Package app holds the main loop. The loop itself talks to the
// backend only through render.Backend-style calls, but Run imports
// render/raylib and constructs the raylib backend itself; it does not
// take a backend from its caller.
package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kryonlabs/kryon-runtime/inspector"
	"github.com/kryonlabs/kryon-runtime/metrics"
	"github.com/kryonlabs/kryon-runtime/render"
	"github.com/kryonlabs/kryon-runtime/render/raylib"
	"github.com/kryonlabs/kryon-runtime/runtime"
	lua "github.com/kryonlabs/kryon-runtime/script/lua"
)

// variableBridge adapts runtime.VariableRegistry to lua.ElementBridge,
// the narrow surface a script body may call back into.
type variableBridge struct {
	rt *runtime.Runtime
}

func (b variableBridge) GetVariable(name string) (string, bool) { return b.rt.Variables.Get(name) }
func (b variableBridge) SetVariable(name, value string)         { b.rt.Variables.Set(name, value) }

// Options configures one Run invocation.
type Options struct {
	KRBFilePath    string
	DebugInspector bool
}

// Run loads a KRYN file, opens a raylib window sized from its App
// element, and drives the update/layout/render loop until the window
// is closed (§5's per-frame ordering: drain events, advance lifecycle,
// re-expand directives if dirty, layout, emit and execute commands).
func Run(opts Options) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	file, err := os.Open(opts.KRBFilePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.KRBFilePath, err)
	}
	defer file.Close()

	rt, err := runtime.Load(file)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.KRBFilePath, err)
	}
	rt.Config.DebugInspector = opts.DebugInspector

	it := lua.New(variableBridge{rt: rt})
	defer it.Close()
	rt.Interpreter = it
	if err := rt.LoadScripts(); err != nil {
		log.Printf("WARN: %v", err)
	}

	rt.Metrics = metrics.New(prometheus.NewRegistry())
	rt.RegisterCustomComponent("TabBar", runtime.NewTabBarHandler())

	insp := inspector.New()
	rt.Inspector = insp
	if opts.DebugInspector {
		rt.ToggleInspector()
	}

	backend := raylib.New()
	if err := backend.Open(rt.Config.Title, rt.Config.Width, rt.Config.Height, rt.Config.Resizable); err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	defer backend.Close()

	queue := runtime.NewEventQueue()
	emitter := render.NewEmitter(rt)

	log.Println("Entering main loop...")
	for !backend.ShouldClose() {
		frameStart := time.Now()

		backend.PollEvents(queue.Push)

		rt.Dispatch(queue)
		rt.Update()
		insp.Capture()

		cmds := emitter.Run(rt.Root, backend)
		backend.SetCursor(rt.CursorHint)

		if err := backend.BeginFrame(); err != nil {
			return err
		}
		if err := backend.ExecuteCommands(cmds); err != nil {
			return err
		}
		if err := backend.EndFrame(); err != nil {
			return err
		}
		rt.Metrics.ObserveFrame(time.Since(frameStart).Seconds())
	}

	rt.Shutdown()
	log.Println("Exiting.")
	return nil
}
