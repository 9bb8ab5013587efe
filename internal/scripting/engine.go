package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine owns one sandboxed LState and dispatches hooks into it.
// Calls are serialised; an Engine may be shared by one Session's listeners.
type Engine struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	logger *zap.Logger

	// Toast is injected after construction. nil = engine.toast is a no-op.
	Toast func(message string)
}

// NewEngine creates an Engine with the engine.* module registered.
//
// Precondition: logger must be non-nil. instLimit <= 0 uses DefaultInstructionLimit.
func NewEngine(instLimit int, logger *zap.Logger) *Engine {
	e := &Engine{L: NewSandboxedState(), limit: instLimit, logger: logger}
	e.registerModules()
	return e
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Postcondition: Returns an error naming the first file that fails to load.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, ent := range entries {
		if !ent.IsDir() && filepath.Ext(ent.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Strings(files)

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", path, err)
		}
		if err := e.LoadString(path, string(src)); err != nil {
			return err
		}
	}
	e.logger.Info("scripts loaded", zap.String("dir", dir), zap.Int("files", len(files)))
	return nil
}

// LoadString executes src as a chunk named name.
func (e *Engine) LoadString(name, src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn, err := e.L.LoadString(src)
	if err != nil {
		return fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	err = RunLimited(e.L, e.limit, func() error {
		e.L.Push(fn)
		return e.L.PCall(0, lua.MultRet, nil)
	})
	if err != nil {
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	return nil
}

// HasHook reports whether a global function named hook is defined.
func (e *Engine) HasHook(hook string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.L.GetGlobal(hook).Type() == lua.LTFunction
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined. Lua runtime errors are logged at Warn level and never
// propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (e *Engine) CallHook(hook string, args ...lua.LValue) lua.LValue {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil
	}
	top := e.L.GetTop()
	err := RunLimited(e.L, e.limit, func() error {
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		e.L.SetTop(top)
		e.logger.Warn("scripting: Lua runtime error", zap.String("hook", hook), zap.Error(err))
		return lua.LNil
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)
	return ret
}

// Close releases the VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}
