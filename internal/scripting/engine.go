package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoFunction reports that no loaded script defines the called global.
var ErrNoFunction = errors.New("lua function not defined")

// Engine wraps a single gopher-lua VM. Not safe for concurrent use; callers
// on several goroutines serialize access themselves.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua VM and loads scripts from scriptsDir: core/ first,
// then flavor/. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, sub := range []string{"core", "flavor"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("已載入 Lua 腳本", zap.String("file", path))
	}
	return nil
}

// HasFunction reports whether a global function of that name is loaded.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// FlavorText calls the Lua flavor_text(score) function. A nil return is an
// empty string; any other non-string return is an error. ctx cancels a
// running script.
func (e *Engine) FlavorText(ctx context.Context, score int) (string, error) {
	fn, ok := e.vm.GetGlobal("flavor_text").(*lua.LFunction)
	if !ok {
		return "", fmt.Errorf("flavor_text: %w", ErrNoFunction)
	}

	e.vm.SetContext(ctx)
	defer e.vm.RemoveContext()

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(score)); err != nil {
		return "", fmt.Errorf("lua flavor_text: %w", err)
	}

	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := ret.(type) {
	case lua.LString:
		return string(v), nil
	case *lua.LNilType:
		return "", nil
	default:
		return "", fmt.Errorf("lua flavor_text returned %s, want string", ret.Type())
	}
}

func (e *Engine) Close() {
	e.vm.Close()
}
