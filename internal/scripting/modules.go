package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules defines the engine global:
//
//	engine.toast(message)        show a message to the player
//	engine.log(message [, level]) write to the engine log; level is debug|info|warn
func (e *Engine) registerModules() {
	L := e.L
	engine := L.NewTable()
	L.SetField(engine, "toast", L.NewFunction(e.luaToast))
	L.SetField(engine, "log", L.NewFunction(e.luaLog))
	L.SetGlobal("engine", engine)
}

func (e *Engine) luaToast(L *lua.LState) int {
	msg := L.CheckString(1)
	if e.Toast != nil {
		e.Toast(msg)
	}
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	msg := L.CheckString(1)
	field := zap.String("source", "lua")
	switch L.OptString(2, "info") {
	case "debug":
		e.logger.Debug(msg, field)
	case "warn":
		e.logger.Warn(msg, field)
	default:
		e.logger.Info(msg, field)
	}
	return 0
}
