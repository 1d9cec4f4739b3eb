// Package lua lets Lua scripts listen for tap events.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. A global table "tap" is installed:
//
//	local id = tap.on("toolbar/save", "onTouchTap", function(ev)
//	    tap.log("saved at " .. ev.x .. "," .. ev.y)
//	    return false -- stop propagation
//	end)
//	tap.off(id)
//
// The event table carries type, id, source, target, current, phase, x and y.
// Returning false from a listener stops propagation; any other return value,
// including none, lets it continue.
//
// gopher-lua states are single-threaded. Host serializes every call into the
// state with a mutex.
package lua
