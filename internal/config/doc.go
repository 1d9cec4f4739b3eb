// Package config loads taptrack configuration from TOML.
//
// A missing file is not an error: Load returns Default(). Environment
// variables prefixed TAPTRACK_ override file values:
//
//	TAPTRACK_LOG_LEVEL        log.level
//	TAPTRACK_SUPPRESS_WINDOW  tap.suppress_window
//
// Example file:
//
//	[tap]
//	suppress_trailing = true
//	suppress_window = "300ms"
//
//	[log]
//	level = "debug"
//
//	[terminal]
//	cell_width = 8
//	cell_height = 16
//
//	[[terminal.targets]]
//	path = "toolbar/save"
//	x = 2
//	y = 1
//	width = 8
//	height = 3
//
//	[plugins]
//	scripts = ["taps.lua"]
package config
