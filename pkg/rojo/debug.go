package rojo

import "os"

// DebugEnabled controls whether verbose debug logging is enabled across the
// engine. It is set automatically from the ROJO_DEBUG environment variable.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("ROJO_DEBUG") == "1"
}
