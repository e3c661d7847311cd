package depot

import (
	"runtime"
	"strconv"
	"strings"
)

// goid returns the current goroutine ID.
// A definition records it while constructing, so a resolution that bypasses
// the Resolver handle can still tell re-entry from waiting for another
// goroutine.
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	idField := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))[0]
	id, _ := strconv.ParseInt(idField, 10, 64)
	return id
}
