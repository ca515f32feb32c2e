// Command bridgeshim is the cgo //export ABI surface for linking this
// pacer into a non-Go host process. cgo export comments are only honored in
// package main, so this command exists purely to re-export bridge's plain
// Go functions; all logic lives in package bridge, where it stays
// unit-testable without a cgo build.
//
// Build with: go build -buildmode=c-shared -o liblatencyflex.so ./cmd/bridgeshim
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"github.com/lowlatency/framepacer/bridge"
)

//export WaitAndBeginFrame
func WaitAndBeginFrame() {
	bridge.WaitAndBeginFrame()
}

//export SetTargetFrameTime
func SetTargetFrameTime(nanoseconds C.uint64_t) {
	bridge.SetTargetFrameTime(uint64(nanoseconds))
}

func main() {}
