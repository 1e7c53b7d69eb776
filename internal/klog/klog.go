// Package klog provides the kernel's leveled logger: a *log.Logger
// used for panic/fault reporting and diagnostic traces, the way
// fuse.MountOptions.Logger lets a caller supply a *log.Logger.
package klog

import (
	"log"
	"os"
)

func init() {
	// Microseconds matter for ordering boot/interrupt traces; the
	// calendar date does not.
	log.SetFlags(log.Lmicroseconds)
}

// Logger is the interface the kernel core requires of a log sink.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Default is the sink every subsystem logs through; no constructor in
// this module takes a Logger of its own, so replacing Default is how a
// caller redirects kernel logging.
var Default Logger = log.New(os.Stderr, "sortixkernel: ", log.Lmicroseconds)

// Verbose reports whether diagnostic tracing was requested via
// DEBUG=1, mirroring testutil.VerboseTest.
func Verbose() bool {
	return os.Getenv("DEBUG") == "1"
}
