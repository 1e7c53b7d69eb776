// Package sortixkernel collects the in-kernel core of a small Unix-like
// operating system: process and thread lifecycle, the scheduler, the
// virtual memory segment map, the virtual filesystem, clocks and
// timers, and signal delivery across the system-call boundary.
//
// Hardware-facing concerns (the MMU, the interrupt frame, I/O ports)
// are represented by narrow interfaces the core calls through rather
// than by real hardware access, so the logic described by each package
// below runs and is testable as ordinary Go code.
//
// See SPEC_FULL.md for the full module map and DESIGN.md for the
// grounding of each package.
package sortixkernel
