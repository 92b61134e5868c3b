// Package locks provides a process-wide registry of named exclusivity locks
// for coordinating test invocations that touch shared global state.
//
// A lock is identified by a namespace string and acquired in Read or
// ReadWrite mode. Invocations that mutate the namespace acquire ReadWrite
// and exclude everyone else; declared independent readers acquire Read and
// may run alongside each other. Invocations that never touch the namespace
// take no lock and run fully parallel.
//
//	release := locks.Acquire("testkit/env", locks.ReadWrite)
//	defer release()
package locks
