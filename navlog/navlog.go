// Package navlog holds the diagnostic logger shared by the terranav packages.
//
// Logf defaults to log.Printf. Callers embedding the library in a larger
// service can redirect it with SetLogger, and tests can mute it with
// SetLogger(nil).
package navlog

import "log"

// Logf is the package-level diagnostic logger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
