// Package clockutil wraps github.com/coder/quartz.Clock so session
// expiry is testable against a fake clock instead of wall-clock time.
package clockutil

import "github.com/coder/quartz"

// Clock is the subset of quartz.Clock the rest of the module needs.
type Clock = quartz.Clock

// Real returns the real wall-clock implementation.
func Real() Clock { return quartz.NewReal() }
