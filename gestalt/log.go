package gestalt

import "github.com/ikalinin1/gestalt/logging"

// Logger is the diagnostic-output seam for Core: every package under this
// module logs through logging.Logger, and Core re-exports it here so
// callers configuring a gestalt.Options never need to import the logging
// package directly.
type Logger = logging.Logger

// DefaultLogger writes to os.Stderr, matching the teacher's own bare
// fmt.Fprintln(os.Stderr, ...) idiom (SPEC_FULL.md "Logging").
var DefaultLogger = logging.Stderr

// DiscardLogger drops everything; useful for quiet tests.
var DiscardLogger = logging.Discard
