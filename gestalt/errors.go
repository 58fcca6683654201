package gestalt

import (
	"fmt"
	"strings"

	"github.com/ikalinin1/gestalt/result"
)

// ConfigError is the error Core returns when a GetConfig family call fails.
// It carries every accumulated result.ValidationError rather than just the
// first one, per spec.md §9 Design Notes "Exceptions": "only the top-level
// getConfig translates fatal failures into the caller's error channel" —
// everywhere else in the pipeline, errors accumulate inside an R[T] and are
// never raised as a Go error until this boundary.
type ConfigError struct {
	Path   string
	Errors []result.ValidationError
}

func (e *ConfigError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("gestalt: %s: %s", e.Path, e.Errors[0])
	}
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("gestalt: %s: %d errors: %s", e.Path, len(e.Errors), strings.Join(msgs, "; "))
}

// fatal reports which of errs are fatal for a plain GetConfig call, per
// spec.md §9 "under strict mode any non-DEBUG error turns the call into a
// failure; under relaxed mode only ERROR/MISSING_VALUE (plus optional
// policies for missing-array-index and null-in-class) do".
func (o *Options) fatal(errs []result.ValidationError) []result.ValidationError {
	return o.filterFatal(errs, true)
}

// fatalPresence is used by GetConfigOptional/GetConfigDefault: a plain
// MISSING_VALUE (the path is simply absent) is never fatal for these two —
// "getConfigOptional returns empty on non-fatal absence and still fails on
// corrupt data" (spec.md §4.9) — everything else fatal() would catch still
// applies.
func (o *Options) fatalPresence(errs []result.ValidationError) []result.ValidationError {
	return o.filterFatal(errs, false)
}

func (o *Options) filterFatal(errs []result.ValidationError, missingIsFatal bool) []result.ValidationError {
	var out []result.ValidationError
	for _, e := range errs {
		if isFatal(e, o, missingIsFatal) {
			out = append(out, e)
		}
	}
	return out
}

func isFatal(e result.ValidationError, o *Options, missingIsFatal bool) bool {
	if e.Level == result.ERROR {
		return true
	}
	if o.TreatWarningsAsErrors && e.Level >= result.WARN {
		return true
	}
	if e.Kind == result.ArrayMissingIndex {
		return o.TreatMissingArrayIndexAsError
	}
	if e.Kind == result.DecodingExpectedObject {
		return o.TreatNullValuesInClassAsErrors
	}
	if e.Level == result.MISSING_VALUE {
		return missingIsFatal && o.TreatMissingValuesAsErrors
	}
	return false
}
