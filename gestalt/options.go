// Package gestalt implements the core orchestrator (C8) and its decoded-
// value cache (C9): the top-level entry point that wires source, loader,
// node manager, post-processor chain, and decoder registry together.
//
// Core's load-then-process-then-publish shape is grounded on the teacher's
// (openconfig/goyang) util/build_yang.go ProcessModules (read every
// source, process once, surface errors as a slice) and the top-level
// yang.go driver's exitIfError/explicit-registration pattern — kept here
// as Options.WithX builder calls instead of getopt flags, since gestalt is
// a library, not a CLI (the CLI lives in cmd/gestaltctl).
package gestalt

import (
	"time"

	"github.com/ikalinin1/gestalt/decode"
	"github.com/ikalinin1/gestalt/loader"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/postprocess"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/source"
)

// Options carries the policy flags of spec.md §6 plus the builder-supplied
// sources, loaders, decoders, processors, and mappers. Build Options with
// NewOptions and the With* methods, then pass to New.
type Options struct {
	Sources []source.Source
	Loaders []loader.Loader

	Decoders   []decode.Decoder
	Processors []postprocess.Processor
	Mappers    []path.Mapper

	TreatWarningsAsErrors           bool
	TreatMissingArrayIndexAsError   bool
	TreatMissingValuesAsErrors      bool
	TreatNullValuesInClassAsErrors  bool
	LogLevelForMissingValuesDefault result.Level

	DateDecoderFormat     string
	LocalDateTimeFormat   string
	LocalDateFormat       string

	SubstitutionOpeningToken string
	SubstitutionClosingToken string
	SubstitutionMaxDepth     int

	// Logger receives the registry's duplicate/ambiguous-decoder
	// diagnostics and Core's reload notifications. Defaults to
	// DefaultLogger (os.Stderr) when left nil.
	Logger Logger
}

// NewOptions returns Options with spec.md's documented defaults: relaxed
// policy flags, RFC3339-family date formats, and the default substitution
// tokens/depth (spec.md §4.5).
func NewOptions() *Options {
	return &Options{
		LogLevelForMissingValuesDefault: result.DEBUG,
		DateDecoderFormat:               time.RFC3339,
		LocalDateTimeFormat:             "2006-01-02T15:04:05",
		LocalDateFormat:                 "2006-01-02",
		SubstitutionOpeningToken:        "${",
		SubstitutionClosingToken:        "}",
		SubstitutionMaxDepth:            5,
		Logger:                          DefaultLogger,
	}
}

// WithLogger redirects Core's diagnostic output.
func (o *Options) WithLogger(l Logger) *Options {
	o.Logger = l
	return o
}

func (o *Options) WithSource(s source.Source) *Options {
	o.Sources = append(o.Sources, s)
	return o
}

func (o *Options) WithLoader(l loader.Loader) *Options {
	o.Loaders = append(o.Loaders, l)
	return o
}

func (o *Options) WithDecoder(d decode.Decoder) *Options {
	o.Decoders = append(o.Decoders, d)
	return o
}

func (o *Options) WithProcessor(p postprocess.Processor) *Options {
	o.Processors = append(o.Processors, p)
	return o
}

func (o *Options) WithMapper(m path.Mapper) *Options {
	o.Mappers = append(o.Mappers, m)
	return o
}

func (o *Options) WithTreatWarningsAsErrors(v bool) *Options {
	o.TreatWarningsAsErrors = v
	return o
}

func (o *Options) WithTreatMissingArrayIndexAsError(v bool) *Options {
	o.TreatMissingArrayIndexAsError = v
	return o
}

func (o *Options) WithTreatMissingValuesAsErrors(v bool) *Options {
	o.TreatMissingValuesAsErrors = v
	return o
}

func (o *Options) WithTreatNullValuesInClassAsErrors(v bool) *Options {
	o.TreatNullValuesInClassAsErrors = v
	return o
}

func (o *Options) WithSubstitutionTokens(open, close string) *Options {
	o.SubstitutionOpeningToken, o.SubstitutionClosingToken = open, close
	return o
}

func (o *Options) WithSubstitutionMaxDepth(d int) *Options {
	o.SubstitutionMaxDepth = d
	return o
}
