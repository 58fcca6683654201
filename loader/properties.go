package loader

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/source"
)

// PropertiesLoader parses a stream-shaped source whose contents are flat
// "key.path=value" lines — grounded on the teacher's (openconfig/goyang)
// pkg/yang/lex.go line/rune scanning style, adapted from a YANG token
// scanner to a simpler line-oriented one since the properties grammar
// carries no nesting of its own (nesting comes entirely from the
// "key.path" dotted syntax, handled by path.Registry).
//
// Blank lines and lines whose first non-whitespace rune is '#' are
// ignored; a line with no '=' is a parse error for that source.
type PropertiesLoader struct {
	Mapper *path.Registry
}

// NewPropertiesLoader builds a PropertiesLoader; a nil mapper uses
// path.NewRegistry()'s defaults.
func NewPropertiesLoader(mapper *path.Registry) *PropertiesLoader {
	if mapper == nil {
		mapper = path.NewRegistry()
	}
	return &PropertiesLoader{Mapper: mapper}
}

func (*PropertiesLoader) Accepts(format string) bool {
	return format == "properties" || format == "" // "" lets extension-less file sources default here
}

func (l *PropertiesLoader) Load(src source.Source) result.R[*node.Node] {
	if !src.HasStream() {
		return result.Invalid[*node.Node](result.NewError(result.SourceLoadFailure, result.ERROR,
			"source %q has no byte stream to load", src.Name()))
	}
	data, err := src.LoadStream()
	if err != nil {
		return result.Invalid[*node.Node](result.NewError(result.SourceLoadFailure, result.ERROR,
			"loading source %q: %v", src.Name(), err))
	}

	var entries []source.KeyValue
	var errs []result.ValidationError
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			errs = append(errs, result.NewError(result.SourceLoadFailure, result.ERROR,
				"%s:%d: expected key=value, got %q", src.Name(), lineNo, line))
			continue
		}
		entries = append(entries, source.KeyValue{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}

	built := buildFromEntries(l.Mapper, src.Name(), entries)
	errs = append(errs, built.Errors()...)
	v, ok := built.Value()
	if !ok {
		return result.Invalid[*node.Node](errs...)
	}
	return result.Of(&v, errs...)
}
