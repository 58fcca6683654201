// Program gestaltctl loads a set of configuration sources, builds one
// generation, and dumps the resulting tree.
//
// Usage: gestaltctl [--format FORMAT] [--env-prefix PREFIX] FILE ...
//
// Each FILE is read as a properties-format source (blank lines and '#'
// comments ignored, "key.path=value" lines otherwise); if --env-prefix is
// given, environment variables with that prefix are layered on top, later
// sources winning over earlier ones exactly as gestalt.Core.LoadConfigs
// merges them.
//
// FORMAT, which defaults to "tree", selects the dump format. Use
// "gestaltctl --help" for the list of available formats.
//
// THIS PROGRAM IS A DIAGNOSTIC TOOL, not part of the gestalt library API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pborman/getopt"

	"github.com/ikalinin1/gestalt/gestalt"
	"github.com/ikalinin1/gestalt/loader"
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/pkg/indent"
	"github.com/ikalinin1/gestalt/source"
)

// Each format must register with register. f is called once with the
// built generation's root node.
type formatter struct {
	name string
	f    func(io.Writer, *node.Node)
	help string
}

var formatters = map[string]*formatter{}

func register(f *formatter) { formatters[f.name] = f }

func init() {
	register(&formatter{name: "tree", f: dumpTree, help: "indented key: value tree"})
	register(&formatter{name: "json", f: dumpJSON, help: "JSON object"})
}

var stop = os.Exit

// exitIfError writes errs to standard error and exits with status 1. If
// errs is empty it does nothing.
func exitIfError(errs []error) {
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		stop(1)
	}
}

func main() {
	var format string
	var envPrefix string
	var help bool

	formats := make([]string, 0, len(formatters))
	for k := range formatters {
		formats = append(formats, k)
	}
	sort.Strings(formats)

	getopt.StringVarLong(&format, "format", 0, "format to display: "+strings.Join(formats, ", "), "FORMAT")
	getopt.StringVarLong(&envPrefix, "env-prefix", 0, "environment variable prefix to layer on top of FILEs", "PREFIX")
	getopt.BoolVarLong(&help, "help", '?', "display help")
	getopt.SetParameters("[FILE ...]")

	if err := getopt.Getopt(nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	if help {
		getopt.CommandLine.PrintUsage(os.Stderr)
		fmt.Fprintf(os.Stderr, "\nFormats:\n")
		for _, fn := range formats {
			f := formatters[fn]
			fmt.Fprintf(os.Stderr, "    %s - %s\n", f.name, f.help)
		}
		stop(0)
	}

	if format == "" {
		format = "tree"
	}
	f, ok := formatters[format]
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: invalid format.  Choices are %s\n", format, strings.Join(formats, ", "))
		stop(1)
	}

	opts := gestalt.NewOptions().WithLoader(loader.NewPropertiesLoader(nil))
	for _, name := range getopt.Args() {
		opts = opts.WithSource(source.FileSource{FileName: name, FormatOverride: "properties"})
	}
	if envPrefix != "" {
		opts = opts.WithLoader(loader.NewKeyValueLoader(nil)).
			WithSource(source.EnvSource{Prefix: envPrefix})
	}

	core := gestalt.New(opts)
	var errs []error
	for _, e := range core.LoadConfigs() {
		errs = append(errs, e)
	}
	exitIfError(errs)

	f.f(os.Stdout, core.Tree())
}

func dumpTree(w io.Writer, n *node.Node) {
	if n == nil {
		fmt.Fprintln(w, "<empty>")
		return
	}
	switch n.Kind() {
	case node.KindLeaf:
		v, _ := n.Value()
		fmt.Fprintf(w, "%s\n", v)
	case node.KindArray:
		for i, el := range n.Elements() {
			fmt.Fprintf(w, "[%d]:\n", i)
			dumpTree(indent.NewWriter(w, "  "), el)
		}
	case node.KindMap:
		keys := n.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			child, _ := n.GetKey(k)
			fmt.Fprintf(w, "%s:\n", k)
			dumpTree(indent.NewWriter(w, "  "), child)
		}
	}
}

func dumpJSON(w io.Writer, n *node.Node) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(toJSON(n))
}

func toJSON(n *node.Node) interface{} {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case node.KindLeaf:
		v, ok := n.Value()
		if !ok {
			return nil
		}
		return v
	case node.KindArray:
		els := n.Elements()
		out := make([]interface{}, len(els))
		for i, el := range els {
			out[i] = toJSON(el)
		}
		return out
	case node.KindMap:
		out := map[string]interface{}{}
		for _, k := range n.Keys() {
			child, _ := n.GetKey(k)
			out[k] = toJSON(child)
		}
		return out
	}
	return nil
}
