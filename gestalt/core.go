package gestalt

import (
	"reflect"
	"strings"

	"github.com/ikalinin1/gestalt/decode"
	"github.com/ikalinin1/gestalt/loader"
	"github.com/ikalinin1/gestalt/manager"
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/postprocess"
	"github.com/ikalinin1/gestalt/result"
)

// Core is the orchestrator (C8): it wires the node manager, decoder
// registry, and path-mapper registry together behind the Options a caller
// built, per spec.md §4.4's "loadConfigs()/getConfig(path, type, tags)"
// split.
type Core struct {
	opts     *Options
	mappers  *path.Registry
	manager  *manager.Manager
	registry *decode.Registry
}

// New builds a Core from opts (nil uses NewOptions' defaults). Decoders
// and post-processors registered on opts are wired in immediately;
// sources/loaders are consulted when LoadConfigs runs.
func New(opts *Options) *Core {
	if opts == nil {
		opts = NewOptions()
	}
	if opts.Logger == nil {
		opts.Logger = DefaultLogger
	}

	mappers := path.NewRegistry(opts.Mappers...)
	chain := postprocess.NewChain(opts.Processors...)
	mgr := manager.New(chain)
	reg := decode.NewRegistry(mgr.Tree(), mappers)
	reg.SetLogger(opts.Logger)
	reg.SetDecoders(opts.Decoders...)

	c := &Core{opts: opts, mappers: mappers, manager: mgr, registry: reg}
	mgr.OnReload(func(gen uint64) {
		reg.SetTree(mgr.Tree())
		opts.Logger.Printf("gestalt: published generation %d", gen)
	})
	return c
}

// OnReload registers an additional listener invoked after every successful
// LoadConfigs build (spec.md §4.4 "core-reload event").
func (c *Core) OnReload(l manager.ReloadListener) {
	c.manager.OnReload(l)
}

// OnBeforePublish registers a listener invoked after a new generation
// finishes building but before it replaces the currently-published tree
// (spec.md §5 "reload clears the cache before publishing the new
// generation").
func (c *Core) OnBeforePublish(l manager.BeforePublishListener) {
	c.manager.OnBeforePublish(l)
}

// Generation returns the currently published generation number.
func (c *Core) Generation() uint64 { return c.manager.Generation() }

// Tree returns the currently published generation's root, mainly useful
// for diagnostics (cmd/gestaltctl's tree/JSON dump modes) rather than
// ordinary GetConfig-based reads.
func (c *Core) Tree() *node.Node { return c.manager.Tree() }

// LoadConfigs asks every registered source for its contribution, invokes
// the first loader that accepts the source's declared format, merges the
// resulting fragments in source order (later wins), runs the post-
// processor chain, and publishes the new generation (spec.md §4.4
// loadConfigs). Per-source and merge errors are returned alongside whatever
// generation did get published; a source whose format has no accepting
// loader is itself an error but does not abort the other sources.
func (c *Core) LoadConfigs() []result.ValidationError {
	var errs []result.ValidationError
	for _, src := range c.opts.Sources {
		ld := c.loaderFor(src.Format())
		if ld == nil {
			errs = append(errs, result.NewError(result.SourceLoadFailure, result.ERROR,
				"no loader accepts format %q for source %q", src.Format(), src.Name()))
			continue
		}
		out := ld.Load(src)
		errs = append(errs, out.Errors()...)
		fragment, ok := out.Value()
		if !ok {
			continue
		}
		c.manager.AddNode(src.ID(), fragment)
	}

	built := c.manager.Build()
	errs = append(errs, built.Errors()...)
	return errs
}

func (c *Core) loaderFor(format string) loader.Loader {
	for _, ld := range c.opts.Loaders {
		if ld.Accepts(format) {
			return ld
		}
	}
	return nil
}

// resolve navigates pathStr and decodes the node found there as typ. tags
// do not affect resolution; they only take part in the cache key built by
// cache.go. It never returns a Go error directly; callers decide fatality
// via Options' policy flags.
func (c *Core) resolve(pathStr string, typ reflect.Type, tags []string) result.R[interface{}] {
	toks := c.mappers.Tokenize(pathStr, pathStr)
	tokens, ok := toks.Value()
	if !ok {
		return result.Invalid[interface{}](toks.Errors()...)
	}

	nav := c.manager.Navigate(tokens)
	errs := append([]result.ValidationError(nil), nav.Errors()...)
	n, ok := nav.Value()
	if !ok {
		errs = append(errs, result.NewError(result.NoResultsFoundForNode, result.MISSING_VALUE,
			"no value found at %q", pathStr).At(pathStr))
		return result.Invalid[interface{}](errs...)
	}

	dec := c.registry.DecodeNode(tokens, n, typ)
	errs = append(errs, dec.Errors()...)
	v, ok := dec.Value()
	if !ok {
		return result.Invalid[interface{}](errs...)
	}
	return result.Of(&v, errs...)
}

func cacheKey(pathStr string, typ reflect.Type, tags []string) string {
	if len(tags) == 0 {
		return pathStr + "\x00" + typ.String()
	}
	return pathStr + "\x00" + typ.String() + "\x00" + strings.Join(tags, ",")
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// GetConfig decodes the value at pathStr as T, per spec.md §4.9 "getConfig
// returns T or fails". Under TreatWarningsAsErrors any WARN also fails the
// call; a missing path is always fatal here (use GetConfigOptional or
// GetConfigDefault to tolerate absence).
func GetConfig[T any](c *Core, pathStr string, tags ...string) (T, error) {
	var zero T
	typ := typeOf[T]()
	out := c.resolve(pathStr, typ, tags)
	fatal := c.opts.fatal(out.Errors())
	v, ok := out.Value()
	if !ok || len(fatal) > 0 {
		return zero, &ConfigError{Path: pathStr, Errors: nonEmpty(out.Errors(), fatal)}
	}
	t, ok := v.(T)
	if !ok {
		return zero, &ConfigError{Path: pathStr, Errors: []result.ValidationError{
			result.NewError(result.DecodingExpectedLeaf, result.ERROR,
				"decoded value %v is not assignable to %s", v, typ).At(pathStr),
		}}
	}
	return t, nil
}

// GetConfigOptional decodes the value at pathStr as T, returning ok=false
// with no error when the path is simply absent (spec.md §4.9
// "getConfigOptional returns empty on non-fatal absence and still fails on
// corrupt data").
func GetConfigOptional[T any](c *Core, pathStr string, tags ...string) (value T, ok bool, err error) {
	typ := typeOf[T]()
	out := c.resolve(pathStr, typ, tags)
	fatal := c.opts.fatalPresence(out.Errors())
	v, present := out.Value()
	if !present {
		if len(fatal) > 0 {
			return value, false, &ConfigError{Path: pathStr, Errors: fatal}
		}
		return value, false, nil
	}
	if len(fatal) > 0 {
		return value, false, &ConfigError{Path: pathStr, Errors: fatal}
	}
	t, assignable := v.(T)
	if !assignable {
		return value, false, &ConfigError{Path: pathStr, Errors: []result.ValidationError{
			result.NewError(result.DecodingExpectedLeaf, result.ERROR,
				"decoded value %v is not assignable to %s", v, typ).At(pathStr),
		}}
	}
	return t, true, nil
}

// GetConfigDefault decodes the value at pathStr as T, falling back silently
// to def on MISSING_VALUE (spec.md §4.9 "getConfig(default) falls back
// silently on MISSING_VALUE"); corrupt data still fails the call.
func GetConfigDefault[T any](c *Core, pathStr string, def T, tags ...string) (T, error) {
	v, ok, err := GetConfigOptional[T](c, pathStr, tags...)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func nonEmpty(all, fatal []result.ValidationError) []result.ValidationError {
	if len(fatal) > 0 {
		return fatal
	}
	return all
}
