package postprocess

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
)

// Transform resolves a substitution key against one backing store, per
// spec.md §4.5 and §9 open question (c): "Transform namespace is open-ended
// ... env, sys, node, with additions as plugins."
type Transform interface {
	Name() string
	Get(key string) (string, bool)
}

// EnvTransform resolves against the process environment.
type EnvTransform struct{}

func (EnvTransform) Name() string { return "env" }
func (EnvTransform) Get(key string) (string, bool) { return os.LookupEnv(key) }

// SysTransform resolves a small set of Go-runtime system properties,
// standing in for the host-language "system properties" transform spec.md
// §4.5 describes.
type SysTransform struct{}

func (SysTransform) Name() string { return "sys" }

func (SysTransform) Get(key string) (string, bool) {
	switch key {
	case "os":
		return runtime.GOOS, true
	case "arch":
		return runtime.GOARCH, true
	case "numcpu":
		return strconv.Itoa(runtime.NumCPU()), true
	case "hostname":
		h, err := os.Hostname()
		if err != nil {
			return "", false
		}
		return h, true
	default:
		return "", false
	}
}

// MapTransform resolves against a caller-supplied static map, useful for
// tests and for the "map" transform of spec.md §4.5.
type MapTransform struct {
	Values map[string]string
}

func (MapTransform) Name() string { return "map" }

func (t MapTransform) Get(key string) (string, bool) {
	v, ok := t.Values[key]
	return v, ok
}

// FileTransform resolves a key as a file name searched for across Dirs (in
// order), returning the file's trimmed contents. Grounded on the teacher's
// search-path file lookup (pkg/yang/file.go's AddPath/findFile).
type FileTransform struct {
	Dirs []string
}

func (FileTransform) Name() string { return "file" }

func (t FileTransform) Get(key string) (string, bool) {
	if data, err := os.ReadFile(key); err == nil {
		return strings.TrimSpace(string(data)), true
	}
	for _, dir := range t.Dirs {
		full := dir + string(os.PathSeparator) + key
		if data, err := os.ReadFile(full); err == nil {
			return strings.TrimSpace(string(data)), true
		}
	}
	return "", false
}

// NodeTransform resolves a key as a dotted path into the generation being
// built, the default transform of spec.md §4.5. It is TreeAware: Chain.Run
// rebinds its tree reference before every generation build.
type NodeTransform struct {
	mapper *path.Registry
	root   *node.Node
}

// NewNodeTransform builds a NodeTransform using mapper to tokenize lookup
// keys. If mapper is nil, path.NewRegistry()'s defaults are used.
func NewNodeTransform(mapper *path.Registry) *NodeTransform {
	if mapper == nil {
		mapper = path.NewRegistry()
	}
	return &NodeTransform{mapper: mapper}
}

func (*NodeTransform) Name() string { return "node" }

func (t *NodeTransform) SetTree(root *node.Node) { t.root = root }

func (t *NodeTransform) Get(key string) (string, bool) {
	toks := t.mapper.Tokenize(key, key)
	tokens, ok := toks.Value()
	if !ok {
		return "", false
	}
	n := node.Navigate(t.root, tokens)
	target, ok := n.Value()
	if !ok {
		return "", false
	}
	return target.Value()
}
