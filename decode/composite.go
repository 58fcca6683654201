package decode

import (
	"reflect"
	"strings"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

// ArrayDecoder decodes a node into a Go slice. It accepts either an Array
// node or a Leaf whose value is a comma-separated list (spec.md §4.7,
// scenario S3): each element is recursively decoded as the slice's element
// type via the registry, so element-level decoder priority still applies.
type ArrayDecoder struct{}

func (ArrayDecoder) Name() string      { return "array" }
func (ArrayDecoder) Priority() Priority { return HIGH }
func (ArrayDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.Slice }

func (ArrayDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	elemType := t.Elem()

	if n != nil && n.Kind() == node.KindLeaf {
		raw, ok := n.Value()
		if !ok {
			return result.Invalid[interface{}](result.NewError(result.DecodingLeafMissingValue, result.ERROR,
				"leaf has no value"))
		}
		parts := strings.Split(raw, ",")
		out := reflect.MakeSlice(t, 0, len(parts))
		var errs []result.ValidationError
		for i, part := range parts {
			trimmed := strings.TrimSpace(part)
			leaf := node.NewLeafString(trimmed)
			elemPath := appendIndex(p, uint32(i))
			dr := reg.DecodeNode(elemPath, leaf, elemType)
			errs = append(errs, dr.Errors()...)
			if v, ok := dr.Value(); ok {
				out = reflect.Append(out, reflect.ValueOf(v))
			}
		}
		return result.Of[interface{}](ifacePtr(out.Interface()), errs...)
	}

	if n == nil || n.Kind() != node.KindArray {
		return result.Invalid[interface{}](result.NewError(result.DecodingExpectedArray, result.ERROR,
			"expected an array node or a comma-separated leaf"))
	}

	elems := n.Elements()
	out := reflect.MakeSlice(t, 0, len(elems))
	var errs []result.ValidationError
	for i, e := range elems {
		elemPath := appendIndex(p, uint32(i))
		if e == nil {
			errs = append(errs, result.NewError(result.ArrayMissingIndex, result.MISSING_VALUE,
				"missing index %d", i).At(path.Render(elemPath)))
			continue
		}
		dr := reg.DecodeNode(elemPath, e, elemType)
		errs = append(errs, dr.Errors()...)
		if v, ok := dr.Value(); ok {
			out = reflect.Append(out, reflect.ValueOf(v))
		}
	}
	return result.Of[interface{}](ifacePtr(out.Interface()), errs...)
}

func appendIndex(p []path.Token, i uint32) []path.Token {
	out := make([]path.Token, len(p), len(p)+1)
	copy(out, p)
	return append(out, path.NewArray(i))
}

// MapDecoder decodes a Map node into a Go map, recursively decoding each
// entry's value as the map's value type (spec.md §4.7 "Map decoder walks
// Map entries").
type MapDecoder struct{}

func (MapDecoder) Name() string      { return "map" }
func (MapDecoder) Priority() Priority { return HIGH }
func (MapDecoder) Matches(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func (MapDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	if n == nil || n.Kind() != node.KindMap {
		return result.Invalid[interface{}](result.NewError(result.DecodingExpectedMap, result.ERROR,
			"expected a map node"))
	}
	valType := t.Elem()
	out := reflect.MakeMapWithSize(t, n.Size())
	var errs []result.ValidationError
	for _, key := range n.Keys() {
		child, _ := n.GetKey(key)
		childPath := appendField(p, key)
		dr := reg.DecodeNode(childPath, child, valType)
		errs = append(errs, dr.Errors()...)
		if v, ok := dr.Value(); ok {
			out.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(v))
		}
	}
	return result.Of[interface{}](ifacePtr(out.Interface()), errs...)
}

func appendField(p []path.Token, field string) []path.Token {
	out := make([]path.Token, len(p), len(p)+1)
	copy(out, p)
	return append(out, path.NewObject(field))
}

// ObjectPolicy carries the object-decoder's config flags (spec.md §6).
type ObjectPolicy struct {
	TreatMissingValuesAsErrors     bool
	TreatNullValuesInClassAsErrors bool
}

// ObjectDecoder decodes a Map node into a Go struct by iterating the
// target type's declared fields via reflection (spec.md §4.7 "Object
// decoder iterates the target type's declared fields"; §9 Design Notes
// "Reflection"). Each field's config key is its name unless overridden by
// a `gestalt:"name"` struct tag. Under Policy.TreatMissingValuesAsErrors a
// missing field makes the whole decode value-less.
type ObjectDecoder struct {
	Policy ObjectPolicy
}

func (ObjectDecoder) Name() string      { return "object" }
func (ObjectDecoder) Priority() Priority { return LOW }
func (ObjectDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.Struct }

func (d ObjectDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	if n == nil || n.Kind() != node.KindMap {
		return result.Invalid[interface{}](result.NewError(result.DecodingExpectedObject, result.ERROR,
			"expected an object (map) node"))
	}
	out := reflect.New(t).Elem()
	var errs []result.ValidationError
	missingRequired := false
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldConfigName(field)
		childPath := appendField(p, name)
		child, ok := n.GetKey(name)
		if !ok {
			if d.Policy.TreatMissingValuesAsErrors {
				missingRequired = true
				errs = append(errs, result.NewError(result.DecodingExpectedObject, result.ERROR,
					"missing field %q", name).At(path.Render(childPath)))
			} else {
				errs = append(errs, result.NewError(result.DecodingExpectedObject, result.MISSING_OPTIONAL_VALUE,
					"missing field %q", name).At(path.Render(childPath)))
			}
			continue
		}
		dr := reg.DecodeNode(childPath, child, field.Type)
		errs = append(errs, dr.Errors()...)
		v, hasValue := dr.Value()
		if !hasValue {
			continue
		}
		if isNilValue(v) && d.Policy.TreatNullValuesInClassAsErrors {
			errs = append(errs, result.NewError(result.DecodingExpectedObject, result.ERROR,
				"field %q decoded to null", name).At(path.Render(childPath)))
			continue
		}
		out.Field(i).Set(reflect.ValueOf(v))
	}
	if missingRequired {
		return result.Invalid[interface{}](errs...)
	}
	return result.Of[interface{}](ifacePtr(out.Interface()), errs...)
}

func fieldConfigName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("gestalt"); ok && tag != "" {
		return tag
	}
	return f.Name
}

func isNilValue(v interface{}) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// OptionalDecoder wraps another decoder for the target's element type:
// missing yields the zero value with a DEBUG (or, if configured,
// MISSING_OPTIONAL_VALUE) error; present delegates (spec.md §4.7
// "Optional/nullable decoder").
type OptionalDecoder struct {
	// Elem is the wrapped (non-pointer) type this decoder handles as *Elem.
	Elem reflect.Type
	// MissingLevel is the error level emitted on a missing value; defaults
	// to DEBUG per spec.md §4.7 if left unset (zero value).
	MissingLevel result.Level
}

func (d OptionalDecoder) Name() string      { return "optional:" + d.Elem.String() }
func (OptionalDecoder) Priority() Priority { return VERY_HIGH }
func (d OptionalDecoder) Matches(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr && t.Elem() == d.Elem
}

func (d OptionalDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	if n == nil {
		ptr := reflect.Zero(t).Interface()
		return result.Of[interface{}](ifacePtr(ptr), result.NewError(result.NoResultsFoundForNode, d.MissingLevel,
			"no value present, optional field left nil"))
	}
	inner := reg.DecodeNode(p, n, d.Elem)
	v, ok := inner.Value()
	if !ok {
		ptr := reflect.Zero(t).Interface()
		return result.Of[interface{}](ifacePtr(ptr), inner.Errors()...)
	}
	ptr := reflect.New(d.Elem)
	ptr.Elem().Set(reflect.ValueOf(v))
	return result.Of[interface{}](ifacePtr(ptr.Interface()), inner.Errors()...)
}
