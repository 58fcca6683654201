package decode

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/path"
	"github.com/ikalinin1/gestalt/result"
)

// leafValue returns n's string value, or a DecodingExpectedLeaf /
// DecodingLeafMissingValue error if n is not a Leaf with Some value — the
// precondition every leaf decoder shares (spec.md §4.7).
func leafValue(n *node.Node) (string, []result.ValidationError) {
	if n == nil || n.Kind() != node.KindLeaf {
		return "", []result.ValidationError{result.NewError(result.DecodingExpectedLeaf, result.ERROR,
			"expected a leaf node")}
	}
	v, ok := n.Value()
	if !ok {
		return "", []result.ValidationError{result.NewError(result.DecodingLeafMissingValue, result.ERROR,
			"leaf has no value")}
	}
	return v, nil
}

// IntDecoder decodes a Leaf into any Go signed or unsigned integer kind,
// with overflow detection against the target width (spec.md §4.7
// "integers (with overflow detection)").
type IntDecoder struct{}

func (IntDecoder) Name() string            { return "int" }
func (IntDecoder) Priority() Priority       { return MEDIUM }
func (IntDecoder) Matches(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func (IntDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	raw = strings.TrimSpace(raw)
	if isUnsignedKind(t.Kind()) {
		u, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return result.Invalid[interface{}](overflowOrParseError(raw, err))
		}
		v := reflect.New(t).Elem()
		v.SetUint(u)
		out := v.Interface()
		return result.Valid[interface{}](out)
	}
	i, err := strconv.ParseInt(raw, 10, t.Bits())
	if err != nil {
		return result.Invalid[interface{}](overflowOrParseError(raw, err))
	}
	v := reflect.New(t).Elem()
	v.SetInt(i)
	out := v.Interface()
	return result.Valid[interface{}](out)
}

func isUnsignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func overflowOrParseError(raw string, err error) result.ValidationError {
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return result.NewError(result.DecodingNumberFormat, result.ERROR,
			"%q overflows the target integer width", raw)
	}
	return result.NewError(result.DecodingNumberParsing, result.ERROR, "cannot parse %q as an integer", raw)
}

// FloatDecoder decodes a Leaf into float32/float64, range-checking against
// the target width (spec.md §4.7 "floats (parse and range-check)").
type FloatDecoder struct{}

func (FloatDecoder) Name() string      { return "float" }
func (FloatDecoder) Priority() Priority { return MEDIUM }
func (FloatDecoder) Matches(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

func (FloatDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), t.Bits())
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return result.Invalid[interface{}](result.NewError(result.DecodingNumberFormat, result.ERROR,
				"%q is out of range for the target float width", raw))
		}
		return result.Invalid[interface{}](result.NewError(result.DecodingNumberParsing, result.ERROR,
			"cannot parse %q as a float", raw))
	}
	v := reflect.New(t).Elem()
	v.SetFloat(f)
	return result.Valid[interface{}](v.Interface())
}

// BoolDecoder decodes a Leaf into bool, case-insensitively accepting
// true/false/yes/no/1/0 (spec.md §4.7).
type BoolDecoder struct{}

func (BoolDecoder) Name() string      { return "bool" }
func (BoolDecoder) Priority() Priority { return MEDIUM }
func (BoolDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func (BoolDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1":
		return result.Valid[interface{}](true)
	case "false", "no", "0":
		return result.Valid[interface{}](false)
	default:
		return result.Invalid[interface{}](result.NewError(result.DecodingNumberParsing, result.ERROR,
			"%q is not a recognized boolean (true/false/yes/no/1/0)", raw))
	}
}

// StringDecoder decodes a Leaf into string verbatim.
type StringDecoder struct{}

func (StringDecoder) Name() string      { return "string" }
func (StringDecoder) Priority() Priority { return LOW }
func (StringDecoder) Matches(t reflect.Type) bool { return t.Kind() == reflect.String }

func (StringDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	return result.Valid[interface{}](raw)
}

// runeType lets CharDecoder.Matches identify the "char" target type: Go has
// no distinct rune type at the reflect.Kind level (it's an alias for
// int32), so char decoding is requested via this sentinel type instead of
// overloading every int32 field.
type Rune rune

var runeType = reflect.TypeOf(Rune(0))

// CharDecoder decodes a Leaf expected to hold exactly one code point
// (spec.md §4.7, scenarios S1/S2): too many code points emits WARN and
// keeps the first; zero code points is a no-result ERROR.
type CharDecoder struct{}

func (CharDecoder) Name() string      { return "char" }
func (CharDecoder) Priority() Priority { return MEDIUM }
func (CharDecoder) Matches(t reflect.Type) bool { return t == runeType }

func (CharDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	count := utf8.RuneCountInString(raw)
	if count == 0 {
		return result.Invalid[interface{}](result.NewError(result.DecodingCharWrongSize, result.ERROR,
			"received the wrong size: expected exactly one code point, got 0"))
	}
	first, _ := utf8.DecodeRuneInString(raw)
	if count > 1 {
		return result.Of[interface{}](ifacePtr(Rune(first)), result.NewError(result.DecodingCharWrongSize, result.WARN,
			"received the wrong size: expected exactly one code point, got %d", count))
	}
	return result.Valid[interface{}](Rune(first))
}

func ifacePtr(v interface{}) *interface{} { return &v }

// UUIDDecoder decodes a Leaf into uuid.UUID, grounded on google/uuid
// (retrieved from the pack's upbound/up repo) rather than a hand-rolled
// regex validator.
type UUIDDecoder struct{}

func (UUIDDecoder) Name() string      { return "uuid" }
func (UUIDDecoder) Priority() Priority { return MEDIUM }
func (UUIDDecoder) Matches(t reflect.Type) bool { return t == reflect.TypeOf(uuid.UUID{}) }

func (UUIDDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return result.Invalid[interface{}](result.NewError(result.DecodingNumberParsing, result.ERROR,
			"%q is not a valid UUID: %v", raw, err))
	}
	return result.Valid[interface{}](id)
}

// URIDecoder decodes a Leaf into *url.URL (spec.md §4.7 "path/URI"),
// grounded on the standard library's net/url rather than a hand-rolled
// validator — no ecosystem URI-parsing library appears anywhere in the
// pack for this role.
type URIDecoder struct{}

func (URIDecoder) Name() string      { return "uri" }
func (URIDecoder) Priority() Priority { return MEDIUM }
func (URIDecoder) Matches(t reflect.Type) bool { return t == reflect.TypeOf(&url.URL{}) }

func (URIDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return result.Invalid[interface{}](result.NewError(result.DecodingURI, result.ERROR,
			"%q is not a valid URI: %v", raw, err))
	}
	return result.Valid[interface{}](u)
}

// DurationDecoder decodes a Leaf into time.Duration: a bare integer is
// milliseconds, anything else is parsed as an ISO-8601 duration (spec.md
// §4.7, scenario S8).
type DurationDecoder struct{}

func (DurationDecoder) Name() string      { return "duration" }
func (DurationDecoder) Priority() Priority { return MEDIUM }
func (DurationDecoder) Matches(t reflect.Type) bool { return t == reflect.TypeOf(time.Duration(0)) }

func (DurationDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return result.Valid[interface{}](time.Duration(ms) * time.Millisecond)
	}
	d, err := parseISO8601Duration(raw)
	if err != nil {
		return result.Invalid[interface{}](result.NewError(result.DecodingNumberFormat, result.ERROR,
			"%q is neither an integer (milliseconds) nor a valid ISO-8601 duration: %v", raw, err))
	}
	return result.Valid[interface{}](d)
}

// parseISO8601Duration parses the subset of ISO-8601 durations
// (PnYnMnDTnHnMnS) commonly needed for configuration values. Years and
// months are approximated as 365 and 30 days respectively, since a true
// calendar-aware duration has no fixed time.Duration representation.
func parseISO8601Duration(s string) (time.Duration, error) {
	matches := iso8601DurationPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("does not match ISO-8601 duration pattern")
	}
	var total time.Duration
	units := []struct {
		group string
		unit  time.Duration
	}{
		{matches[1], 365 * 24 * time.Hour},
		{matches[2], 30 * 24 * time.Hour},
		{matches[3], 24 * time.Hour},
		{matches[4], time.Hour},
		{matches[5], time.Minute},
		{matches[6], time.Second},
	}
	anySet := false
	for _, u := range units {
		if u.group == "" {
			continue
		}
		anySet = true
		n, err := strconv.ParseFloat(u.group, 64)
		if err != nil {
			return 0, err
		}
		total += time.Duration(n * float64(u.unit))
	}
	if !anySet {
		return 0, fmt.Errorf("no duration components present")
	}
	return total, nil
}

// EnumDecoder decodes a Leaf against a caller-supplied case-insensitive
// name list, returning the matched canonical name as a string (callers map
// the name back to their enum type).
type EnumDecoder struct {
	Names []string
}

func (EnumDecoder) Name() string      { return "enum" }
func (EnumDecoder) Priority() Priority { return LOW }
func (d EnumDecoder) Matches(t reflect.Type) bool { return false } // registered per-type by callers via WithType

// WithType returns a copy of d scoped to match only typ, since the enum
// member set is caller-specific (spec.md §4.7 "enum (case-insensitive name
// match)").
func (d EnumDecoder) WithType(typ reflect.Type) *ScopedEnumDecoder {
	return &ScopedEnumDecoder{EnumDecoder: d, typ: typ}
}

// ScopedEnumDecoder is an EnumDecoder bound to one target reflect.Type.
type ScopedEnumDecoder struct {
	EnumDecoder
	typ reflect.Type
}

func (d *ScopedEnumDecoder) Matches(t reflect.Type) bool { return t == d.typ }

func (d *ScopedEnumDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	for _, name := range d.Names {
		if strings.EqualFold(name, raw) {
			return result.Valid[interface{}](name)
		}
	}
	return result.Invalid[interface{}](result.NewError(result.DecodingNumberParsing, result.ERROR,
		"%q does not match any of %v", raw, d.Names))
}

// DateTimeDecoder decodes a Leaf into time.Time using a configured layout
// (spec.md §6 dateDecoderFormat / localDateTimeFormat / localDateFormat).
type DateTimeDecoder struct {
	TypeName string // "date", "datetime" — distinguishes multiple registered instances
	Target   reflect.Type
	Layout   string
}

func (d DateTimeDecoder) Name() string      { return "datetime:" + d.TypeName }
func (DateTimeDecoder) Priority() Priority { return MEDIUM }
func (d DateTimeDecoder) Matches(t reflect.Type) bool { return t == d.Target }

func (d DateTimeDecoder) Decode(p []path.Token, n *node.Node, t reflect.Type, reg *Registry) result.R[interface{}] {
	raw, errs := leafValue(n)
	if errs != nil {
		return result.Invalid[interface{}](errs...)
	}
	parsed, err := time.Parse(d.Layout, strings.TrimSpace(raw))
	if err != nil {
		return result.Invalid[interface{}](result.NewError(result.DecodingNumberFormat, result.ERROR,
			"%q does not match format %q: %v", raw, d.Layout, err))
	}
	return result.Valid[interface{}](parsed)
}

var iso8601DurationPattern = regexp.MustCompile(
	`^P(?:(\d+(?:\.\d+)?)Y)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)D)?` +
		`(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
