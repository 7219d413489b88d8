package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidFilter = errors.New("style: invalid legacy filter")

// ErrUnsupportedOperation marks filter evaluations that the legacy filter
// language does not define, such as membership tests on non-string
// properties. These indicate a style or schema authoring bug and are
// surfaced instead of silently evaluating to false.
var ErrUnsupportedOperation = errors.New("style: unsupported filter operation")

// LiteralKind tags the concrete type held by a Literal.
type LiteralKind uint8

const (
	LiteralFloat LiteralKind = iota
	LiteralInteger
	LiteralBool
	LiteralString
)

// Literal is a typed comparison value: a feature property or a literal
// from a filter document. Two literals are equal only if both kind and
// value match; ordering comparisons additionally promote across the
// numeric kinds.
type Literal struct {
	Kind    LiteralKind
	Float   float64
	Integer int64
	Bool    bool
	String  string
}

func Float(v float64) Literal   { return Literal{Kind: LiteralFloat, Float: v} }
func Integer(v int64) Literal   { return Literal{Kind: LiteralInteger, Integer: v} }
func Bool(v bool) Literal       { return Literal{Kind: LiteralBool, Bool: v} }
func String(v string) Literal   { return Literal{Kind: LiteralString, String: v} }

// LiteralOf converts a decoded property value into a Literal. Property
// kinds outside the filterable set (date, binary, nested values) are
// rejected with ErrUnsupportedOperation.
func LiteralOf(value any) (Literal, error) {
	switch v := value.(type) {
	case bool:
		return Bool(v), nil
	case int:
		return Integer(int64(v)), nil
	case int64:
		return Integer(v), nil
	case uint64:
		return Integer(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	default:
		return Literal{}, fmt.Errorf("%w: property value %T is not filterable", ErrUnsupportedOperation, value)
	}
}

// Properties is the property bag a filter evaluates against.
type Properties map[string]Literal

// CompareOp is an ordering or equality operator in a comparison filter.
type CompareOp uint8

const (
	OpEq CompareOp = iota
	OpNeq
	OpGt
	OpGeq
	OpLt
	OpLeq
)

func compareOpFromKeyword(kw string) (CompareOp, bool) {
	switch kw {
	case "==":
		return OpEq, true
	case "!=":
		return OpNeq, true
	case ">":
		return OpGt, true
	case ">=":
		return OpGeq, true
	case "<":
		return OpLt, true
	case "<=":
		return OpLeq, true
	}
	return 0, false
}

// numeric returns the value promoted to float64 for ordering comparisons.
func (l Literal) numeric() (float64, bool) {
	switch l.Kind {
	case LiteralFloat:
		return l.Float, true
	case LiteralInteger:
		return float64(l.Integer), true
	}
	return 0, false
}

// compare applies the operator to property value a and filter literal b.
// Equality compares the tagged representation. Ordering operators promote
// across the numeric kinds and compare strings lexicographically; any
// other pairing is unordered and reports false.
func (op CompareOp) compare(a, b Literal) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	}
	if an, ok := a.numeric(); ok {
		bn, ok := b.numeric()
		if !ok {
			return false
		}
		switch op {
		case OpGt:
			return an > bn
		case OpGeq:
			return an >= bn
		case OpLt:
			return an < bn
		case OpLeq:
			return an <= bn
		}
	}
	if a.Kind == LiteralString && b.Kind == LiteralString {
		switch op {
		case OpGt:
			return a.String > b.String
		case OpGeq:
			return a.String >= b.String
		case OpLt:
			return a.String < b.String
		case OpLeq:
			return a.String <= b.String
		}
	}
	return false
}

// FilterKind selects the filter tree node variant.
type FilterKind uint8

const (
	FilterHas FilterKind = iota
	FilterNotHas
	FilterComparison
	FilterIn
	FilterNotIn
	FilterAll
	FilterAny
	FilterNone
)

// Filter is one node of a legacy filter expression tree.
// Which fields are meaningful depends on Kind.
type Filter struct {
	Kind     FilterKind
	Property string
	Op       CompareOp
	Literal  Literal
	Values   []string
	Children []Filter
}

func Has(property string) Filter    { return Filter{Kind: FilterHas, Property: property} }
func NotHas(property string) Filter { return Filter{Kind: FilterNotHas, Property: property} }

func Comparison(op CompareOp, property string, literal Literal) Filter {
	return Filter{Kind: FilterComparison, Op: op, Property: property, Literal: literal}
}

func In(property string, values ...string) Filter {
	return Filter{Kind: FilterIn, Property: property, Values: values}
}

func NotIn(property string, values ...string) Filter {
	return Filter{Kind: FilterNotIn, Property: property, Values: values}
}

func All(children ...Filter) Filter  { return Filter{Kind: FilterAll, Children: children} }
func Any(children ...Filter) Filter  { return Filter{Kind: FilterAny, Children: children} }
func None(children ...Filter) Filter { return Filter{Kind: FilterNone, Children: children} }

// Evaluate decides whether the property bag matches the filter.
// It accesses only the properties the filter names. The only error
// condition is an unsupported operation (membership tests against
// non-string property values).
func (f Filter) Evaluate(properties Properties) (bool, error) {
	switch f.Kind {
	case FilterHas:
		_, ok := properties[f.Property]
		return ok, nil
	case FilterNotHas:
		_, ok := properties[f.Property]
		return !ok, nil
	case FilterComparison:
		value, ok := properties[f.Property]
		if !ok {
			return false, nil
		}
		return f.Op.compare(value, f.Literal), nil
	case FilterIn, FilterNotIn:
		value, ok := properties[f.Property]
		if !ok {
			return false, nil
		}
		if value.Kind != LiteralString {
			return false, fmt.Errorf("%w: membership test on non-string property %q", ErrUnsupportedOperation, f.Property)
		}
		contains := slices.Contains(f.Values, value.String)
		if f.Kind == FilterNotIn {
			return !contains, nil
		}
		return contains, nil
	case FilterAll:
		for _, child := range f.Children {
			match, err := child.Evaluate(properties)
			if err != nil {
				return false, err
			}
			if !match {
				return false, nil
			}
		}
		return true, nil
	case FilterAny:
		for _, child := range f.Children {
			match, err := child.Evaluate(properties)
			if err != nil {
				return false, err
			}
			if match {
				return true, nil
			}
		}
		return false, nil
	case FilterNone:
		for _, child := range f.Children {
			match, err := child.Evaluate(properties)
			if err != nil {
				return false, err
			}
			if match {
				return false, nil
			}
		}
		return true, nil
	}
	return false, fmt.Errorf("%w: unknown filter kind %d", ErrInvalidFilter, f.Kind)
}

// ParseFilter reads a filter from its ordered array form
// ["keyword", args...], the shape used by legacy style documents.
// Combinator keywords nest arbitrarily.
func ParseFilter(raw []any) (Filter, error) {
	if len(raw) == 0 {
		return Filter{}, fmt.Errorf("%w: filter array was empty", ErrInvalidFilter)
	}
	kw, ok := raw[0].(string)
	if !ok {
		return Filter{}, fmt.Errorf("%w: filter keyword must be a string, got %T", ErrInvalidFilter, raw[0])
	}
	args := raw[1:]

	switch kw {
	case "has", "!has":
		property, err := stringArg(kw, args, 0)
		if err != nil {
			return Filter{}, err
		}
		if kw == "has" {
			return Has(property), nil
		}
		return NotHas(property), nil
	case "in", "!in":
		property, err := stringArg(kw, args, 0)
		if err != nil {
			return Filter{}, err
		}
		values := make([]string, 0, len(args)-1)
		for i := 1; i < len(args); i++ {
			value, err := stringArg(kw, args, i)
			if err != nil {
				return Filter{}, err
			}
			values = append(values, value)
		}
		if kw == "in" {
			return In(property, values...), nil
		}
		return NotIn(property, values...), nil
	case "all", "any", "none":
		children := make([]Filter, 0, len(args))
		for _, arg := range args {
			child, ok := arg.([]any)
			if !ok {
				return Filter{}, fmt.Errorf("%w: %q expects nested filter arrays, got %T", ErrInvalidFilter, kw, arg)
			}
			parsed, err := ParseFilter(child)
			if err != nil {
				return Filter{}, err
			}
			children = append(children, parsed)
		}
		switch kw {
		case "all":
			return All(children...), nil
		case "any":
			return Any(children...), nil
		default:
			return None(children...), nil
		}
	}

	if op, ok := compareOpFromKeyword(kw); ok {
		property, err := stringArg(kw, args, 0)
		if err != nil {
			return Filter{}, err
		}
		if len(args) < 2 {
			return Filter{}, fmt.Errorf("%w: %q filter was missing literal", ErrInvalidFilter, kw)
		}
		literal, err := literalArg(kw, args[1])
		if err != nil {
			return Filter{}, err
		}
		return Comparison(op, property, literal), nil
	}

	return Filter{}, fmt.Errorf("%w: invalid filter keyword %q", ErrInvalidFilter, kw)
}

func stringArg(kw string, args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: %q filter was missing property", ErrInvalidFilter, kw)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: %q filter argument %d must be a string, got %T", ErrInvalidFilter, kw, i, args[i])
	}
	return s, nil
}

// literalArg reads a comparison literal. JSON numbers arrive as float64,
// so number literals always parse as floats, matching the legacy reader.
func literalArg(kw string, arg any) (Literal, error) {
	switch v := arg.(type) {
	case float64:
		return Float(v), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	default:
		return Literal{}, fmt.Errorf("%w: %q filter literal must be a number, bool or string, got %T", ErrInvalidFilter, kw, arg)
	}
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	parsed, err := ParseFilter(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
