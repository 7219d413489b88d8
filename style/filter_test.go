package style_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aidangoettsch/go-tilepipe/style"
	"github.com/google/go-cmp/cmp"
)

func evaluate(t *testing.T, f style.Filter, props style.Properties) bool {
	t.Helper()
	match, err := f.Evaluate(props)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	return match
}

func TestFilterHas(t *testing.T) {
	props := style.Properties{"x": style.Integer(1)}

	if !evaluate(t, style.Has("x"), props) {
		t.Error(`Has("x") = false with "x" present, want true`)
	}
	if evaluate(t, style.Has("y"), props) {
		t.Error(`Has("y") = true with "y" absent, want false`)
	}
	if evaluate(t, style.NotHas("x"), props) {
		t.Error(`NotHas("x") = true with "x" present, want false`)
	}
	if !evaluate(t, style.NotHas("y"), props) {
		t.Error(`NotHas("y") = false with "y" absent, want true`)
	}
}

func TestFilterComparison(t *testing.T) {
	gt5 := style.Comparison(style.OpGt, "x", style.Integer(5))

	tests := []struct {
		name  string
		props style.Properties
		want  bool
	}{
		{"absent key", style.Properties{}, false},
		{"greater", style.Properties{"x": style.Integer(10)}, true},
		{"smaller", style.Properties{"x": style.Integer(3)}, false},
		{"equal", style.Properties{"x": style.Integer(5)}, false},
		{"float promoted", style.Properties{"x": style.Float(5.5)}, true},
		{"string unordered against number", style.Properties{"x": style.String("10")}, false},
	}
	for _, tc := range tests {
		if got := evaluate(t, gt5, tc.props); got != tc.want {
			t.Errorf("%v: Gt(x, 5) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFilterComparisonEquality(t *testing.T) {
	eq := style.Comparison(style.OpEq, "x", style.Integer(5))

	// Equality is over the tagged representation: a float property does
	// not equal an integer literal even at the same numeric value.
	if !evaluate(t, eq, style.Properties{"x": style.Integer(5)}) {
		t.Error("Eq(Integer(5), Integer(5)) = false, want true")
	}
	if evaluate(t, eq, style.Properties{"x": style.Float(5)}) {
		t.Error("Eq(Float(5), Integer(5)) = true, want false")
	}

	geq := style.Comparison(style.OpGeq, "x", style.Integer(5))
	if !evaluate(t, geq, style.Properties{"x": style.Float(5)}) {
		t.Error("Geq(Float(5), Integer(5)) = false, want true")
	}
}

func TestFilterMembership(t *testing.T) {
	in := style.In("class", "water", "river")

	if !evaluate(t, in, style.Properties{"class": style.String("water")}) {
		t.Error("In = false for member value, want true")
	}
	if evaluate(t, in, style.Properties{"class": style.String("land")}) {
		t.Error("In = true for non-member value, want false")
	}
	if evaluate(t, in, style.Properties{}) {
		t.Error("In = true for absent key, want false")
	}

	notIn := style.NotIn("class", "water")
	if !evaluate(t, notIn, style.Properties{"class": style.String("land")}) {
		t.Error("NotIn = false for non-member value, want true")
	}
	if evaluate(t, notIn, style.Properties{}) {
		t.Error("NotIn = true for absent key, want false")
	}
}

func TestFilterMembershipNonStringFails(t *testing.T) {
	in := style.In("class", "water")
	_, err := in.Evaluate(style.Properties{"class": style.Integer(1)})
	if !errors.Is(err, style.ErrUnsupportedOperation) {
		t.Errorf("In on integer property: err = %v, want ErrUnsupportedOperation", err)
	}
}

func TestFilterCombinators(t *testing.T) {
	hasA, hasB := style.Has("a"), style.Has("b")
	onlyA := style.Properties{"a": style.Bool(true)}
	both := style.Properties{"a": style.Bool(true), "b": style.Bool(true)}
	neither := style.Properties{}

	if !evaluate(t, style.All(hasA, hasB), both) || evaluate(t, style.All(hasA, hasB), onlyA) {
		t.Error("All mismatch")
	}
	if !evaluate(t, style.Any(hasA, hasB), onlyA) || evaluate(t, style.Any(hasA, hasB), neither) {
		t.Error("Any mismatch")
	}
	if !evaluate(t, style.None(hasA, hasB), neither) || evaluate(t, style.None(hasA, hasB), onlyA) {
		t.Error("None mismatch")
	}

	// Vacuous cases.
	if !evaluate(t, style.All(), neither) {
		t.Error("All([]) = false, want vacuously true")
	}
	if evaluate(t, style.Any(), neither) {
		t.Error("Any([]) = true, want vacuously false")
	}
	if !evaluate(t, style.None(), neither) {
		t.Error("None([]) = false, want vacuously true")
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want style.Filter
	}{
		{
			"comparison",
			`["==", "class", "water"]`,
			style.Comparison(style.OpEq, "class", style.String("water")),
		},
		{
			"numeric literal",
			`[">=", "rank", 3]`,
			style.Comparison(style.OpGeq, "rank", style.Float(3)),
		},
		{
			"membership",
			`["!in", "class", "path", "track"]`,
			style.NotIn("class", "path", "track"),
		},
		{
			"nested combinators",
			`["all", ["has", "name"], ["none", ["==", "intermittent", true]]]`,
			style.All(
				style.Has("name"),
				style.None(style.Comparison(style.OpEq, "intermittent", style.Bool(true))),
			),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got style.Filter
			if err := json.Unmarshal([]byte(tc.doc), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("parsed filter mismatch (-want+got):\n%v", diff)
			}
		})
	}
}

func TestParseFilterErrors(t *testing.T) {
	invalid := []string{
		`[]`,
		`["remembers"]`,
		`["has"]`,
		`["==", "class"]`,
		`["all", 5]`,
	}
	for _, doc := range invalid {
		var f style.Filter
		if err := json.Unmarshal([]byte(doc), &f); !errors.Is(err, style.ErrInvalidFilter) {
			t.Errorf("Unmarshal(%v): err = %v, want ErrInvalidFilter", doc, err)
		}
	}
}

func TestLiteralOf(t *testing.T) {
	tests := []struct {
		value any
		want  style.Literal
	}{
		{true, style.Bool(true)},
		{int64(7), style.Integer(7)},
		{uint64(7), style.Integer(7)},
		{3.5, style.Float(3.5)},
		{"water", style.String("water")},
	}
	for _, tc := range tests {
		got, err := style.LiteralOf(tc.value)
		if err != nil {
			t.Fatalf("LiteralOf(%v) failed: %v", tc.value, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("LiteralOf(%v) mismatch (-want+got):\n%v", tc.value, diff)
		}
	}

	if _, err := style.LiteralOf([]byte("binary")); !errors.Is(err, style.ErrUnsupportedOperation) {
		t.Errorf("LiteralOf(binary): err = %v, want ErrUnsupportedOperation", err)
	}
}
