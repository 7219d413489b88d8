package tess_test

import (
	"errors"
	"testing"

	"github.com/aidangoettsch/go-tilepipe/style"
	"github.com/aidangoettsch/go-tilepipe/tess"
	"github.com/google/go-cmp/cmp"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func emitSquare(t *testing.T, ts *tess.Tessellator, x, y, size float64) {
	t.Helper()
	must(t, ts.PolygonBegin(true))
	must(t, ts.Coord(x, y))
	must(t, ts.Coord(x, y+size))
	must(t, ts.Coord(x+size, y+size))
	must(t, ts.Coord(x+size, y))
	must(t, ts.PolygonEnd(true))
}

func emitSquareFeature(t *testing.T, ts *tess.Tessellator, props map[string]any) {
	t.Helper()
	must(t, ts.FeatureBegin())
	for name, value := range props {
		must(t, ts.Property(name, value))
	}
	emitSquare(t, ts, 0, 0, 10)
	must(t, ts.FeatureEnd())
}

func ledgerSum(indices []uint32) int {
	sum := 0
	for _, n := range indices {
		sum += int(n)
	}
	return sum
}

func TestTessellatePolygon(t *testing.T) {
	ts := tess.New(nil)
	emitSquareFeature(t, ts, nil)

	if len(ts.Buffer.Vertices) != 4 {
		t.Errorf("len(Vertices) = %d, want 4", len(ts.Buffer.Vertices))
	}
	if len(ts.Buffer.Indices) != 6 {
		t.Errorf("len(Indices) = %d, want 6 (two triangles)", len(ts.Buffer.Indices))
	}
	if diff := cmp.Diff([]uint32{6}, ts.FeatureIndices); diff != "" {
		t.Errorf("FeatureIndices mismatch (-want+got):\n%v", diff)
	}
}

func TestTessellateMultiPolygon(t *testing.T) {
	ts := tess.New(nil)
	must(t, ts.FeatureBegin())
	must(t, ts.MultiPolygonBegin())
	emitSquareInner(t, ts, 0, 0, 10)
	emitSquareInner(t, ts, 20, 0, 10)
	must(t, ts.MultiPolygonEnd())
	must(t, ts.FeatureEnd())

	if len(ts.Buffer.Indices) != 12 {
		t.Errorf("len(Indices) = %d, want 12 (two squares)", len(ts.Buffer.Indices))
	}
	if diff := cmp.Diff([]uint32{12}, ts.FeatureIndices); diff != "" {
		t.Errorf("FeatureIndices mismatch (-want+got):\n%v", diff)
	}
}

// emitSquareInner emits an untagged polygon, as inside a multipolygon.
func emitSquareInner(t *testing.T, ts *tess.Tessellator, x, y, size float64) {
	t.Helper()
	must(t, ts.PolygonBegin(false))
	must(t, ts.Coord(x, y))
	must(t, ts.Coord(x, y+size))
	must(t, ts.Coord(x+size, y+size))
	must(t, ts.Coord(x+size, y))
	must(t, ts.PolygonEnd(false))
}

func TestTessellatePolygonWithHole(t *testing.T) {
	ts := tess.New(nil)
	must(t, ts.FeatureBegin())
	must(t, ts.PolygonBegin(true))
	// Exterior ring, then an interior ring with opposite winding. Rings
	// arrive as untagged linestrings inside the polygon.
	must(t, ts.LinestringBegin(false))
	must(t, ts.Coord(0, 0))
	must(t, ts.Coord(0, 10))
	must(t, ts.Coord(10, 10))
	must(t, ts.Coord(10, 0))
	must(t, ts.LinestringEnd(false))
	must(t, ts.LinestringBegin(false))
	must(t, ts.Coord(4, 4))
	must(t, ts.Coord(6, 4))
	must(t, ts.Coord(6, 6))
	must(t, ts.Coord(4, 6))
	must(t, ts.LinestringEnd(false))
	must(t, ts.PolygonEnd(true))
	must(t, ts.FeatureEnd())

	if len(ts.Buffer.Indices) == 0 {
		t.Fatal("polygon with hole produced no indices")
	}
	if got := ledgerSum(ts.FeatureIndices); got != len(ts.Buffer.Indices) {
		t.Errorf("ledger sum = %d, want index count %d", got, len(ts.Buffer.Indices))
	}
}

func TestTessellateLinestring(t *testing.T) {
	ts := tess.New(nil)
	must(t, ts.FeatureBegin())
	must(t, ts.LinestringBegin(true))
	must(t, ts.Coord(0, 0))
	must(t, ts.Coord(10, 0))
	must(t, ts.Coord(10, 10))
	must(t, ts.LinestringEnd(true))
	must(t, ts.FeatureEnd())

	// Two segments, one extruded quad each.
	if len(ts.Buffer.Vertices) != 8 {
		t.Errorf("len(Vertices) = %d, want 8", len(ts.Buffer.Vertices))
	}
	if len(ts.Buffer.Indices) != 12 {
		t.Errorf("len(Indices) = %d, want 12", len(ts.Buffer.Indices))
	}
	if diff := cmp.Diff([]uint32{12}, ts.FeatureIndices); diff != "" {
		t.Errorf("FeatureIndices mismatch (-want+got):\n%v", diff)
	}

	for _, v := range ts.Buffer.Vertices {
		if v.Normal == ([2]float32{}) {
			t.Fatal("stroke vertex has a zero extrusion normal")
		}
	}
}

func TestTessellatePointIgnored(t *testing.T) {
	ts := tess.New(nil)
	must(t, ts.FeatureBegin())
	must(t, ts.PointBegin())
	must(t, ts.Coord(5, 5))
	must(t, ts.PointEnd())
	must(t, ts.FeatureEnd())

	if len(ts.Buffer.Vertices) != 0 || len(ts.Buffer.Indices) != 0 {
		t.Error("point geometry produced mesh data")
	}
	if diff := cmp.Diff([]uint32{0}, ts.FeatureIndices); diff != "" {
		t.Errorf("FeatureIndices mismatch (-want+got):\n%v", diff)
	}
}

func TestFilterRejectsFeature(t *testing.T) {
	filter := style.Comparison(style.OpEq, "class", style.String("water"))
	ts := tess.New(&filter)

	emitSquareFeature(t, ts, map[string]any{"class": "land"})

	if len(ts.Buffer.Indices) != 0 {
		t.Errorf("filtered feature appended %d indices, want 0", len(ts.Buffer.Indices))
	}
	if len(ts.FeatureIndices) != 0 {
		t.Errorf("filtered feature appended %d ledger entries, want 0", len(ts.FeatureIndices))
	}

	// A matching feature on the same tessellator still contributes.
	emitSquareFeature(t, ts, map[string]any{"class": "water"})
	if len(ts.FeatureIndices) != 1 || ts.FeatureIndices[0] == 0 {
		t.Errorf("matching feature ledger = %v, want one non-zero entry", ts.FeatureIndices)
	}
}

func TestFilterSeesGeometryType(t *testing.T) {
	filter := style.Comparison(style.OpEq, "$type", style.String("Polygon"))
	ts := tess.New(&filter)

	// A linestring feature is rejected by the $type filter.
	must(t, ts.FeatureBegin())
	must(t, ts.LinestringBegin(true))
	must(t, ts.Coord(0, 0))
	must(t, ts.Coord(10, 0))
	must(t, ts.LinestringEnd(true))
	must(t, ts.FeatureEnd())

	if len(ts.FeatureIndices) != 0 {
		t.Fatal("linestring passed a Polygon $type filter")
	}

	// A polygon feature passes.
	emitSquareFeature(t, ts, nil)
	if len(ts.FeatureIndices) != 1 {
		t.Fatal("polygon rejected by a Polygon $type filter")
	}
}

func TestFeatureIndexConservation(t *testing.T) {
	filter := style.Comparison(style.OpEq, "class", style.String("water"))
	ts := tess.New(&filter)

	emitSquareFeature(t, ts, map[string]any{"class": "water"})
	emitSquareFeature(t, ts, map[string]any{"class": "land"})
	emitSquareFeature(t, ts, map[string]any{"class": "water"})

	if len(ts.FeatureIndices) != 2 {
		t.Fatalf("len(FeatureIndices) = %d, want 2 unfiltered features", len(ts.FeatureIndices))
	}
	if got := ledgerSum(ts.FeatureIndices); got != len(ts.Buffer.Indices) {
		t.Errorf("ledger sum = %d, want index count %d", got, len(ts.Buffer.Indices))
	}
}

func TestUnsupportedPropertyKind(t *testing.T) {
	ts := tess.New(nil)
	must(t, ts.FeatureBegin())
	err := ts.Property("blob", []byte{0x01})
	if !errors.Is(err, style.ErrUnsupportedOperation) {
		t.Errorf("Property(binary): err = %v, want ErrUnsupportedOperation", err)
	}
}

func TestUnsupportedFilterOperationSurfaces(t *testing.T) {
	filter := style.In("rank", "1", "2")
	ts := tess.New(&filter)

	must(t, ts.FeatureBegin())
	must(t, ts.Property("rank", int64(1)))
	must(t, ts.PolygonBegin(true))
	must(t, ts.Coord(0, 0))
	must(t, ts.Coord(0, 10))
	must(t, ts.Coord(10, 10))
	err := ts.PolygonEnd(true)
	if !errors.Is(err, style.ErrUnsupportedOperation) {
		t.Errorf("PolygonEnd with membership filter on integer: err = %v, want ErrUnsupportedOperation", err)
	}
}
