package style

import (
	"encoding/json"
	"fmt"

	"github.com/mazznoer/csscolorparser"
)

// Color wraps a parsed CSS color so paint properties can be read straight
// from style JSON ("#00ff00", "rgba(0,255,0,0.5)", named colors).
type Color struct {
	csscolorparser.Color
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := csscolorparser.Parse(raw)
	if err != nil {
		return fmt.Errorf("style: invalid color %q: %w", raw, err)
	}
	c.Color = parsed
	return nil
}

type BackgroundPaint struct {
	Color   *Color        `json:"background-color,omitempty"`
	Opacity *Interpolated `json:"background-opacity,omitempty"`
}

type LinePaint struct {
	Color   *Color        `json:"line-color,omitempty"`
	Opacity *Interpolated `json:"line-opacity,omitempty"`
	Width   *Interpolated `json:"line-width,omitempty"`
}

type FillPaint struct {
	Color   *Color        `json:"fill-color,omitempty"`
	Opacity *Interpolated `json:"fill-opacity,omitempty"`
}

type RasterPaint struct {
	Opacity *Interpolated `json:"raster-opacity,omitempty"`
}

// LayerPaint is the tagged paint variant of a style layer. Exactly one
// field is non-nil, selected by the layer's "type" tag.
type LayerPaint struct {
	Background *BackgroundPaint
	Line       *LinePaint
	Fill       *FillPaint
	Raster     *RasterPaint
}

// ResolveColor resolves the paint's color at the given zoom, applying the
// interpolated opacity as the alpha channel. It reports false if the
// paint carries no color (raster paints, or no color authored).
func (p LayerPaint) ResolveColor(zoom float64) (csscolorparser.Color, bool) {
	switch {
	case p.Background != nil:
		return resolveColor(p.Background.Color, p.Background.Opacity, zoom)
	case p.Line != nil:
		return resolveColor(p.Line.Color, p.Line.Opacity, zoom)
	case p.Fill != nil:
		return resolveColor(p.Fill.Color, p.Fill.Opacity, zoom)
	}
	return csscolorparser.Color{}, false
}

func resolveColor(color *Color, opacity *Interpolated, zoom float64) (csscolorparser.Color, bool) {
	if color == nil {
		return csscolorparser.Color{}, false
	}
	resolved := color.Color
	if opacity != nil {
		if alpha, ok := opacity.Interpolate(zoom); ok {
			resolved.A = alpha
		}
	}
	return resolved, true
}

// StyleLayer is one parsed layer of a style document. Layers are parsed
// once and immutable afterwards; the vector tile processor only
// references them.
type StyleLayer struct {
	// Index is the layer's position in the style document, which defines
	// draw order.
	Index       int
	ID          string
	Type        string
	MinZoom     *float64
	MaxZoom     *float64
	Metadata    map[string]string
	Source      *string
	SourceLayer *string
	Filter      *Filter
	Paint       *LayerPaint
}

func (l *StyleLayer) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string            `json:"id"`
		Type        string            `json:"type"`
		MinZoom     *float64          `json:"minzoom"`
		MaxZoom     *float64          `json:"maxzoom"`
		Metadata    map[string]string `json:"metadata"`
		Source      *string           `json:"source"`
		SourceLayer *string           `json:"source-layer"`
		Filter      *Filter           `json:"filter"`
		Paint       json.RawMessage   `json:"paint"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ID = raw.ID
	l.Type = raw.Type
	l.MinZoom = raw.MinZoom
	l.MaxZoom = raw.MaxZoom
	l.Metadata = raw.Metadata
	l.Source = raw.Source
	l.SourceLayer = raw.SourceLayer
	l.Filter = raw.Filter
	l.Paint = nil

	if len(raw.Paint) == 0 {
		return nil
	}
	paint := &LayerPaint{}
	var err error
	switch raw.Type {
	case "background":
		paint.Background = &BackgroundPaint{}
		err = json.Unmarshal(raw.Paint, paint.Background)
	case "line":
		paint.Line = &LinePaint{}
		err = json.Unmarshal(raw.Paint, paint.Line)
	case "fill":
		paint.Fill = &FillPaint{}
		err = json.Unmarshal(raw.Paint, paint.Fill)
	case "raster":
		paint.Raster = &RasterPaint{}
		err = json.Unmarshal(raw.Paint, paint.Raster)
	default:
		// Unhandled layer types keep their identity but carry no paint.
		return nil
	}
	if err != nil {
		return fmt.Errorf("style: layer %q paint: %w", raw.ID, err)
	}
	l.Paint = paint
	return nil
}

// Style is a parsed style document: an ordered list of layers.
// A style is read-only after parsing and safe to share across
// concurrently running tile pipelines.
type Style struct {
	Version int          `json:"version"`
	Name    string       `json:"name"`
	Layers  []StyleLayer `json:"layers"`
}

// Parse reads a style document from JSON and assigns layer draw order.
func Parse(data []byte) (*Style, error) {
	style := &Style{}
	if err := json.Unmarshal(data, style); err != nil {
		return nil, fmt.Errorf("style: parse: %w", err)
	}
	for i := range style.Layers {
		style.Layers[i].Index = i
	}
	return style, nil
}

// LayersForSource returns the style layers whose source-layer matches the
// given tile layer name, in draw order.
func (s *Style) LayersForSource(sourceLayer string) []*StyleLayer {
	var matched []*StyleLayer
	for i := range s.Layers {
		layer := &s.Layers[i]
		if layer.SourceLayer != nil && *layer.SourceLayer == sourceLayer {
			matched = append(matched, layer)
		}
	}
	return matched
}
