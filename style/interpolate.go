package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidQuantity = errors.New("style: invalid interpolated quantity")

// Stop anchors an interpolated paint property: at Zoom the property
// resolves to Value.
type Stop struct {
	Zoom  float64
	Value float64
}

// Interpolated is a paint quantity that is either fixed or piecewise
// interpolated between zoom stops. Stops are expected to be sorted
// ascending by zoom; Interpolate does not sort but degrades to clamping
// when the precondition is violated.
type Interpolated struct {
	fixed bool
	value float64
	base  float64
	stops []Stop
}

// Fixed returns a quantity that resolves to v at every zoom.
func Fixed(v float64) Interpolated {
	return Interpolated{fixed: true, value: v}
}

// WithStops returns a quantity interpolated between stops. A base of 1
// interpolates linearly; any other base interpolates exponentially with
// the standard cartographic stop semantics.
func WithStops(base float64, stops ...Stop) Interpolated {
	return Interpolated{base: base, stops: stops}
}

// Interpolate resolves the quantity at the given zoom. It reports false
// only for an interpolated quantity with no stops, which is a style
// authoring anomaly rather than an error.
//
// Zooms below the first stop resolve to the first stop's value, zooms
// above the last to the last stop's value. A zoom exactly on a stop
// resolves to that stop's value.
func (q Interpolated) Interpolate(zoom float64) (float64, bool) {
	if q.fixed {
		return q.value, true
	}
	if len(q.stops) == 0 {
		log.WithField("zoom", zoom).Warn("interpolated quantity has no stops")
		return 0, false
	}

	for i := 0; i+1 < len(q.stops); i++ {
		a, b := q.stops[i], q.stops[i+1]
		if a.Zoom <= zoom && zoom <= b.Zoom {
			span := b.Zoom - a.Zoom
			progress := zoom - a.Zoom

			var factor float64
			switch {
			case span == 0:
				factor = 0
			case q.base == 1.0:
				factor = progress / span
			default:
				factor = (math.Pow(q.base, progress) - 1) / (math.Pow(q.base, span) - 1)
			}
			return a.Value + (b.Value-a.Value)*factor, true
		}
	}

	if zoom <= q.stops[0].Zoom {
		return q.stops[0].Value, true
	}
	return q.stops[len(q.stops)-1].Value, true
}

// UnmarshalJSON reads either a bare number (fixed) or an object of the
// form {"base": 1.4, "stops": [[zoom, value], ...]}. Base defaults to 1.
func (q *Interpolated) UnmarshalJSON(data []byte) error {
	var fixed float64
	if err := json.Unmarshal(data, &fixed); err == nil {
		*q = Fixed(fixed)
		return nil
	}

	var raw struct {
		Base  *float64    `json:"base"`
		Stops [][]float64 `json:"stops"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}

	base := 1.0
	if raw.Base != nil {
		base = *raw.Base
	}
	stops := make([]Stop, 0, len(raw.Stops))
	for _, pair := range raw.Stops {
		if len(pair) != 2 {
			return fmt.Errorf("%w: stop must be a [zoom, value] pair", ErrInvalidQuantity)
		}
		stops = append(stops, Stop{Zoom: pair[0], Value: pair[1]})
	}
	*q = WithStops(base, stops...)
	return nil
}
