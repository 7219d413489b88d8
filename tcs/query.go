package tcs

import (
	"errors"
	"reflect"

	"github.com/aidangoettsch/go-tilepipe/tile"
)

// ErrAliasedBorrow reports a second exclusive borrow of a component type
// within one query session. This is a programming error in the caller;
// it is surfaced as a structured error so sessions fail deterministically
// instead of racing.
var ErrAliasedBorrow = errors.New("tcs: component type already borrowed exclusively in this session")

// Query returns the first component of type T stored at the coordinates.
// It reports false if the tile is absent, unaddressable, or holds no
// component of that type. T must be the stored concrete type; mutable
// components are stored and queried as pointers.
func Query[T Component](t *Tiles, coords tile.Coords) (T, bool) {
	var zero T
	component, ok := t.lookup(coords, reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, false
	}
	return component.(T), true
}

func (t *Tiles) lookup(coords tile.Coords, want reflect.Type) (Component, bool) {
	key, ok := coords.Quadkey()
	if !ok {
		return nil, false
	}
	e, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	for _, component := range e.components {
		if reflect.TypeOf(component) == want {
			return component, true
		}
	}
	return nil, false
}

// Session tracks exclusive borrows across the queries of one call graph.
// Sessions are cheap; create one per composite query.
type Session struct {
	tiles    *Tiles
	borrowed map[reflect.Type]bool
}

// NewSession opens a query session on the store.
func (t *Tiles) NewSession() *Session {
	return &Session{tiles: t, borrowed: map[reflect.Type]bool{}}
}

// Exclusive returns the component of type T at the coordinates with an
// exclusive claim for the rest of the session. A second exclusive claim
// of the same type in this session returns ErrAliasedBorrow. An absent
// component reports false with no error; the claim is still recorded.
func Exclusive[T Component](s *Session, coords tile.Coords) (T, bool, error) {
	var zero T
	want := reflect.TypeOf((*T)(nil)).Elem()
	if s.borrowed[want] {
		return zero, false, ErrAliasedBorrow
	}
	s.borrowed[want] = true

	component, ok := s.tiles.lookup(coords, want)
	if !ok {
		return zero, false, nil
	}
	return component.(T), true, nil
}

// Spec names one component request of a composite query.
type Spec struct {
	Type      reflect.Type
	Exclusive bool
}

// SpecOf builds the Spec for component type T.
func SpecOf[T Component](exclusive bool) Spec {
	return Spec{Type: reflect.TypeOf((*T)(nil)).Elem(), Exclusive: exclusive}
}

// Resolve evaluates a composite query all-or-nothing: the results appear
// in spec order, and if any sub-query finds nothing the whole query
// returns nil. Exclusive claims granted before a failing sub-query
// remain held by the session for its lifetime. Aliasing violations
// return ErrAliasedBorrow.
func (s *Session) Resolve(coords tile.Coords, specs ...Spec) ([]Component, error) {
	results := make([]Component, 0, len(specs))
	complete := true
	for _, spec := range specs {
		if spec.Exclusive {
			if s.borrowed[spec.Type] {
				return nil, ErrAliasedBorrow
			}
			s.borrowed[spec.Type] = true
		}
		component, ok := s.tiles.lookup(coords, spec.Type)
		if !ok {
			complete = false
			continue
		}
		results = append(results, component)
	}
	if !complete {
		return nil, nil
	}
	return results, nil
}
