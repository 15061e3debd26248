package keys

import (
	"reflect"
	"strconv"
	"sync"
)

// Key identifies a dependency in the registry. It is a plain value type:
// the engine compares keys by value and never inspects types at
// resolution time. A key is the printable name of a Go type, optionally
// suffixed with "#qualifier" for named bindings.
type Key string

func (k Key) String() string {
	return string(k)
}

// Qualified returns a copy of k carrying the given qualifier.
func (k Key) Qualified(name string) Key {
	return k + "#" + Key(name)
}

var keyCache sync.Map // reflect.Type -> Key

// For derives the dependency key for type T.
func For[T any]() Key {
	return fromType(typeOf[T]())
}

// Named derives the dependency key for type T with a qualifier.
func Named[T any](name string) Key {
	return For[T]().Qualified(name)
}

// FromValue derives the dependency key for the dynamic type of v.
func FromValue(v any) Key {
	if v == nil {
		return "<nil>"
	}
	return fromType(reflect.TypeOf(v))
}

// TypeName returns the short display name of T, used in error messages.
func TypeName[T any]() string {
	return typeOf[T]().String()
}

func typeOf[T any]() reflect.Type {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// T is an interface type.
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return t
}

func fromType(t reflect.Type) Key {
	if cached, ok := keyCache.Load(t); ok {
		return cached.(Key)
	}
	k := Key(render(t))
	keyCache.Store(t, k)
	return k
}

func render(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + render(t.Elem())
	case reflect.Slice:
		return "[]" + render(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + render(t.Elem())
	case reflect.Map:
		return "map[" + render(t.Key()) + "]" + render(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + render(t.Elem())
		case reflect.SendDir:
			return "chan<- " + render(t.Elem())
		default:
			return "chan " + render(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
}

// IsNil reports whether v is nil, including typed nils hidden behind an
// interface value.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Join renders a key chain as "a -> b -> c" for error payloads.
func Join(chain []Key) string {
	switch len(chain) {
	case 0:
		return ""
	case 1:
		return string(chain[0])
	}
	n := 0
	for _, k := range chain {
		n += len(k)
	}
	buf := make([]byte, 0, n+4*(len(chain)-1))
	for i, k := range chain {
		if i > 0 {
			buf = append(buf, " -> "...)
		}
		buf = append(buf, k...)
	}
	return string(buf)
}
