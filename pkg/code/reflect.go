package code

import (
	"fmt"
	"reflect"
	"runtime"
)

// Initializer is implemented by classes that need setup after allocation.
type Initializer interface {
	Init() error
}

// Class returns the class value for T, suitable for a module attribute.
func Class[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// IsCallable reports whether v is a function.
func (c *Catalog) IsCallable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

// IsClass reports whether v is a struct type or pointer-to-struct type.
func (c *Catalog) IsClass(v any) bool {
	t, ok := v.(reflect.Type)
	if !ok {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// TryParameterCount returns the number of parameters of a function. The
// boolean is false when v cannot be introspected.
func (c *Catalog) TryParameterCount(v any) (int, bool) {
	if !c.IsCallable(v) {
		return 0, false
	}
	return reflect.TypeOf(v).NumIn(), true
}

// Instantiate allocates a zero value of class and runs its Init method
// when present. It returns a pointer to the new value.
func (c *Catalog) Instantiate(class any) (inst any, err error) {
	t, ok := class.(reflect.Type)
	if !ok || !c.IsClass(class) {
		return nil, fmt.Errorf("%v is not a class", class)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	defer func() {
		if r := recover(); r != nil {
			inst, err = nil, fmt.Errorf("failed to instantiate %s: panic: %v", t, r)
		}
	}()

	v := reflect.New(t).Interface()
	if initer, ok := v.(Initializer); ok {
		if err := initer.Init(); err != nil {
			return nil, fmt.Errorf("failed to instantiate %s: %w", t, err)
		}
	}
	return v, nil
}

// FuncName returns the runtime symbol of a function value, or "" for
// anything else.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return f.Name()
}
