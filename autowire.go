package depot

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// In is a marker type that should be embedded in structs to indicate
// they are parameter objects. Fields of the struct will be treated as
// dependencies to inject.
//
// Example:
//
//	type ServiceParams struct {
//	    depot.In
//
//	    DB     *Database
//	    Logger *Logger `optional:"true"`
//	    Cache  Cache   `name:"redis"`
//	}
type In struct{}

var (
	inType       = reflect.TypeFor[In]()
	errorType    = reflect.TypeFor[error]()
	resolverType = reflect.TypeFor[Resolver]()
)

// autowireInfo holds analyzed constructor metadata
type autowireInfo struct {
	fn       reflect.Value
	params   []paramInfo
	result   reflect.Type
	hasError bool
}

// paramInfo describes a constructor parameter or a field of an In struct
type paramInfo struct {
	typ      reflect.Type
	name     string      // From `name:"..."` tag, empty for type-based lookup
	optional bool        // From `optional:"true"` tag
	resolver bool        // The parameter receives the Resolver itself
	index    int         // Position in function parameters or struct field index
	isIn     bool        // Whether this is an In struct (expanded into multiple deps)
	inFields []paramInfo // Expanded fields if isIn is true
}

// Autowire installs a plain Go constructor. Its parameters are resolved from
// the container for zero-argument resolution, and the same function is
// installed as an argument factory keyed by its parameter types, so callers
// may also supply the arguments themselves with LookupArgs. A Resolver
// parameter receives the resolver and is not part of the signature.
//
// The function must return V or (V, error).
//
// Example:
//
//	func NewUserService(db *Database, logger *Logger) *UserService { ... }
//
//	depot.Define[*UserService](depot.Autowire(NewUserService))
func Autowire(fn any) Option {
	return optionFunc(func(d *Definition) {
		info, err := analyzeConstructor(fn)
		if err != nil {
			d.fail("%v", err)
			return
		}
		if !d.setStrategy(KindConstructor, info.result) {
			return
		}

		d.constructor = func(r Resolver) (any, error) {
			args := make([]reflect.Value, len(info.params))
			for i, param := range info.params {
				v, err := resolveParam(r, param)
				if err != nil {
					return nil, err
				}
				args[i] = v
			}
			return info.call(args)
		}

		var signature []reflect.Type
		for _, param := range info.params {
			if !param.resolver {
				signature = append(signature, param.typ)
			}
		}
		if len(signature) == 0 {
			return
		}

		d.args = SignatureOf(signature...)
		d.factory = func(r Resolver, supplied []any) (any, error) {
			if len(supplied) != len(signature) {
				return nil, fmt.Errorf("expected %d arguments, got %d", len(signature), len(supplied))
			}
			args := make([]reflect.Value, len(info.params))
			next := 0
			for i, param := range info.params {
				if param.resolver {
					args[i] = reflect.ValueOf(&r).Elem()
					continue
				}
				v, err := argValue(param.typ, supplied[next])
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", next, err)
				}
				args[i] = v
				next++
			}
			return info.call(args)
		}
	})
}

// analyzeConstructor inspects a constructor function and extracts its
// dependency and result information.
func analyzeConstructor(constructor any) (*autowireInfo, error) {
	if constructor == nil {
		return nil, errors.New("constructor is nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.New("constructor must be a function")
	}
	if fnType.IsVariadic() {
		return nil, errors.New("constructor cannot be variadic")
	}

	info := &autowireInfo{fn: fnValue}

	// Analyze parameters
	for i := 0; i < fnType.NumIn(); i++ {
		param, err := analyzeParam(fnType.In(i), i)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		info.params = append(info.params, param)
	}

	// Analyze results
	switch fnType.NumOut() {
	case 1:
		info.result = fnType.Out(0)
	case 2:
		if fnType.Out(1) != errorType {
			return nil, errors.New("second return value must be error")
		}
		info.result = fnType.Out(0)
		info.hasError = true
	default:
		return nil, errors.New("constructor must return a value and optionally an error")
	}

	if info.result == errorType {
		return nil, errors.New("constructor must return at least one non-error value")
	}

	return info, nil
}

// analyzeParam analyzes a single parameter type
func analyzeParam(t reflect.Type, index int) (paramInfo, error) {
	param := paramInfo{
		typ:      t,
		index:    index,
		resolver: t == resolverType,
	}

	if isInStruct(t) {
		param.isIn = true
		fields, err := expandInStruct(t)
		if err != nil {
			return param, err
		}
		param.inFields = fields
	}

	return param, nil
}

// isInStruct checks if a type embeds depot.In
func isInStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && (field.Type == inType || isInStruct(field.Type)) {
			return true
		}
	}
	return false
}

// expandInStruct expands an In struct into its field dependencies
func expandInStruct(t reflect.Type) ([]paramInfo, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var params []paramInfo

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip the embedded In marker
		if field.Anonymous && (field.Type == inType || isInStruct(field.Type)) {
			continue
		}

		if !field.IsExported() {
			return nil, fmt.Errorf("field %s of %s is unexported", field.Name, typeIdentity(t))
		}

		params = append(params, paramInfo{
			typ:      field.Type,
			index:    i,
			name:     field.Tag.Get("name"),
			optional: strings.EqualFold(field.Tag.Get("optional"), "true"),
			resolver: field.Type == resolverType,
		})
	}

	return params, nil
}

// call invokes the constructor and splits off the error result.
func (info *autowireInfo) call(args []reflect.Value) (any, error) {
	results := info.fn.Call(args)

	if info.hasError {
		if errResult := results[1]; !errResult.IsNil() {
			return nil, errResult.Interface().(error)
		}
	}

	return results[0].Interface(), nil
}

// resolveParam resolves one constructor parameter.
func resolveParam(r Resolver, param paramInfo) (reflect.Value, error) {
	switch {
	case param.resolver:
		return reflect.ValueOf(&r).Elem(), nil
	case param.isIn:
		return resolveInStruct(r, param)
	}

	instance, err := resolveType(r, param.typ, param.name)
	if err != nil {
		if param.optional {
			return reflect.Zero(param.typ), nil
		}
		return reflect.Value{}, err
	}

	return valueOf(param.typ, instance), nil
}

// resolveInStruct creates and populates an In struct with resolved dependencies
func resolveInStruct(r Resolver, param paramInfo) (reflect.Value, error) {
	structType := param.typ
	isPtr := structType.Kind() == reflect.Pointer
	if isPtr {
		structType = structType.Elem()
	}

	ptr := reflect.New(structType)
	structValue := ptr.Elem()

	for _, field := range param.inFields {
		v, err := resolveParam(r, field)
		if err != nil {
			return reflect.Value{}, err
		}
		structValue.Field(field.index).Set(v)
	}

	if isPtr {
		return ptr, nil
	}

	return structValue, nil
}

// resolveType resolves the definition installed for a reflected type.
func resolveType(r Resolver, t reflect.Type, name string) (any, error) {
	return r.resolve(NewKey(CapabilityOf(t), name, ""), call{want: t})
}

// argValue converts a caller-supplied argument to parameter type t. A nil
// argument becomes the zero value.
func argValue(t reflect.Type, a any) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", typeIdentity(v.Type()), typeIdentity(t))
	}
	return valueOf(t, a), nil
}

// valueOf wraps instance as a value of type t so interface-typed parameters
// and fields receive an interface value.
func valueOf(t reflect.Type, instance any) reflect.Value {
	v := reflect.New(t).Elem()
	if instance != nil {
		v.Set(reflect.ValueOf(instance))
	}
	return v
}

// PropertyName injects the named struct fields after construction. Each
// field's type is resolved from the container; fields that are already set
// are left alone. When the field type is an unregistered pointer to a struct,
// a fresh zero value is assigned instead.
func PropertyName(names ...string) Option {
	return optionFunc(func(d *Definition) {
		for _, name := range names {
			if name == "" {
				d.fail("property name cannot be empty")
				continue
			}
			d.propertyNames = append(d.propertyNames, name)
		}
	})
}

// AutowireFields injects every struct field tagged `inject:"[name]"` after
// construction. An empty tag value resolves the field type unnamed. Fields
// that are already set, and dependencies that cannot be resolved, are
// skipped.
//
// Example:
//
//	type Handler struct {
//	    Store  Store   `inject:"primary"`
//	    Logger *Logger `inject:""`
//	}
func AutowireFields() Option {
	return optionFunc(func(d *Definition) {
		d.autowireTags = true
	})
}

// checkPropertyNames verifies the named fields exist on the implementation
// type when it is a known struct pointer.
func (d *Definition) checkPropertyNames() error {
	if len(d.propertyNames) == 0 || d.implType == nil {
		return nil
	}
	t := d.implType
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return ErrInvalidDefinition(d.String(),
			fmt.Sprintf("named properties need a struct pointer, definition builds %s", typeIdentity(t)))
	}

	var errs []string
	for _, name := range d.propertyNames {
		field, ok := t.Elem().FieldByName(name)
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("no field %s", name))
		case !field.IsExported():
			errs = append(errs, fmt.Sprintf("field %s is unexported", name))
		}
	}
	if len(errs) > 0 {
		return ErrInvalidDefinition(d.String(), strings.Join(errs, ", "))
	}
	return nil
}

// structOf returns the addressable struct behind instance.
func structOf(instance any) (reflect.Value, bool) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v.Elem(), true
}

// injectFieldsByName fills the named fields of a struct pointer.
func injectFieldsByName(r Resolver, instance any, names []string) {
	sv, ok := structOf(instance)
	if !ok {
		return
	}

	for _, name := range names {
		field := sv.FieldByName(name)
		if !field.IsValid() || !field.CanSet() || !field.IsZero() {
			continue
		}

		if dep, err := resolveType(r, field.Type(), ""); err == nil {
			field.Set(valueOf(field.Type(), dep))
			continue
		}

		if t := field.Type(); t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
			field.Set(reflect.New(t.Elem()))
		}
	}
}

// injectTaggedFields fills the fields tagged for injection.
func injectTaggedFields(r Resolver, instance any) {
	sv, ok := structOf(instance)
	if !ok {
		return
	}

	t := sv.Type()
	for i := 0; i < t.NumField(); i++ {
		name, tagged := t.Field(i).Tag.Lookup("inject")
		if !tagged {
			continue
		}

		field := sv.Field(i)
		if !field.CanSet() || !field.IsZero() {
			continue
		}

		if dep, err := resolveType(r, field.Type(), name); err == nil {
			field.Set(valueOf(field.Type(), dep))
		}
	}
}
