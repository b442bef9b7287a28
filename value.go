// value.go
//
// The runtime value model. Value is a tagged sum over every kind a Veureka
// program can produce: nil, IEEE-754 numbers, immutable strings, booleans,
// ordered lists, insertion-ordered maps, user functions (closures), classes,
// class instances and host natives.
package veureka

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNil      ValueTag = iota // no payload
	VTNumber                   // float64
	VTString                   // string
	VTBool                     // bool
	VTList                     // []Value
	VTMap                      // *MapObject
	VTFunction                 // *Function
	VTClass                    // *Class
	VTInstance                 // *Instance
	VTNative                   // *NativeFunc
)

// Value is the universal runtime carrier used by the interpreter.
// The tag determines which Go type Data holds (see ValueTag).
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: VTNil}

// Primitive constructors.
func Num(f float64) Value   { return Value{Tag: VTNumber, Data: f} }
func Str(s string) Value    { return Value{Tag: VTString, Data: s} }
func Bool(b bool) Value     { return Value{Tag: VTBool, Data: b} }
func List(xs []Value) Value { return Value{Tag: VTList, Data: xs} }

// MapObject is an ordered map preserving key insertion order.
// Keys is the iteration order; Entries the storage. Last write wins and
// does not reorder the key.
type MapObject struct {
	Entries map[string]Value
	Keys    []string
}

// NewMapObject returns an empty ordered map value.
func NewMapObject() Value {
	return Value{Tag: VTMap, Data: &MapObject{Entries: map[string]Value{}}}
}

// Set binds key to v, appending the key on first insertion.
func (m *MapObject) Set(key string, v Value) {
	if _, ok := m.Entries[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

// Get retrieves the value for key; missing keys yield nil.
func (m *MapObject) Get(key string) Value {
	if v, ok := m.Entries[key]; ok {
		return v
	}
	return Nil
}

// Function is a user function: parameter names, a body of statements and
// the environment captured at definition time.
type Function struct {
	Params []string
	Body   []*Node
	Env    *Env
}

// FuncVal wraps a *Function into a Value.
func FuncVal(f *Function) Value { return Value{Tag: VTFunction, Data: f} }

// Method is one named class method.
type Method struct {
	Name string
	Fn   *Function
}

// Class holds a name and its methods in declaration order.
type Class struct {
	Name    string
	Methods []Method
}

// FindMethod returns the method named name, or nil.
func (c *Class) FindMethod(name string) *Function {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return c.Methods[i].Fn
		}
	}
	return nil
}

// Field is one named instance field.
type Field struct {
	Name  string
	Value Value
}

// Instance is a class instance with fields created on first assignment,
// kept in assignment order.
type Instance struct {
	Class  *Class
	Fields []Field
}

// GetField returns the field value and whether it exists.
func (in *Instance) GetField(name string) (Value, bool) {
	for i := range in.Fields {
		if in.Fields[i].Name == name {
			return in.Fields[i].Value, true
		}
	}
	return Nil, false
}

// SetField updates an existing field or appends a new one.
func (in *Instance) SetField(name string, v Value) {
	for i := range in.Fields {
		if in.Fields[i].Name == name {
			in.Fields[i].Value = v
			return
		}
	}
	in.Fields = append(in.Fields, Field{Name: name, Value: v})
}

// NativeFunc is an opaque callable implemented by the host.
type NativeFunc struct {
	Name string
	Fn   func(ip *Interpreter, args []Value) Value
}

// TypeName returns the type() name of a value.
func TypeName(v Value) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTNumber:
		return "number"
	case VTString:
		return "string"
	case VTBool:
		return "bool"
	case VTList:
		return "list"
	case VTMap:
		return "map"
	case VTFunction:
		return "function"
	case VTClass:
		return "class"
	case VTInstance:
		return "instance"
	case VTNative:
		return "native_function"
	default:
		return "unknown"
	}
}

// Truthy projects a value to a boolean: nil is false, booleans are
// themselves, numbers are nonzero, strings and lists are nonempty,
// everything else is true.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTNil:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTNumber:
		return v.Data.(float64) != 0
	case VTString:
		return len(v.Data.(string)) > 0
	case VTList:
		return len(v.Data.([]Value)) > 0
	default:
		return true
	}
}

// valuesEqual implements ==: values of different kinds are never equal;
// numbers compare by value, strings bytewise, booleans by value. Lists,
// maps, functions, classes and instances never compare equal.
func valuesEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNumber:
		return a.Data.(float64) == b.Data.(float64)
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	default:
		return false
	}
}

// toNumber coerces a value for numeric operators: numbers pass through,
// booleans count as 0/1, everything else is 0.
func toNumber(v Value) float64 {
	switch v.Tag {
	case VTNumber:
		return v.Data.(float64)
	case VTBool:
		if v.Data.(bool) {
			return 1
		}
		return 0
	default:
		return 0
	}
}
