package ir

// Func is one function of the input CFG. Values is the arena every
// ValueID in the function indexes into; Params lists the parameter
// values in declaration order.
type Func struct {
	Name    string
	Params  []ValueID
	RetType string
	Blocks  []Block
	Values  []Value
}

// Module is an ordered collection of functions. Read-only to lowering.
type Module struct {
	Funcs []*Func
}

// Value returns the arena entry for a handle.
func (f *Func) Value(id ValueID) *Value {
	return &f.Values[id]
}

// AddValue appends a value to the arena and returns its handle.
func (f *Func) AddValue(v Value) ValueID {
	id := ValueID(len(f.Values))
	f.Values = append(f.Values, v)
	return id
}
