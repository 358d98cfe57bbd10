package model

// Type is the closed set of type descriptions a parser can produce.
type Type interface {
	isType()
}

// Array is `[Element]`.
type Array struct {
	Element Type
}

// Dictionary is `[Key: Value]`.
type Dictionary struct {
	Key   Type
	Value Type
}

// Optional is `Wrapped?`.
type Optional struct {
	Wrapped Type
}

// ImplicitlyUnwrappedOptional is `Wrapped!`.
type ImplicitlyUnwrappedOptional struct {
	Wrapped Type
}

// Closure is a function type.
type Closure struct {
	Argument Type
	Throwing Throwing
	Return   Type
}

// IdentifierElement is one dot-separated segment of a type identifier.
type IdentifierElement struct {
	Name        string
	GenericArgs []Type
}

// Identifier is a possibly qualified, possibly generic named type, e.g. `Swift.Array<Int>`.
type Identifier struct {
	Elements []IdentifierElement
}

// ProtocolType is `Base.Protocol`.
type ProtocolType struct {
	Base Type
}

// TypeOfType is `Base.Type`.
type TypeOfType struct {
	Base Type
}

// Tuple is a tuple type. Synthesis does not support it.
type Tuple struct {
	Elements []Type
}

// ProtocolComposition is a composition of protocols. Synthesis does not support it.
type ProtocolComposition struct {
	Protocols []Type
}

func (Array) isType()                       {}
func (Dictionary) isType()                  {}
func (Optional) isType()                    {}
func (ImplicitlyUnwrappedOptional) isType() {}
func (Closure) isType()                     {}
func (Identifier) isType()                  {}
func (ProtocolType) isType()                {}
func (TypeOfType) isType()                  {}
func (Tuple) isType()                       {}
func (ProtocolComposition) isType()         {}

// Named returns an identifier type made of the given dot-separated segments, none of them generic.
func Named(names ...string) Identifier {
	elements := make([]IdentifierElement, len(names))
	for i, name := range names {
		elements[i] = IdentifierElement{Name: name}
	}

	return Identifier{Elements: elements}
}

// Generic returns a single-segment identifier type with generic arguments.
func Generic(name string, args ...Type) Identifier {
	return Identifier{Elements: []IdentifierElement{{Name: name, GenericArgs: args}}}
}
