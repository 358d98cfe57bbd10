// Package model holds the structural description of a source file's protocol declarations, as produced by a parser
// front end and consumed by the synthesis stages.
package model

// File is the parsed content of one source file.
type File struct {
	Protocols []Protocol
}

// Protocol is an interface-like declaration listing required functions.
type Protocol struct {
	Name  string
	Funcs []Func
}

// Func is one function requirement of a protocol.
type Func struct {
	Name      FuncName
	Signature Signature
}

// NameKind distinguishes plain function names from operator names.
type NameKind int

// NameKind values.
const (
	NamePlain NameKind = iota
	NameOperator
)

// FuncName is the name of a function requirement.
type FuncName struct {
	Kind NameKind
	Text string
}

// PlainName returns a plain function name.
func PlainName(text string) FuncName {
	return FuncName{Kind: NamePlain, Text: text}
}

// OperatorName returns an operator function name.
func OperatorName(text string) FuncName {
	return FuncName{Kind: NameOperator, Text: text}
}

// Signature is a function's parameters, throwing marker and result.
type Signature struct {
	// CurryGroups is the number of parameter clauses. Anything above one is a curried function.
	CurryGroups int
	Parameters  []Parameter
	Throwing    Throwing
	// Result is nil when no result type is declared.
	Result Type
}

// IsCurried reports whether the signature has more than one parameter clause.
func (s Signature) IsCurried() bool {
	return s.CurryGroups > 1
}

// Throwing is a function's throwing marker.
type Throwing int

// Throwing values.
const (
	NotThrowing Throwing = iota
	Throws
	Rethrows
)

// Name is a parameter name. The empty Name is the anonymous name.
type Name string

// Anonymous is the anonymous parameter name, written "_".
const Anonymous Name = ""

// IsAnonymous reports whether the name is the anonymous name.
func (n Name) IsAnonymous() bool {
	return n == Anonymous
}

// Parameter is one declared function parameter.
type Parameter struct {
	// ExternalName is nil when no external (argument label) name is declared.
	ExternalName *Name
	LocalName    Name
	Type         Type
}

// ExternalNamed returns a pointer to name, for use as Parameter.ExternalName.
func ExternalNamed(name Name) *Name {
	return &name
}
