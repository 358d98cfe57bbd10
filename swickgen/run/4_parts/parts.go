// Package parts derives, for one protocol function, every piece of text the mock emitter needs: generic clause,
// argument lists, matcher predicate, result type and the function identity string that correlates generated calls
// with registered stubs and expectations.
package parts

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	config "github.com/toejough/swickgen/swickgen/run/1_config"
	synth "github.com/toejough/swickgen/swickgen/run/3_synth"
	"github.com/toejough/swickgen/swickgen/run/model"
)

// Exported variables.
var (
	// ErrUnsupported matches every SkipError.
	ErrUnsupported = errors.New("unsupported function")
)

// Param holds the derived text for one parameter, at position Index.
type Param struct {
	Index              int
	GenericName        string // "A0"
	LocalName          string // "a0"
	TypeName           string // "Int"
	Declaration        string // "b a1: Int"
	MatcherDeclaration string // "b a1: A1"
	GenericParam       string // "A1: Swick.Matcher"
	Requirement        string // "A1.MatchingType == Int"
	Predicate          string // "a1.valueIsMatching(args.1)"
}

// Parts is everything the emitter renders for one function.
//
// For `func sum(a: Int, b: Int) -> Int`:
//
//	GenericParams    <A0: Swick.Matcher, A1: Swick.Matcher where A0.MatchingType == Int, A1.MatchingType == Int>
//	Arguments        a0: Int, b a1: Int
//	MatcherArguments a0: A0, b a1: A1
//	ArgumentTypes    Int, Int
//	ArgumentNames    a0, a1
//	MatchingFuncs    a0.valueIsMatching(args.0) && a1.valueIsMatching(args.1)
//	Result           Int
//	FunctionID       sum(a0: Int, b a1: Int)->Int
//	StubBuilder      Swick.StubForFunctionBuilder<(Int, Int), Int>
type Parts struct {
	Name             string
	Params           []Param
	GenericParams    string
	Arguments        string
	MatcherArguments string
	ArgumentTypes    string
	ArgumentNames    string
	MatchingFuncs    string
	Result           string
	Throwing         string // "throws", "rethrows" or ""
	CallTry          string // "try" when the function throws, otherwise "try!"
	FunctionID       string
	StubBuilder      string
}

// SkipError reports a function the generator declines to mock. Diagnostic is the text emitted in place of the
// function.
type SkipError struct {
	Func       string
	Diagnostic string
}

func (e *SkipError) Error() string {
	return e.Diagnostic
}

// Is reports ErrUnsupported as matching.
func (e *SkipError) Is(target error) bool {
	return target == ErrUnsupported
}

// Derive computes the Parts of fn, or a *SkipError for operators and curried functions.
func Derive(fn model.Func, runtime config.Runtime) (Parts, error) {
	name := fn.Name.Text

	if fn.Name.Kind == model.NameOperator {
		return Parts{}, &SkipError{
			Func:       name,
			Diagnostic: fmt.Sprintf("Operator is not handled: %s; operators aren't supported yet.", name),
		}
	}

	if fn.Signature.IsCurried() {
		return Parts{}, &SkipError{
			Func:       name,
			Diagnostic: fmt.Sprintf("Function is not handled: %s; currying is not supported.", name),
		}
	}

	params := make([]Param, len(fn.Signature.Parameters))
	for index, parameter := range fn.Signature.Parameters {
		params[index] = deriveParam(index, parameter, runtime)
	}

	result := synth.Result(fn.Signature.Result)
	arguments := joinWith(params, func(p Param) string { return p.Declaration }, ", ")
	argumentTypes := joinWith(params, func(p Param) string { return p.TypeName }, ", ")

	return Parts{
		Name:             name,
		Params:           params,
		GenericParams:    genericClause(params),
		Arguments:        arguments,
		MatcherArguments: joinWith(params, func(p Param) string { return p.MatcherDeclaration }, ", "),
		ArgumentTypes:    argumentTypes,
		ArgumentNames:    joinWith(params, func(p Param) string { return p.LocalName }, ", "),
		MatchingFuncs:    matchingFuncs(params),
		Result:           result,
		Throwing:         synth.Throwing(fn.Signature.Throwing),
		CallTry:          callTry(fn.Signature.Throwing),
		FunctionID:       FunctionID(name, arguments, result),
		StubBuilder:      fmt.Sprintf("%s<(%s), %s>", runtime.Qualify("StubForFunctionBuilder"), argumentTypes, result),
	}, nil
}

// FunctionID is the key the runtime uses to correlate a call with its stubs and expectations:
// "{name}({arguments})->{result}".
func FunctionID(name, arguments, result string) string {
	return name + "(" + arguments + ")->" + result
}

func callTry(throwing model.Throwing) string {
	if throwing == model.Throws {
		return "try"
	}

	return "try!"
}

func deriveParam(index int, parameter model.Parameter, runtime config.Runtime) Param {
	genericName := fmt.Sprintf("A%d", index)
	localName := fmt.Sprintf("a%d", index)
	typeName := synth.Type(parameter.Type)

	labelled := localName
	if external := externalName(index, parameter); external != nil {
		labelled = synth.ParamName(*external) + " " + localName
	}

	return Param{
		Index:              index,
		GenericName:        genericName,
		LocalName:          localName,
		TypeName:           typeName,
		Declaration:        labelled + ": " + typeName,
		MatcherDeclaration: labelled + ": " + genericName,
		GenericParam:       genericName + ": " + runtime.Qualify("Matcher"),
		Requirement:        genericName + ".MatchingType == " + typeName,
		Predicate:          fmt.Sprintf("%s.valueIsMatching(args.%d)", localName, index),
	}
}

// externalName is the argument label callers use. Without an explicit one, every parameter but the first is
// labelled by its local name.
func externalName(index int, parameter model.Parameter) *model.Name {
	if parameter.ExternalName != nil {
		return parameter.ExternalName
	}

	if index == 0 {
		return nil
	}

	local := parameter.LocalName

	return &local
}

func genericClause(params []Param) string {
	if len(params) == 0 {
		return ""
	}

	return "<" +
		joinWith(params, func(p Param) string { return p.GenericParam }, ", ") +
		" where " +
		joinWith(params, func(p Param) string { return p.Requirement }, ", ") +
		">"
}

// matchingFuncs is the body of the matcher closure. With no arguments every call matches.
func matchingFuncs(params []Param) string {
	if len(params) == 0 {
		return "true"
	}

	return joinWith(params, func(p Param) string { return p.Predicate }, " && ")
}

// joinWith joins a slice of items into a string using a format function and separator.
func joinWith[T any](items []T, format func(T) string, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = format(item)
	}

	return strings.Join(parts, sep)
}
