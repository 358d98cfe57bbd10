// Package synth renders model types back to their Swift source text.
package synth

import (
	"strings"

	"github.com/toejough/swickgen/swickgen/run/model"
)

// Exported constants.
const (
	// Void is the result text of a function that declares no result.
	Void = "Void"

	UnsupportedTuple               = "Tuple UNSUPPORTED"
	UnsupportedProtocolComposition = "ProtocolComposition UNSUPPORTED"
)

// ParamName renders a parameter name, "_" for the anonymous name.
func ParamName(name model.Name) string {
	if name.IsAnonymous() {
		return "_"
	}

	return string(name)
}

// Result renders a function result type, Void when none is declared.
func Result(result model.Type) string {
	if result == nil {
		return Void
	}

	return Type(result)
}

// Throwing renders a throwing marker. NotThrowing renders as the empty string.
func Throwing(throwing model.Throwing) string {
	switch throwing {
	case model.Throws:
		return "throws"
	case model.Rethrows:
		return "rethrows"
	case model.NotThrowing:
		return ""
	}

	return ""
}

// Type renders a type. Every variant has an output; unsupported ones render as a fixed placeholder and a nil
// type renders as the empty string.
//
//nolint:cyclop // Type-switch dispatcher over the closed set of type variants
func Type(typ model.Type) string {
	switch typedType := typ.(type) {
	case model.Array:
		return "[" + Type(typedType.Element) + "]"
	case model.Dictionary:
		return "[" + Type(typedType.Key) + ":" + Type(typedType.Value) + "]"
	case model.Optional:
		return Type(typedType.Wrapped) + "?"
	case model.ImplicitlyUnwrappedOptional:
		// Renders "1", not "!". Downstream consumers match this text; keep it.
		return Type(typedType.Wrapped) + "1"
	case model.Closure:
		return closure(typedType)
	case model.Identifier:
		return joinWith(typedType.Elements, identifierElement, ".")
	case model.ProtocolType:
		return Type(typedType.Base) + ".Protocol"
	case model.TypeOfType:
		return Type(typedType.Base) + ".Type"
	case model.Tuple:
		return UnsupportedTuple
	case model.ProtocolComposition:
		return UnsupportedProtocolComposition
	default:
		return ""
	}
}

func closure(closureType model.Closure) string {
	var buf strings.Builder

	buf.WriteString(Type(closureType.Argument))

	if closureType.Throwing != model.NotThrowing {
		buf.WriteString(" ")
		buf.WriteString(Throwing(closureType.Throwing))
	}

	buf.WriteString(" -> ")
	buf.WriteString(Type(closureType.Return))

	return buf.String()
}

func identifierElement(element model.IdentifierElement) string {
	if len(element.GenericArgs) == 0 {
		return element.Name
	}

	return element.Name + "<" + joinWith(element.GenericArgs, Type, ", ") + ">"
}

// joinWith joins a slice of items into a string using a format function and separator.
func joinWith[T any](items []T, format func(T) string, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = format(item)
	}

	return strings.Join(parts, sep)
}
