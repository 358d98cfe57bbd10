package synth_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	synth "github.com/toejough/swickgen/swickgen/run/3_synth"
	"github.com/toejough/swickgen/swickgen/run/model"
)

// TestType verifies each variant renders to its Swift surface form.
//
//nolint:funlen // table-driven test with comprehensive test cases
func TestType(t *testing.T) {
	t.Parallel()

	str := model.Named("String")
	integer := model.Named("Int")

	tests := []struct {
		name     string
		input    model.Type
		expected string
	}{
		{name: "nil type", input: nil, expected: ""},
		{name: "identifier", input: str, expected: "String"},
		{name: "qualified identifier", input: model.Named("Swift", "Int"), expected: "Swift.Int"},
		{
			name:     "generic identifier",
			input:    model.Generic("Set", str),
			expected: "Set<String>",
		},
		{
			name: "qualified generic identifier with several arguments",
			input: model.Identifier{Elements: []model.IdentifierElement{
				{Name: "Foundation"},
				{Name: "Pair", GenericArgs: []model.Type{str, model.Optional{Wrapped: integer}}},
			}},
			expected: "Foundation.Pair<String, Int?>",
		},
		{name: "array", input: model.Array{Element: integer}, expected: "[Int]"},
		{
			name:     "dictionary",
			input:    model.Dictionary{Key: str, Value: model.Array{Element: integer}},
			expected: "[String:[Int]]",
		},
		{name: "optional array", input: model.Optional{Wrapped: model.Array{Element: str}}, expected: "[String]?"},
		{name: "implicitly unwrapped optional", input: model.ImplicitlyUnwrappedOptional{Wrapped: str}, expected: "String1"},
		{
			name:     "closure",
			input:    model.Closure{Argument: str, Return: integer},
			expected: "String -> Int",
		},
		{
			name:     "throwing closure",
			input:    model.Closure{Argument: str, Throwing: model.Throws, Return: model.Named("Void")},
			expected: "String throws -> Void",
		},
		{
			name:     "rethrowing closure returning closure",
			input:    model.Closure{Argument: str, Throwing: model.Rethrows, Return: model.Closure{Argument: integer, Return: integer}},
			expected: "String rethrows -> Int -> Int",
		},
		{name: "protocol type", input: model.ProtocolType{Base: model.Named("Equatable")}, expected: "Equatable.Protocol"},
		{name: "type of type", input: model.TypeOfType{Base: integer}, expected: "Int.Type"},
		{name: "tuple", input: model.Tuple{Elements: []model.Type{str, integer}}, expected: "Tuple UNSUPPORTED"},
		{
			name:     "protocol composition",
			input:    model.ProtocolComposition{Protocols: []model.Type{model.Named("A"), model.Named("B")}},
			expected: "ProtocolComposition UNSUPPORTED",
		},
		{
			name:     "unsupported nested in supported",
			input:    model.Array{Element: model.Tuple{}},
			expected: "[Tuple UNSUPPORTED]",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(synth.Type(test.input)).To(Equal(test.expected))
		})
	}
}

func TestResult(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(synth.Result(nil)).To(Equal("Void"))
	g.Expect(synth.Result(model.Optional{Wrapped: model.Named("Int")})).To(Equal("Int?"))
}

func TestThrowing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(synth.Throwing(model.Throws)).To(Equal("throws"))
	g.Expect(synth.Throwing(model.Rethrows)).To(Equal("rethrows"))
	g.Expect(synth.Throwing(model.NotThrowing)).To(BeEmpty())
}

func TestParamName(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(synth.ParamName(model.Anonymous)).To(Equal("_"))
	g.Expect(synth.ParamName("with")).To(Equal("with"))
}

// TestType_Compositional_Property proves every wrapper renders its children first and wraps them.
func TestType_Compositional_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		inner := typeGen(3).Draw(rt, "inner")
		other := typeGen(3).Draw(rt, "other")
		rendered := synth.Type(inner)
		otherRendered := synth.Type(other)

		checks := map[string]struct {
			got, want string
		}{
			"array":      {synth.Type(model.Array{Element: inner}), "[" + rendered + "]"},
			"dictionary": {synth.Type(model.Dictionary{Key: inner, Value: other}), "[" + rendered + ":" + otherRendered + "]"},
			"optional":   {synth.Type(model.Optional{Wrapped: inner}), rendered + "?"},
			"iuo":        {synth.Type(model.ImplicitlyUnwrappedOptional{Wrapped: inner}), rendered + "1"},
			"closure":    {synth.Type(model.Closure{Argument: inner, Return: other}), rendered + " -> " + otherRendered},
			"protocol":   {synth.Type(model.ProtocolType{Base: inner}), rendered + ".Protocol"},
			"type":       {synth.Type(model.TypeOfType{Base: inner}), rendered + ".Type"},
		}

		for name, check := range checks {
			if check.got != check.want {
				rt.Fatalf("%s: got %q, want %q", name, check.got, check.want)
			}
		}
	})
}

// TestType_Deterministic_Property proves rendering the same type twice gives the same text and never panics.
func TestType_Deterministic_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		typ := typeGen(4).Draw(rt, "type")

		first := synth.Type(typ)
		if second := synth.Type(typ); first != second {
			rt.Fatalf("rendering not deterministic: %q vs %q", first, second)
		}

		if strings.Contains(first, "\n") {
			rt.Fatalf("rendered type spans lines: %q", first)
		}
	})
}

func identifierGen() *rapid.Generator[model.Type] {
	return rapid.Custom(func(rt *rapid.T) model.Type {
		names := rapid.SliceOfN(rapid.StringMatching(`[A-Z][A-Za-z0-9]{0,8}`), 1, 3).Draw(rt, "names")
		return model.Named(names...)
	})
}

func typeGen(depth int) *rapid.Generator[model.Type] {
	if depth == 0 {
		return identifierGen()
	}

	return rapid.Custom(func(rt *rapid.T) model.Type {
		child := typeGen(depth - 1)

		switch rapid.IntRange(0, 10).Draw(rt, "kind") {
		case 0:
			return model.Array{Element: child.Draw(rt, "element")}
		case 1:
			return model.Dictionary{Key: child.Draw(rt, "key"), Value: child.Draw(rt, "value")}
		case 2:
			return model.Optional{Wrapped: child.Draw(rt, "wrapped")}
		case 3:
			return model.ImplicitlyUnwrappedOptional{Wrapped: child.Draw(rt, "wrapped")}
		case 4:
			return model.Closure{
				Argument: child.Draw(rt, "argument"),
				Throwing: rapid.SampledFrom([]model.Throwing{model.NotThrowing, model.Throws, model.Rethrows}).Draw(rt, "throwing"),
				Return:   child.Draw(rt, "return"),
			}
		case 5:
			return model.Generic(
				rapid.StringMatching(`[A-Z][a-z]{0,6}`).Draw(rt, "name"),
				rapid.SliceOfN(child, 1, 3).Draw(rt, "args")...,
			)
		case 6:
			return model.ProtocolType{Base: child.Draw(rt, "base")}
		case 7:
			return model.TypeOfType{Base: child.Draw(rt, "base")}
		case 8:
			return model.Tuple{Elements: rapid.SliceOfN(child, 0, 2).Draw(rt, "elements")}
		case 9:
			return model.ProtocolComposition{Protocols: rapid.SliceOfN(child, 0, 2).Draw(rt, "protocols")}
		default:
			return identifierGen().Draw(rt, "identifier")
		}
	})
}
