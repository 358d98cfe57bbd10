package generate_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	config "github.com/toejough/swickgen/swickgen/run/1_config"
	generate "github.com/toejough/swickgen/swickgen/run/5_generate"
	"github.com/toejough/swickgen/swickgen/run/model"
)

const mathMock = `import Swick

class MathMock: Math, MockType {
    let mockManager: Swick.MockManager

    class StubBuilder: Swick.StubBuilder {
        private let mockManager: Swick.MockManager

        required init(mockManager: Swick.MockManager) {
            self.mockManager = mockManager
        }

        func sum<A0: Swick.Matcher, A1: Swick.Matcher where A0.MatchingType == Int, A1.MatchingType == Int>(a0: A0, b a1: A1) -> Swick.StubForFunctionBuilder<(Int, Int), Int> {
            let matcher = Swick.FunctionalMatcher<(Int, Int)>(matchingFunction: { (args: (Int, Int)) -> Bool in
                return a0.valueIsMatching(args.0) && a1.valueIsMatching(args.1)
            })
            return Swick.StubForFunctionBuilder<(Int, Int), Int>(
                functionId: "sum(a0: Int, b a1: Int)->Int",
                mockManager: mockManager,
                matcher: matcher
            )
        }

    }

    class ExpectationBuilder: Swick.ExpectationBuilder {
        private let mockManager: Swick.MockManager
        private let times: Swick.FunctionalMatcher<UInt>
        private let fileLine: Swick.FileLine

        required init(mockManager: Swick.MockManager, times: Swick.FunctionalMatcher<UInt>, fileLine: Swick.FileLine) {
            self.mockManager = mockManager
            self.times = times
            self.fileLine = fileLine
        }

        func sum<A0: Swick.Matcher, A1: Swick.Matcher where A0.MatchingType == Int, A1.MatchingType == Int>(a0: A0, b a1: A1) {
            let matcher = Swick.FunctionalMatcher<(Int, Int)>(matchingFunction: { (args: (Int, Int)) -> Bool in
                return a0.valueIsMatching(args.0) && a1.valueIsMatching(args.1)
            })

            mockManager.addExpecatation(
                functionId: "sum(a0: Int, b a1: Int)->Int",
                fileLine: fileLine,
                times: times,
                matcher: matcher
            )
        }

    }

    init(mockManager: Swick.MockManager) {
        self.mockManager = mockManager
    }

    convenience init(file: StaticString = #file, line: UInt = #line) {
        self.init(mockManager: Swick.SwickMockManager(fileLine: Swick.FileLine(file: file, line: line)))
    }

    func sum(a0: Int, b a1: Int) -> Int {
        return try! mockManager.call(functionId: "sum(a0: Int, b a1: Int)->Int", args: (a0, a1))
    }

}

`

func TestMockFile_Math(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	got := generate.New(config.Default(), nil).MockFile(mathFile())

	g.Expect(got).To(Equal(mathMock))
}

func TestMockFile_NoProtocols(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	got := generate.New(config.Default(), nil).MockFile(model.File{})

	g.Expect(got).To(Equal("import Swick\n\n"))
}

func TestMockFile_SkippedFunctionCommentedOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	file := mathFile()
	curried := model.Func{
		Name: model.PlainName("curried"),
		Signature: model.Signature{
			CurryGroups: 2,
			Parameters:  []model.Parameter{{LocalName: "x", Type: model.Named("Int")}},
		},
	}
	file.Protocols[0].Funcs = []model.Func{curried, file.Protocols[0].Funcs[0]}

	core, logs := observer.New(zapcore.DebugLevel)
	got := generate.New(config.Default(), zap.New(core)).MockFile(file)

	g.Expect(strings.Count(got, "curried")).To(Equal(1))
	g.Expect(got).To(ContainSubstring(
		"    // Function is not handled: curried; currying is not supported.\n\n    func sum(a0: Int, b a1: Int) -> Int {"))
	g.Expect(got).NotTo(ContainSubstring("func curried"))
	g.Expect(logs.FilterMessage("skipping function").Len()).To(Equal(1))
	g.Expect(logs.All()[0].ContextMap()).To(HaveKeyWithValue("func", "curried"))
}

func TestMockFile_OperatorCommented(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	file := model.File{Protocols: []model.Protocol{{
		Name:  "Addable",
		Funcs: []model.Func{{Name: model.OperatorName("+"), Signature: model.Signature{CurryGroups: 1}}},
	}}}

	got := generate.New(config.Default(), nil).MockFile(file)

	g.Expect(got).To(ContainSubstring("class AddableMock: Addable, MockType {"))
	g.Expect(strings.Count(got, "Operator is not handled: +; operators aren't supported yet.")).To(Equal(1))
	g.Expect(got).NotTo(ContainSubstring("func +"))
}

func TestMockFile_ThrowingFunction(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	file := model.File{Protocols: []model.Protocol{{
		Name: "Store",
		Funcs: []model.Func{{
			Name: model.PlainName("load"),
			Signature: model.Signature{
				CurryGroups: 1,
				Parameters: []model.Parameter{
					{ExternalName: model.ExternalNamed("from"), LocalName: "path", Type: model.Named("String")},
				},
				Throwing: model.Throws,
				Result:   model.Optional{Wrapped: model.Named("Foundation", "Data")},
			},
		}},
	}}}

	got := generate.New(config.Default(), nil).MockFile(file)

	g.Expect(got).To(ContainSubstring(
		"    func load(from a0: String) throws -> Foundation.Data? {\n" +
			"        return try mockManager.call(functionId: \"load(from a0: String)->Foundation.Data?\", args: (a0))\n" +
			"    }\n"))
}

func TestMockFile_NoParametersNoResult(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	file := model.File{Protocols: []model.Protocol{{
		Name:  "Resettable",
		Funcs: []model.Func{{Name: model.PlainName("reset"), Signature: model.Signature{CurryGroups: 1}}},
	}}}

	got := generate.New(config.Default(), nil).MockFile(file)

	g.Expect(got).To(ContainSubstring("        func reset() -> Swick.StubForFunctionBuilder<(), Void> {\n"))
	g.Expect(got).To(ContainSubstring("        func reset() {\n"))
	g.Expect(got).To(ContainSubstring("                return true\n"))
	g.Expect(got).To(ContainSubstring("    func reset() -> Void {\n" +
		"        return try! mockManager.call(functionId: \"reset()->Void\", args: ())\n"))
}

func TestMockFile_CustomConfig(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := config.Default()
	cfg.Runtime.Module = "Mockingbird"
	cfg.Runtime.MockMarker = "Mock"
	cfg.Output.Indent = "\t"
	cfg.Output.MockSuffix = "Double"

	got := generate.New(cfg, nil).MockFile(mathFile())

	g.Expect(got).To(HavePrefix("import Mockingbird\n\nclass MathDouble: Math, Mock {\n\tlet mockManager: Mockingbird.MockManager\n"))
	g.Expect(got).NotTo(ContainSubstring("Swick."))
	g.Expect(got).To(ContainSubstring("Mockingbird.SwickMockManager(fileLine: Mockingbird.FileLine(file: file, line: line))"))
	g.Expect(got).NotTo(ContainSubstring("    "))
}

// TestMockFile_IdentityConsistent_Property proves every derived function's identity appears at exactly its three
// emission sites, and that generation is idempotent.
func TestMockFile_IdentityConsistent_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z][a-zA-Z]{2,8}`), 1, 5, rapid.ID[string]).Draw(rt, "names")
		funcs := make([]model.Func, len(names))

		for i, name := range names {
			params := rapid.SliceOfN(rapid.SampledFrom([]string{"Int", "String", "Bool"}), 0, 4).Draw(rt, "params")

			funcs[i] = model.Func{Name: model.PlainName(name), Signature: model.Signature{CurryGroups: 1}}
			for _, typeName := range params {
				funcs[i].Signature.Parameters = append(funcs[i].Signature.Parameters,
					model.Parameter{LocalName: "p", Type: model.Named(typeName)})
			}
		}

		file := model.File{Protocols: []model.Protocol{{Name: "P", Funcs: funcs}}}
		gen := generate.New(config.Default(), nil)
		out := gen.MockFile(file)

		if again := gen.MockFile(file); again != out {
			rt.Fatalf("generation is not idempotent")
		}

		for _, name := range names {
			if got := strings.Count(out, `functionId: "`+name+"("); got != 3 {
				rt.Fatalf("identity of %s emitted %d times, want 3", name, got)
			}
		}
	})
}

func mathFile() model.File {
	return model.File{Protocols: []model.Protocol{{
		Name: "Math",
		Funcs: []model.Func{{
			Name: model.PlainName("sum"),
			Signature: model.Signature{
				CurryGroups: 1,
				Parameters: []model.Parameter{
					{LocalName: "a", Type: model.Named("Int")},
					{LocalName: "b", Type: model.Named("Int")},
				},
				Result: model.Named("Int"),
			},
		}},
	}}}
}
