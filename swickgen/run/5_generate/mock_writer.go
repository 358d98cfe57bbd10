package generate

import (
	textutil "github.com/toejough/swickgen/swickgen/run/0_util"
	config "github.com/toejough/swickgen/swickgen/run/1_config"
	parts "github.com/toejough/swickgen/swickgen/run/4_parts"
)

type mockWriter struct {
	*textutil.Stream

	runtime config.Runtime
}

// block writes header, then body one level deeper, then closer.
func (w *mockWriter) block(header string, body func(), closer string) {
	w.Line(header)
	w.Indent(body)
	w.Line(closer)
}

func (w *mockWriter) convenienceInitializer() {
	w.block("convenience init(file: StaticString = #file, line: UInt = #line) {", func() {
		w.Linef("self.init(mockManager: %s(fileLine: %s(file: file, line: line)))",
			w.runtime.Qualify("SwickMockManager"), w.runtime.Qualify("FileLine"))
	}, "}")
}

func (w *mockWriter) expectationBuilder(funcs []derived) {
	header := "class ExpectationBuilder: " + w.runtime.Qualify("ExpectationBuilder") + " {"

	w.block(header, func() {
		w.Linef("private let mockManager: %s", w.runtime.Qualify("MockManager"))
		w.Linef("private let times: %s<UInt>", w.runtime.Qualify("FunctionalMatcher"))
		w.Linef("private let fileLine: %s", w.runtime.Qualify("FileLine"))
		w.Line("")

		initHeader := "required init(mockManager: " + w.runtime.Qualify("MockManager") +
			", times: " + w.runtime.Qualify("FunctionalMatcher") + "<UInt>" +
			", fileLine: " + w.runtime.Qualify("FileLine") + ") {"
		w.block(initHeader, func() {
			w.Lines(
				"self.mockManager = mockManager",
				"self.times = times",
				"self.fileLine = fileLine",
			)
		}, "}")
		w.Line("")

		for _, fn := range funcs {
			if fn.skip != nil {
				continue
			}

			w.expectationBuilderFunc(fn.parts)
			w.Line("")
		}
	}, "}")
}

func (w *mockWriter) expectationBuilderFunc(funcParts parts.Parts) {
	header := "func " + funcParts.Name + funcParts.GenericParams + "(" + funcParts.MatcherArguments + ") {"

	w.block(header, func() {
		w.matcher(funcParts)
		w.Line("")
		w.block("mockManager.addExpecatation(", func() {
			w.Lines(
				"functionId: "+quote(funcParts.FunctionID)+",",
				"fileLine: fileLine,",
				"times: times,",
				"matcher: matcher",
			)
		}, ")")
	}, "}")
}

func (w *mockWriter) initializer() {
	w.block("init(mockManager: "+w.runtime.Qualify("MockManager")+") {", func() {
		w.Line("self.mockManager = mockManager")
	}, "}")
}

func (w *mockWriter) matcher(funcParts parts.Parts) {
	header := "let matcher = " + w.runtime.Qualify("FunctionalMatcher") + "<(" + funcParts.ArgumentTypes + ")>" +
		"(matchingFunction: { (args: (" + funcParts.ArgumentTypes + ")) -> Bool in"

	w.block(header, func() {
		w.Line("return " + funcParts.MatchingFuncs)
	}, "})")
}

// mockProtocol writes the class className implementing protoName. Sections come in a fixed order: manager field,
// stub builder, expectation builder, initializers, mocked functions.
func (w *mockWriter) mockProtocol(className, protoName string, funcs []derived) {
	w.block("class "+className+": "+protoName+", "+w.runtime.MockMarker+" {", func() {
		w.vars()
		w.Line("")
		w.stubBuilder(funcs)
		w.Line("")
		w.expectationBuilder(funcs)
		w.Line("")
		w.initializer()
		w.Line("")
		w.convenienceInitializer()
		w.Line("")
		w.mockedFuncs(funcs)
	}, "}")
}

// mockedFunc writes the protocol requirement itself, forwarding to the mock manager under the function's identity.
func (w *mockWriter) mockedFunc(funcParts parts.Parts) {
	throwing := ""
	if funcParts.Throwing != "" {
		throwing = " " + funcParts.Throwing
	}

	header := "func " + funcParts.Name + "(" + funcParts.Arguments + ")" + throwing + " -> " + funcParts.Result + " {"

	w.block(header, func() {
		w.Linef("return %s mockManager.call(functionId: %s, args: (%s))",
			funcParts.CallTry, quote(funcParts.FunctionID), funcParts.ArgumentNames)
	}, "}")
}

// mockedFuncs writes every mocked function, and a comment in place of each skipped one.
func (w *mockWriter) mockedFuncs(funcs []derived) {
	for _, fn := range funcs {
		if fn.skip != nil {
			w.Line("// " + fn.skip.Diagnostic)
		} else {
			w.mockedFunc(fn.parts)
		}

		w.Line("")
	}
}

func (w *mockWriter) stubBuilder(funcs []derived) {
	w.block("class StubBuilder: "+w.runtime.Qualify("StubBuilder")+" {", func() {
		w.Linef("private let mockManager: %s", w.runtime.Qualify("MockManager"))
		w.Line("")
		w.block("required init(mockManager: "+w.runtime.Qualify("MockManager")+") {", func() {
			w.Line("self.mockManager = mockManager")
		}, "}")
		w.Line("")

		for _, fn := range funcs {
			if fn.skip != nil {
				continue
			}

			w.stubBuilderFunc(fn.parts)
			w.Line("")
		}
	}, "}")
}

func (w *mockWriter) stubBuilderFunc(funcParts parts.Parts) {
	header := "func " + funcParts.Name + funcParts.GenericParams +
		"(" + funcParts.MatcherArguments + ") -> " + funcParts.StubBuilder + " {"

	w.block(header, func() {
		w.matcher(funcParts)
		w.block("return "+funcParts.StubBuilder+"(", func() {
			w.Lines(
				"functionId: "+quote(funcParts.FunctionID)+",",
				"mockManager: mockManager,",
				"matcher: matcher",
			)
		}, ")")
	}, "}")
}

func (w *mockWriter) vars() {
	w.Linef("let mockManager: %s", w.runtime.Qualify("MockManager"))
}

// quote wraps a function identity in a Swift string literal. Identities never contain quotes or backslashes.
func quote(functionID string) string {
	return `"` + functionID + `"`
}
