// Package generate emits Swift mock classes for the protocols of a parsed file.
package generate

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	textutil "github.com/toejough/swickgen/swickgen/run/0_util"
	config "github.com/toejough/swickgen/swickgen/run/1_config"
	parts "github.com/toejough/swickgen/swickgen/run/4_parts"
	"github.com/toejough/swickgen/swickgen/run/model"
)

// Generator renders mock classes. It holds no state between MockFile calls.
type Generator struct {
	cfg    config.Config
	logger *zap.Logger
}

// New returns a Generator. A nil logger discards skip diagnostics.
func New(cfg config.Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{cfg: cfg, logger: logger}
}

// MockFile renders the import line followed by one mock class per protocol, each followed by a blank line.
func (gen *Generator) MockFile(file model.File) string {
	out := &mockWriter{
		Stream:  textutil.NewStream(gen.cfg.Output.Indent),
		runtime: gen.cfg.Runtime,
	}

	out.Linef("import %s", gen.cfg.Runtime.Module)
	out.Line("")

	for _, proto := range file.Protocols {
		out.mockProtocol(proto.Name+gen.cfg.Output.MockSuffix, proto.Name, gen.deriveAll(proto))
		out.Line("")
	}

	return out.String()
}

// derived is the outcome of deriving one protocol function: parts, or the diagnostic for a skipped function.
type derived struct {
	parts parts.Parts
	skip  *parts.SkipError
}

// deriveAll derives each function of proto once, in declaration order.
func (gen *Generator) deriveAll(proto model.Protocol) []derived {
	results := make([]derived, 0, len(proto.Funcs))

	for _, fn := range proto.Funcs {
		funcParts, err := parts.Derive(fn, gen.cfg.Runtime)

		var skip *parts.SkipError
		if errors.As(err, &skip) {
			gen.logger.Debug("skipping function",
				zap.String("protocol", proto.Name),
				zap.String("func", skip.Func),
				zap.String("reason", skip.Diagnostic),
			)

			results = append(results, derived{skip: skip})

			continue
		}

		results = append(results, derived{parts: funcParts})
	}

	return results
}
