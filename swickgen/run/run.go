// Package run implements the main logic for the swickgen tool in a testable way.
package run

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	config "github.com/toejough/swickgen/swickgen/run/1_config"
	load "github.com/toejough/swickgen/swickgen/run/2_load"
	generate "github.com/toejough/swickgen/swickgen/run/5_generate"
	output "github.com/toejough/swickgen/swickgen/run/6_output"
)

// Exported constants.
const (
	// DefaultInput is read when no input is named on the command line or in InputEnv.
	DefaultInput = "TestingSwickFile.yaml"
	// InputEnv names the environment variable holding the default input path.
	InputEnv = "SWICKGEN_INPUT"
)

// FileSystem interface for mocking.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Logging is the logger Run reports through, and the level --verbose lowers to debug.
type Logging struct {
	Logger *zap.Logger
	Level  *zap.AtomicLevel
}

// Run executes the swickgen tool logic. It takes command-line arguments, an environment variable getter, a FileSystem
// for reading inputs and writing outputs, the stream generated code is printed to, and the logging setup. Every input
// is loaded and turned into mock classes; the results are printed in input order, or written one file per input when
// --out is given.
//
// A parse failure in any input prints the single line "error" to out and nothing else. The returned error then
// matches load.ErrParseFailure.
func Run(
	ctx context.Context, args []string, getEnv func(string) string, fileSys FileSystem, out io.Writer, logging Logging,
) error {
	logger := logging.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := parseArgs(args, out)
	if errors.Is(err, arg.ErrHelp) {
		return nil
	}

	if err != nil {
		return err
	}

	if parsed.Verbose && logging.Level != nil {
		logging.Level.SetLevel(zapcore.DebugLevel)
	}

	cfg, err := config.Load(fileSys, parsed.Config)
	if err != nil {
		return err
	}

	inputs := inputsOf(parsed, getEnv)

	generated, err := generateAll(ctx, inputs, parsed.Jobs, cfg, fileSys, logger)
	if errors.Is(err, load.ErrParseFailure) {
		logger.Error("parse failure", zap.Error(err))

		_, _ = fmt.Fprintln(out, "error")

		return err
	}

	if err != nil {
		return err
	}

	if parsed.Out == "" {
		return output.Print(generated, out)
	}

	return output.WriteFiles(generated, parsed.Out, cfg.Output.FileSuffix, fileSys, out, logger)
}

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Inputs  []string `arg:"positional"   help:"parsed model (.yaml, .json) or Go source (.go) files to generate mocks for"`
	Out     string   `arg:"--out"        help:"directory to write one <input>Mocks.swift file per input to"`
	Config  string   `arg:"--config"     help:"TOML file overriding runtime library names and output layout"`
	Jobs    int      `arg:"--jobs"       help:"number of inputs processed concurrently"                         default:"4"`
	Verbose bool     `arg:"-v,--verbose" help:"log skipped functions and written files"`
}

// generateAll loads and generates every input, at most jobs at a time. Results keep input order.
func generateAll(
	ctx context.Context, inputs []string, jobs int, cfg config.Config, fileSys FileSystem, logger *zap.Logger,
) ([]output.Generated, error) {
	gen := generate.New(cfg, logger)
	generated := make([]output.Generated, len(inputs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for index, input := range inputs {
		group.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return errors.Wrapf(err, "generating %s", input)
			}

			file, err := load.File(fileSys, input, logger)
			if err != nil {
				return err
			}

			generated[index] = output.Generated{Input: input, Code: gen.MockFile(file)}

			logger.Info("generated mocks", zap.String("input", input), zap.Int("protocols", len(file.Protocols)))

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err //nolint:wrapcheck // errors are wrapped where they arise
	}

	return generated, nil
}

// inputsOf returns the inputs named on the command line, else the one named by InputEnv, else DefaultInput.
func inputsOf(parsed cliArgs, getEnv func(string) string) []string {
	if len(parsed.Inputs) > 0 {
		return parsed.Inputs
	}

	if input := getEnv(InputEnv); input != "" {
		return []string{input}
	}

	return []string{DefaultInput}
}

// parseArgs parses command-line arguments into cliArgs. Help requests print usage to out.
func parseArgs(args []string, out io.Writer) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "swickgen"}, &parsed)
	if err != nil {
		return cliArgs{}, errors.Wrap(err, "failed to create argument parser")
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if errors.Is(err, arg.ErrHelp) {
		parser.WriteHelp(out)

		return cliArgs{}, err //nolint:wrapcheck // sentinel checked by the caller
	}

	if err != nil {
		return cliArgs{}, errors.Wrap(err, "failed to parse arguments")
	}

	if parsed.Jobs < 1 {
		return cliArgs{}, errors.Newf("failed to parse arguments: --jobs must be at least 1, got %d", parsed.Jobs)
	}

	return parsed, nil
}
