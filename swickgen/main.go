// swickgen generates Swift mock classes for the protocols of a source file. The mocks register stubs and
// expectations with the Swick runtime library.
//
// Usage:
//
//	swickgen [--out DIR] [--config FILE] [--jobs N] [-v] [INPUT ...]
//
// Inputs are parsed models (.yaml, .json) or Go sources (.go). Without --out the generated code is printed to
// stdout, one input after the other. If any input fails to parse, the single line "error" is printed instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/toejough/swickgen/swickgen/run"
	load "github.com/toejough/swickgen/swickgen/run/2_load"
)

// main is the entry point of the swickgen tool.
func main() {
	if os.Args == nil {
		return
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	logger, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err = run.Run(ctx, os.Args, os.Getenv, &realFileSystem{}, os.Stdout, run.Logging{Logger: logger, Level: &level})

	stop()
	_ = logger.Sync()

	if err != nil {
		if !errors.Is(err, load.ErrParseFailure) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}

// newLogger builds a human-readable logger on stderr, at the given level.
func newLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}

	return logger, nil
}

// realFileSystem implements run.FileSystem using os package.
type realFileSystem struct{}

// ReadFile reads the file named by name and returns the contents.
func (fs *realFileSystem) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", name)
	}

	return data, nil
}

// WriteFile writes data to the file named by name, creating its directory.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	const dirPermissions = 0o750

	err := os.MkdirAll(filepath.Dir(name), dirPermissions)
	if err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", name)
	}

	err = os.WriteFile(name, data, perm)
	if err != nil {
		return errors.Wrapf(err, "failed to write file %s", name)
	}

	return nil
}
