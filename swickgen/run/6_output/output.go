// Package output delivers generated mock files, either to a stream or as one file per input.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Writer interface for writing generated code.
type Writer interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Generated is the mock text produced for one input file.
type Generated struct {
	Input string
	Code  string
}

// Print writes each generated text to out, in order, each followed by a newline.
func Print(generated []Generated, out io.Writer) error {
	for _, gen := range generated {
		_, err := fmt.Fprintln(out, gen.Code)
		if err != nil {
			return errors.Wrapf(err, "printing mocks for %s", gen.Input)
		}
	}

	return nil
}

// WriteFiles writes each generated text to dir/FileName(input, suffix) and reports every written file on out. Two
// different inputs sharing a file name are rejected before anything is written.
func WriteFiles(generated []Generated, dir, suffix string, fileWriter Writer, out io.Writer, logger *zap.Logger) error {
	const generatedFilePermissions = 0o600

	filenames, err := outputNames(generated, dir, suffix)
	if err != nil {
		return err
	}

	for index, gen := range generated {
		filename := filenames[index]

		err = fileWriter.WriteFile(filename, []byte(gen.Code), generatedFilePermissions)
		if err != nil {
			return errors.Wrapf(err, "error writing %s", filename)
		}

		logger.Debug("wrote mocks", zap.String("input", gen.Input), zap.String("file", filename))

		_, _ = fmt.Fprintf(out, "%s written successfully.\n", filename)
	}

	return nil
}

func outputNames(generated []Generated, dir, suffix string) ([]string, error) {
	filenames := make([]string, len(generated))
	inputFor := map[string]string{}

	for index, gen := range generated {
		filename := filepath.Join(dir, FileName(gen.Input, suffix))

		if previous, ok := inputFor[filename]; ok && previous != gen.Input {
			return nil, errors.Wrapf(errNameCollision, "%s and %s both write %s", previous, gen.Input, filename)
		}

		inputFor[filename] = gen.Input
		filenames[index] = filename
	}

	return filenames, nil
}

// FileName is the output file name for input: its base name without extension, followed by suffix.
// "protocols/math.yaml" with suffix "Mocks.swift" gives "mathMocks.swift".
func FileName(input, suffix string) string {
	base := filepath.Base(input)

	return strings.TrimSuffix(base, filepath.Ext(base)) + suffix
}

// unexported variables.
var (
	errNameCollision = errors.New("output file name collision")
)
