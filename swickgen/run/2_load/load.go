// Package load turns input files into the protocol model. YAML and JSON files carry the model directly; Go files are
// parsed with dst and their interface declarations are mapped onto protocols.
package load

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/toejough/swickgen/swickgen/run/model"
)

// Exported variables.
var (
	// ErrParseFailure matches every error File returns, with both the standard and the cockroachdb errors.Is. The
	// underlying cause stays reachable through Unwrap.
	ErrParseFailure = errors.New("parse failure")
)

// Reader reads input files.
type Reader interface {
	ReadFile(name string) ([]byte, error)
}

// File reads path and decodes it with the front end its extension selects. Details the front ends drop, such as
// embedded interfaces from other packages, are logged at debug level.
func File(fileSys Reader, path string, logger *zap.Logger) (model.File, error) {
	file, err := decode(fileSys, path, logger)
	if err != nil {
		return model.File{}, &parseError{cause: errors.Wrapf(err, "loading %s", path)}
	}

	return file, nil
}

// parseError carries a load failure. It reports itself as ErrParseFailure and unwraps to the cause.
type parseError struct {
	cause error
}

func (e *parseError) Error() string {
	return e.cause.Error()
}

// Is reports ErrParseFailure as matching.
func (e *parseError) Is(target error) bool {
	return target == ErrParseFailure
}

func (e *parseError) Unwrap() error {
	return e.cause
}

func decode(fileSys Reader, path string, logger *zap.Logger) (model.File, error) {
	frontEnd, err := frontEndFor(path, logger)
	if err != nil {
		return model.File{}, err
	}

	data, err := fileSys.ReadFile(path)
	if err != nil {
		return model.File{}, errors.Wrap(err, "reading input")
	}

	return frontEnd(path, data)
}

type frontEnd func(path string, data []byte) (model.File, error)

func frontEndFor(path string, logger *zap.Logger) (frontEnd, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return Model, nil
	case ".go":
		return func(path string, data []byte) (model.File, error) {
			return GoSource(path, data, logger)
		}, nil
	default:
		return nil, errors.Wrapf(errUnknownFormat, "%q", filepath.Ext(path))
	}
}

// unexported variables.
var (
	errUnknownFormat = errors.New("unknown input format")
)
