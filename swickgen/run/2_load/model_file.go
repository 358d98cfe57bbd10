package load

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/toejough/swickgen/swickgen/run/model"
)

// Model decodes the YAML (or JSON) interchange form of a parsed file:
//
//	protocols:
//	  - name: Math
//	    funcs:
//	      - name: sum
//	        params:
//	          - {local: a, type: Int}
//	          - {local: b, type: Int}
//	        result: Int
//
// A type is either a dotted identifier path or a mapping with exactly one key naming its variant.
func Model(_ string, data []byte) (model.File, error) {
	var doc fileDoc

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(&doc)
	if errors.Is(err, io.EOF) {
		return model.File{}, nil
	}

	if err != nil {
		return model.File{}, errors.Wrap(err, "decoding model")
	}

	return doc.file()
}

type fileDoc struct {
	Protocols []protocolDoc `yaml:"protocols"`
}

type protocolDoc struct {
	Name  string    `yaml:"name"`
	Funcs []funcDoc `yaml:"funcs"`
}

type funcDoc struct {
	Name     string     `yaml:"name"`
	Operator string     `yaml:"operator"`
	Curry    *int       `yaml:"curry"`
	Throws   string     `yaml:"throws"`
	Params   []paramDoc `yaml:"params"`
	Result   *typeDoc   `yaml:"result"`
}

type paramDoc struct {
	External *string `yaml:"external"`
	Local    string  `yaml:"local"`
	Type     typeDoc `yaml:"type"`
}

// typeDoc decodes one type node.
type typeDoc struct {
	model.Type
}

type dictionaryDoc struct {
	Key   typeDoc `yaml:"key"`
	Value typeDoc `yaml:"value"`
}

type closureDoc struct {
	Argument typeDoc `yaml:"argument"`
	Throws   string  `yaml:"throws"`
	Returns  typeDoc `yaml:"returns"`
}

type elementDoc struct {
	Name     string    `yaml:"name"`
	Generics []typeDoc `yaml:"generics"`
}

func (doc fileDoc) file() (model.File, error) {
	file := model.File{Protocols: make([]model.Protocol, 0, len(doc.Protocols))}

	for index, protoDoc := range doc.Protocols {
		if protoDoc.Name == "" {
			return model.File{}, errors.Wrapf(errMissingName, "protocol %d", index)
		}

		proto := model.Protocol{Name: protoDoc.Name, Funcs: make([]model.Func, 0, len(protoDoc.Funcs))}

		for _, fnDoc := range protoDoc.Funcs {
			fn, err := fnDoc.fn()
			if err != nil {
				return model.File{}, errors.Wrapf(err, "protocol %s", protoDoc.Name)
			}

			proto.Funcs = append(proto.Funcs, fn)
		}

		file.Protocols = append(file.Protocols, proto)
	}

	return file, nil
}

func (doc funcDoc) fn() (model.Func, error) {
	var name model.FuncName

	switch {
	case doc.Name != "" && doc.Operator != "":
		return model.Func{}, errors.Newf("function %s: name and operator are exclusive", doc.Name)
	case doc.Operator != "":
		name = model.OperatorName(doc.Operator)
	case doc.Name != "":
		name = model.PlainName(doc.Name)
	default:
		return model.Func{}, errors.Wrap(errMissingName, "function")
	}

	curry := 1
	if doc.Curry != nil {
		curry = *doc.Curry
	}

	if curry < 1 {
		return model.Func{}, errors.Newf("function %s: curry must be at least 1, got %d", name.Text, curry)
	}

	throwing, err := throwingOf(doc.Throws)
	if err != nil {
		return model.Func{}, errors.Wrapf(err, "function %s", name.Text)
	}

	params := make([]model.Parameter, len(doc.Params))

	for index, paramDoc := range doc.Params {
		if paramDoc.Type.Type == nil {
			return model.Func{}, errors.Wrapf(errMissingType, "function %s: parameter %d", name.Text, index)
		}

		params[index] = model.Parameter{LocalName: nameOf(paramDoc.Local), Type: paramDoc.Type.Type}
		if paramDoc.External != nil {
			params[index].ExternalName = model.ExternalNamed(nameOf(*paramDoc.External))
		}
	}

	var result model.Type
	if doc.Result != nil {
		result = doc.Result.Type
	}

	return model.Func{
		Name: name,
		Signature: model.Signature{
			CurryGroups: curry,
			Parameters:  params,
			Throwing:    throwing,
			Result:      result,
		},
	}, nil
}

// UnmarshalYAML decodes a scalar identifier path or a single-key variant mapping.
//
//nolint:cyclop,funlen // Dispatcher over the closed set of type variants
func (t *typeDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "" {
			return errors.Wrapf(errBadType, "line %d: empty type", node.Line)
		}

		t.Type = model.Named(strings.Split(node.Value, ".")...)

		return nil
	}

	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return errors.Wrapf(errBadType, "line %d: want an identifier or a single-key mapping", node.Line)
	}

	variant, value := node.Content[0].Value, node.Content[1]

	switch variant {
	case "array", "optional", "iuo", "protocol", "type":
		var inner typeDoc

		err := value.Decode(&inner)
		if err != nil {
			return err
		}

		if inner.Type == nil {
			return errors.Wrapf(errMissingType, "line %d: %s needs a type", value.Line, variant)
		}

		t.Type = wrap(variant, inner.Type)
	case "dictionary":
		var dict dictionaryDoc

		err := value.Decode(&dict)
		if err != nil {
			return err
		}

		if dict.Key.Type == nil || dict.Value.Type == nil {
			return errors.Wrapf(errMissingType, "line %d: dictionary needs key and value", value.Line)
		}

		t.Type = model.Dictionary{Key: dict.Key.Type, Value: dict.Value.Type}
	case "closure":
		var closure closureDoc

		err := value.Decode(&closure)
		if err != nil {
			return err
		}

		throwing, err := throwingOf(closure.Throws)
		if err != nil {
			return err
		}

		if closure.Argument.Type == nil || closure.Returns.Type == nil {
			return errors.Wrapf(errMissingType, "line %d: closure needs argument and returns", value.Line)
		}

		t.Type = model.Closure{Argument: closure.Argument.Type, Throwing: throwing, Return: closure.Returns.Type}
	case "identifier":
		var elementDocs []elementDoc

		err := value.Decode(&elementDocs)
		if err != nil {
			return err
		}

		t.Type = identifierOf(elementDocs)
	case "tuple":
		var elements []typeDoc

		err := value.Decode(&elements)
		if err != nil {
			return err
		}

		t.Type = model.Tuple{Elements: unwrapAll(elements)}
	case "composition":
		var protocols []typeDoc

		err := value.Decode(&protocols)
		if err != nil {
			return err
		}

		t.Type = model.ProtocolComposition{Protocols: unwrapAll(protocols)}
	default:
		return errors.Wrapf(errBadType, "line %d: unknown type variant %q", node.Line, variant)
	}

	return nil
}

func identifierOf(elementDocs []elementDoc) model.Identifier {
	elements := make([]model.IdentifierElement, len(elementDocs))
	for i, elemDoc := range elementDocs {
		elements[i] = model.IdentifierElement{Name: elemDoc.Name}
		if len(elemDoc.Generics) > 0 {
			elements[i].GenericArgs = unwrapAll(elemDoc.Generics)
		}
	}

	return model.Identifier{Elements: elements}
}

// nameOf maps "_" and the empty string to the anonymous name.
func nameOf(text string) model.Name {
	if text == "_" {
		return model.Anonymous
	}

	return model.Name(text)
}

func throwingOf(text string) (model.Throwing, error) {
	switch text {
	case "":
		return model.NotThrowing, nil
	case "throws":
		return model.Throws, nil
	case "rethrows":
		return model.Rethrows, nil
	default:
		return model.NotThrowing, errors.Newf("unknown throwing marker %q", text)
	}
}

func unwrapAll(docs []typeDoc) []model.Type {
	types := make([]model.Type, len(docs))
	for i, doc := range docs {
		types[i] = doc.Type
	}

	return types
}

func wrap(variant string, inner model.Type) model.Type {
	switch variant {
	case "array":
		return model.Array{Element: inner}
	case "optional":
		return model.Optional{Wrapped: inner}
	case "iuo":
		return model.ImplicitlyUnwrappedOptional{Wrapped: inner}
	case "protocol":
		return model.ProtocolType{Base: inner}
	default:
		return model.TypeOfType{Base: inner}
	}
}

// unexported variables.
var (
	errBadType     = errors.New("malformed type")
	errMissingName = errors.New("missing name")
	errMissingType = errors.New("missing type")
)
