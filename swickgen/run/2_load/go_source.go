package load

import (
	"go/parser"
	"go/token"

	"github.com/cockroachdb/errors"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"go.uber.org/zap"

	"github.com/toejough/swickgen/swickgen/run/model"
)

// GoSource parses a Go file and maps each interface declaration onto a protocol, in declaration order. Embedded
// interfaces declared in the same file are flattened into the embedding one; embeds declared elsewhere (io.Reader,
// fmt.Stringer) cannot be expanded and are dropped with a debug log. Constraint interfaces (those with type
// unions or approximations) are not protocols and are ignored.
//
// Type mapping: []T, [N]T and ...T are arrays, map[K]V a dictionary, *T an optional, pkg.T a two-segment identifier,
// T[A, B] a generic identifier, func types closures, a trailing error result makes the function throw. Multiple
// results, struct literals and channels become tuples, non-empty interface literals protocol compositions.
func GoSource(path string, data []byte, logger *zap.Logger) (model.File, error) {
	dstFile, err := decorator.NewDecorator(token.NewFileSet()).ParseFile(path, data, parser.ParseComments)
	if err != nil {
		return model.File{}, errors.Wrap(err, "parsing go source")
	}

	decls := interfaceDecls(dstFile)
	decls.logger = logger
	file := model.File{}

	for _, decl := range decls.ordered {
		if isConstraint(decl.iface) {
			continue
		}

		funcs, err := decls.methods(decl.name, map[string]bool{})
		if err != nil {
			return model.File{}, errors.Wrapf(err, "interface %s", decl.name)
		}

		file.Protocols = append(file.Protocols, model.Protocol{Name: decl.name, Funcs: funcs})
	}

	return file, nil
}

type interfaceDecl struct {
	name  string
	iface *dst.InterfaceType
}

type interfaceSet struct {
	ordered []interfaceDecl
	byName  map[string]*dst.InterfaceType
	logger  *zap.Logger
}

func interfaceDecls(file *dst.File) interfaceSet {
	set := interfaceSet{byName: map[string]*dst.InterfaceType{}}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*dst.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*dst.TypeSpec)
			if !ok {
				continue
			}

			iface, ok := typeSpec.Type.(*dst.InterfaceType)
			if !ok {
				continue
			}

			set.ordered = append(set.ordered, interfaceDecl{name: typeSpec.Name.Name, iface: iface})
			set.byName[typeSpec.Name.Name] = iface
		}
	}

	return set
}

// methods lists the functions of the named interface, expanding embedded interfaces in place. seen guards against
// embedding cycles.
func (set interfaceSet) methods(name string, seen map[string]bool) ([]model.Func, error) {
	if seen[name] {
		return nil, errors.Newf("embedding cycle through %s", name)
	}

	seen[name] = true
	defer delete(seen, name)

	var funcs []model.Func

	for _, field := range fieldList(set.byName[name].Methods) {
		if len(field.Names) == 0 {
			embedded, err := set.embedded(name, field.Type, seen)
			if err != nil {
				return nil, err
			}

			funcs = append(funcs, embedded...)

			continue
		}

		funcType, ok := field.Type.(*dst.FuncType)
		if !ok {
			return nil, errors.Newf("method %s is not a function", field.Names[0].Name)
		}

		signature, err := goSignature(funcType)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s", field.Names[0].Name)
		}

		funcs = append(funcs, model.Func{Name: model.PlainName(field.Names[0].Name), Signature: signature})
	}

	return funcs, nil
}

func (set interfaceSet) embedded(embedder string, expr dst.Expr, seen map[string]bool) ([]model.Func, error) {
	ident, ok := expr.(*dst.Ident)
	if !ok || set.byName[ident.Name] == nil {
		set.logger.Debug("skipping embedded interface declared outside the file",
			zap.String("interface", embedder), zap.String("embedded", exprName(expr)))

		return nil, nil
	}

	return set.methods(ident.Name, seen)
}

func goSignature(funcType *dst.FuncType) (model.Signature, error) {
	signature := model.Signature{CurryGroups: 1}

	for _, field := range fieldList(funcType.Params) {
		typ, err := goType(field.Type)
		if err != nil {
			return model.Signature{}, err
		}

		if len(field.Names) == 0 {
			signature.Parameters = append(signature.Parameters, model.Parameter{LocalName: model.Anonymous, Type: typ})

			continue
		}

		for _, name := range field.Names {
			signature.Parameters = append(signature.Parameters, model.Parameter{LocalName: nameOf(name.Name), Type: typ})
		}
	}

	results, err := goResults(funcType.Results)
	if err != nil {
		return model.Signature{}, err
	}

	if count := len(results); count > 0 && isError(results[count-1]) {
		signature.Throwing = model.Throws
		results = results[:count-1]
	}

	switch len(results) {
	case 0:
	case 1:
		signature.Result = results[0]
	default:
		signature.Result = model.Tuple{Elements: results}
	}

	return signature, nil
}

// goResults expands the result list, one type per result name.
func goResults(results *dst.FieldList) ([]model.Type, error) {
	var types []model.Type

	for _, field := range fieldList(results) {
		typ, err := goType(field.Type)
		if err != nil {
			return nil, err
		}

		for range max(1, len(field.Names)) {
			types = append(types, typ)
		}
	}

	return types, nil
}

//nolint:cyclop,funlen // Type-switch dispatcher over Go's type expressions
func goType(expr dst.Expr) (model.Type, error) {
	switch typed := expr.(type) {
	case *dst.Ident:
		if typed.Name == "any" {
			return model.Named("Any"), nil
		}

		return model.Named(typed.Name), nil
	case *dst.SelectorExpr:
		pkg, ok := typed.X.(*dst.Ident)
		if !ok {
			return nil, errors.Wrapf(errUnsupportedType, "selector on %T", typed.X)
		}

		return model.Named(pkg.Name, typed.Sel.Name), nil
	case *dst.StarExpr:
		return wrapped(typed.X, func(inner model.Type) model.Type { return model.Optional{Wrapped: inner} })
	case *dst.ArrayType:
		return wrapped(typed.Elt, func(inner model.Type) model.Type { return model.Array{Element: inner} })
	case *dst.Ellipsis:
		return wrapped(typed.Elt, func(inner model.Type) model.Type { return model.Array{Element: inner} })
	case *dst.ParenExpr:
		return goType(typed.X)
	case *dst.MapType:
		key, err := goType(typed.Key)
		if err != nil {
			return nil, err
		}

		value, err := goType(typed.Value)
		if err != nil {
			return nil, err
		}

		return model.Dictionary{Key: key, Value: value}, nil
	case *dst.FuncType:
		return goClosure(typed)
	case *dst.IndexExpr:
		return goGeneric(typed.X, []dst.Expr{typed.Index})
	case *dst.IndexListExpr:
		return goGeneric(typed.X, typed.Indices)
	case *dst.ChanType:
		return wrapped(typed.Value, func(inner model.Type) model.Type { return model.Tuple{Elements: []model.Type{inner}} })
	case *dst.StructType:
		elements, err := goResults(typed.Fields)
		if err != nil {
			return nil, err
		}

		return model.Tuple{Elements: elements}, nil
	case *dst.InterfaceType:
		return goInterfaceLiteral(typed)
	default:
		return nil, errors.Wrapf(errUnsupportedType, "%T", expr)
	}
}

// goClosure maps a func type. A single parameter is the closure argument; none or several become Void or a tuple.
func goClosure(funcType *dst.FuncType) (model.Type, error) {
	signature, err := goSignature(funcType)
	if err != nil {
		return nil, err
	}

	closure := model.Closure{Throwing: signature.Throwing, Return: signature.Result}

	switch len(signature.Parameters) {
	case 0:
		closure.Argument = model.Named("Void")
	case 1:
		closure.Argument = signature.Parameters[0].Type
	default:
		elements := make([]model.Type, len(signature.Parameters))
		for i, param := range signature.Parameters {
			elements[i] = param.Type
		}

		closure.Argument = model.Tuple{Elements: elements}
	}

	if closure.Return == nil {
		closure.Return = model.Named("Void")
	}

	return closure, nil
}

// goGeneric attaches type arguments to the last segment of the base identifier.
func goGeneric(base dst.Expr, indices []dst.Expr) (model.Type, error) {
	baseType, err := goType(base)
	if err != nil {
		return nil, err
	}

	identifier, ok := baseType.(model.Identifier)
	if !ok {
		return nil, errors.Wrapf(errUnsupportedType, "type arguments on %T", base)
	}

	args := make([]model.Type, len(indices))
	for i, index := range indices {
		args[i], err = goType(index)
		if err != nil {
			return nil, err
		}
	}

	elements := append([]model.IdentifierElement(nil), identifier.Elements...)
	elements[len(elements)-1].GenericArgs = args

	return model.Identifier{Elements: elements}, nil
}

func goInterfaceLiteral(iface *dst.InterfaceType) (model.Type, error) {
	fields := fieldList(iface.Methods)
	if len(fields) == 0 {
		return model.Named("Any"), nil
	}

	protocols := make([]model.Type, 0, len(fields))

	for _, field := range fields {
		if len(field.Names) > 0 {
			protocols = append(protocols, model.Named(field.Names[0].Name))

			continue
		}

		typ, err := goType(field.Type)
		if err != nil {
			return nil, err
		}

		protocols = append(protocols, typ)
	}

	return model.ProtocolComposition{Protocols: protocols}, nil
}

func wrapped(inner dst.Expr, wrap func(model.Type) model.Type) (model.Type, error) {
	typ, err := goType(inner)
	if err != nil {
		return nil, err
	}

	return wrap(typ), nil
}

func exprName(expr dst.Expr) string {
	switch typed := expr.(type) {
	case *dst.Ident:
		return typed.Name
	case *dst.SelectorExpr:
		return exprName(typed.X) + "." + typed.Sel.Name
	default:
		return "embedded type"
	}
}

func fieldList(list *dst.FieldList) []*dst.Field {
	if list == nil {
		return nil
	}

	return list.List
}

// isConstraint reports whether iface is a type constraint rather than a method set.
func isConstraint(iface *dst.InterfaceType) bool {
	for _, field := range fieldList(iface.Methods) {
		if len(field.Names) > 0 {
			continue
		}

		switch field.Type.(type) {
		case *dst.BinaryExpr, *dst.UnaryExpr:
			return true
		}
	}

	return false
}

func isError(typ model.Type) bool {
	identifier, ok := typ.(model.Identifier)

	return ok && len(identifier.Elements) == 1 && identifier.Elements[0].Name == "error" &&
		len(identifier.Elements[0].GenericArgs) == 0
}

// unexported variables.
var (
	errUnsupportedType = errors.New("unsupported go type")
)
