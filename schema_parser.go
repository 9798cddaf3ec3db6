// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
)

///////////////////////////////////////////////////////////////////////////////

// primitiveTypes maps the reserved primitive type names.  These names are
// never looked up as named references.
var primitiveTypes = map[string]SchemaType{
	"null":    SchemaType_Null,
	"boolean": SchemaType_Boolean,
	"int":     SchemaType_Int,
	"long":    SchemaType_Long,
	"float":   SchemaType_Float,
	"double":  SchemaType_Double,
	"bytes":   SchemaType_Bytes,
	"string":  SchemaType_String,
}

// parseEnv carries the parsing state: the enclosing namespace and the
// registry of fully-qualified name to definition.
type parseEnv struct {
	namespace string
	registry  map[string]*Schema
}

// ParseSchema parses a JSON schema document into a Schema tree.
func ParseSchema(schemaJson []byte) (*Schema, error) {
	var p fastjson.Parser
	val, err := p.ParseBytes(schemaJson)
	if err != nil {
		return nil, fmt.Errorf("%w: schema is not valid JSON: %s", ErrInvalidAttribute, err.Error())
	}
	env := &parseEnv{registry: make(map[string]*Schema)}
	return parseSchemaValue(val, env)
}

// ParseSchemaString parses a JSON schema document given as a string.
func ParseSchemaString(schemaJson string) (*Schema, error) {
	return ParseSchema([]byte(schemaJson))
}

///////////////////////////////////////////////////////////////////////////////

// parseSchemaValue dispatches on the JSON form: string (primitive or
// named reference), array (union), or object.
func parseSchemaValue(val *fastjson.Value, env *parseEnv) (*Schema, error) {
	switch val.Type() {
	case fastjson.TypeString:
		return parseTypeName(string(val.GetStringBytes()), env)
	case fastjson.TypeArray:
		return parseUnion(val.GetArray(), env)
	case fastjson.TypeObject:
		return parseObject(val, env)
	default:
		return nil, fmt.Errorf("%w: schema must be a string, array, or object", ErrInvalidAttribute)
	}
}

// parseTypeName resolves a type string: either a reserved primitive name
// or a reference to a previously registered named type.
func parseTypeName(name string, env *parseEnv) (*Schema, error) {
	if t, ok := primitiveTypes[name]; ok {
		return &Schema{Type: t}, nil
	}
	fullName := name
	if !strings.Contains(name, ".") && env.namespace != "" {
		fullName = env.namespace + "." + name
	}
	if s, ok := env.registry[fullName]; ok {
		return s, nil
	}
	// a bare name may also refer to a top-level definition
	if s, ok := env.registry[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNamedType, name)
}

func parseUnion(branches []*fastjson.Value, env *parseEnv) (*Schema, error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("%w: union has no branches", ErrInvalidUnion)
	}
	union := &Schema{Type: SchemaType_Union, Branches: make([]*Schema, 0, len(branches))}
	seen := make(map[string]bool, len(branches))
	for _, branchVal := range branches {
		branch, err := parseSchemaValue(branchVal, env)
		if err != nil {
			return nil, err
		}
		if branch.Type == SchemaType_Union {
			return nil, fmt.Errorf("%w: union may not immediately contain a union", ErrInvalidUnion)
		}
		// one branch per primitive type, one per named type full name;
		// array and map likewise identify by their type tag
		key := branch.Type.String()
		if branch.Type.IsNamed() {
			key = branch.Name
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate branch %q", ErrInvalidUnion, key)
		}
		seen[key] = true
		union.Branches = append(union.Branches, branch)
	}
	return union, nil
}

///////////////////////////////////////////////////////////////////////////////

func parseObject(val *fastjson.Value, env *parseEnv) (*Schema, error) {
	typeVal := val.Get("type")
	if typeVal == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingAttribute, "type")
	}
	if typeVal.Type() != fastjson.TypeString {
		// e.g. {"type": {"type": "array", ...}} or {"type": ["null","int"]}
		return parseSchemaValue(typeVal, env)
	}

	switch typeName := string(typeVal.GetStringBytes()); typeName {
	case "record":
		return parseRecord(val, env)
	case "enum":
		return parseEnum(val, env)
	case "fixed":
		return parseFixed(val, env)
	case "array":
		itemsVal := val.Get("items")
		if itemsVal == nil {
			return nil, fmt.Errorf("%w: array %q", ErrMissingAttribute, "items")
		}
		items, err := parseSchemaValue(itemsVal, env)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: SchemaType_Array, Items: items}, nil
	case "map":
		valuesVal := val.Get("values")
		if valuesVal == nil {
			return nil, fmt.Errorf("%w: map %q", ErrMissingAttribute, "values")
		}
		values, err := parseSchemaValue(valuesVal, env)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: SchemaType_Map, Values: values}, nil
	default:
		// {"type":"long"} and friends: the string form with extra
		// attributes, which are ignored
		return parseTypeName(typeName, env)
	}
}

///////////////////////////////////////////////////////////////////////////////

// resolveName computes the fully-qualified name of a named type and the
// namespace its children inherit.  A dotted name is already qualified and
// any sibling namespace attribute is ignored.
func resolveName(val *fastjson.Value, env *parseEnv) (fullName string, childNamespace string, err error) {
	nameVal := val.Get("name")
	if nameVal == nil {
		return "", "", fmt.Errorf("%w: %q", ErrMissingAttribute, "name")
	}
	if nameVal.Type() != fastjson.TypeString {
		return "", "", fmt.Errorf("%w: %q must be a string", ErrInvalidAttribute, "name")
	}
	name := string(nameVal.GetStringBytes())

	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		if !isValidName(name[idx+1:]) || !isValidNamespace(name[:idx]) {
			return "", "", fmt.Errorf("%w: name %q", ErrInvalidAttribute, name)
		}
		return name, name[:idx], nil
	}
	if !isValidName(name) {
		return "", "", fmt.Errorf("%w: name %q", ErrInvalidAttribute, name)
	}

	namespace := env.namespace
	if nsVal := val.Get("namespace"); nsVal != nil {
		if nsVal.Type() != fastjson.TypeString {
			return "", "", fmt.Errorf("%w: %q must be a string", ErrInvalidAttribute, "namespace")
		}
		namespace = string(nsVal.GetStringBytes())
		if namespace != "" && !isValidNamespace(namespace) {
			return "", "", fmt.Errorf("%w: namespace %q", ErrInvalidAttribute, namespace)
		}
	}
	if namespace == "" {
		return name, "", nil
	}
	return namespace + "." + name, namespace, nil
}

// register adds a named definition, rejecting redefinitions.
func (env *parseEnv) register(s *Schema) error {
	if _, exists := env.registry[s.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNamedType, s.Name)
	}
	env.registry[s.Name] = s
	return nil
}

func parseRecord(val *fastjson.Value, env *parseEnv) (*Schema, error) {
	fullName, childNamespace, err := resolveName(val, env)
	if err != nil {
		return nil, err
	}

	// register before recursing into fields so self-references resolve
	record := &Schema{Type: SchemaType_Record, Name: fullName}
	if err := env.register(record); err != nil {
		return nil, err
	}

	fieldsVal := val.Get("fields")
	if fieldsVal == nil {
		return nil, fmt.Errorf("%w: record %q %q", ErrMissingAttribute, fullName, "fields")
	}
	fieldVals, err := fieldsVal.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: record %q %q must be an array", ErrInvalidAttribute, fullName, "fields")
	}

	fieldEnv := &parseEnv{namespace: childNamespace, registry: env.registry}
	record.Fields = make([]Field, 0, len(fieldVals))
	seen := make(map[string]bool, len(fieldVals))
	for _, fieldVal := range fieldVals {
		if fieldVal.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("%w: record %q field must be an object", ErrInvalidAttribute, fullName)
		}
		fieldNameVal := fieldVal.Get("name")
		if fieldNameVal == nil {
			return nil, fmt.Errorf("%w: record %q field %q", ErrMissingAttribute, fullName, "name")
		}
		if fieldNameVal.Type() != fastjson.TypeString {
			return nil, fmt.Errorf("%w: record %q field name must be a string", ErrInvalidAttribute, fullName)
		}
		fieldName := string(fieldNameVal.GetStringBytes())
		if seen[fieldName] {
			return nil, fmt.Errorf("%w: record %q duplicate field %q", ErrInvalidAttribute, fullName, fieldName)
		}
		seen[fieldName] = true

		fieldTypeVal := fieldVal.Get("type")
		if fieldTypeVal == nil {
			return nil, fmt.Errorf("%w: record %q field %q %q", ErrMissingAttribute, fullName, fieldName, "type")
		}
		// default, order, doc, aliases are accepted and ignored
		fieldType, err := parseSchemaValue(fieldTypeVal, fieldEnv)
		if err != nil {
			return nil, err
		}
		record.Fields = append(record.Fields, Field{Name: fieldName, Type: fieldType})
	}
	return record, nil
}

func parseEnum(val *fastjson.Value, env *parseEnv) (*Schema, error) {
	fullName, _, err := resolveName(val, env)
	if err != nil {
		return nil, err
	}

	symbolsVal := val.Get("symbols")
	if symbolsVal == nil {
		return nil, fmt.Errorf("%w: enum %q %q", ErrMissingAttribute, fullName, "symbols")
	}
	symbolVals, err := symbolsVal.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: enum %q %q must be an array", ErrInvalidAttribute, fullName, "symbols")
	}

	enum := &Schema{Type: SchemaType_Enum, Name: fullName, Symbols: make([]string, 0, len(symbolVals))}
	seen := make(map[string]bool, len(symbolVals))
	for _, symbolVal := range symbolVals {
		if symbolVal.Type() != fastjson.TypeString {
			return nil, fmt.Errorf("%w: enum %q symbol must be a string", ErrInvalidSymbol, fullName)
		}
		symbol := string(symbolVal.GetStringBytes())
		if !isValidName(symbol) {
			return nil, fmt.Errorf("%w: enum %q symbol %q", ErrInvalidSymbol, fullName, symbol)
		}
		if seen[symbol] {
			return nil, fmt.Errorf("%w: enum %q duplicate symbol %q", ErrInvalidSymbol, fullName, symbol)
		}
		seen[symbol] = true
		enum.Symbols = append(enum.Symbols, symbol)
	}

	if err := env.register(enum); err != nil {
		return nil, err
	}
	return enum, nil
}

func parseFixed(val *fastjson.Value, env *parseEnv) (*Schema, error) {
	fullName, _, err := resolveName(val, env)
	if err != nil {
		return nil, err
	}

	sizeVal := val.Get("size")
	if sizeVal == nil {
		return nil, fmt.Errorf("%w: fixed %q %q", ErrMissingAttribute, fullName, "size")
	}
	size, err := sizeVal.Int()
	if err != nil || size < 0 {
		return nil, fmt.Errorf("%w: fixed %q size must be a non-negative integer", ErrInvalidAttribute, fullName)
	}

	fixed := &Schema{Type: SchemaType_Fixed, Name: fullName, Size: size}
	if err := env.register(fixed); err != nil {
		return nil, err
	}
	return fixed, nil
}

///////////////////////////////////////////////////////////////////////////////

// isValidName reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func isValidName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			continue
		}
		if i > 0 && '0' <= c && c <= '9' {
			continue
		}
		return false
	}
	return true
}

// isValidNamespace reports whether every dot-separated segment is a valid name.
func isValidNamespace(s string) bool {
	for _, segment := range strings.Split(s, ".") {
		if !isValidName(segment) {
			return false
		}
	}
	return true
}
