package schema

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type (
	// ObjectType identifies the class of a managed database object.
	ObjectType string

	// Key is the identity triple of a managed object. Schema and Name are
	// always lowercase; use NewKey to build one.
	Key struct {
		Type   ObjectType
		Schema string
		Name   string
	}

	// Object pairs an identity with its DDL text. The definition is one or
	// more batches separated by GO lines. A nil Definition marks a deletion.
	Object struct {
		Key
		Definition *string
	}

	// FullObject is the per-key view a synchronization joins from its three
	// sources: the live catalog, the base tree, and the per-database
	// overlay. An absent source leaves the corresponding field nil.
	FullObject struct {
		Key
		DB   *string
		Base *string
		Diff *string
	}
)

const (
	TypeProcedure  ObjectType = "PROCEDURE"
	TypeFunction   ObjectType = "FUNCTION"
	TypeView       ObjectType = "VIEW"
	TypeTrigger    ObjectType = "TRIGGER"
	TypeTable      ObjectType = "TABLE"
	TypeTableType  ObjectType = "TABLE_TYPE"
	TypeScalarType ObjectType = "SCALAR_TYPE"
	TypeSequence   ObjectType = "SEQUENCE"
	TypeSynonym    ObjectType = "SYNONYM"
)

// ErrInvalidObjectType is returned when a type segment does not name one of
// the managed object types.
var ErrInvalidObjectType = errors.New("unknown object type")

// AllTypes lists every managed object type.
var AllTypes = []ObjectType{
	TypeProcedure,
	TypeFunction,
	TypeView,
	TypeTrigger,
	TypeTable,
	TypeTableType,
	TypeScalarType,
	TypeSequence,
	TypeSynonym,
}

// ParseObjectType maps a string (any case) onto the closed object type set.
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(strings.ToUpper(s))
	switch t {
	case TypeProcedure, TypeFunction, TypeView, TypeTrigger, TypeTable,
		TypeTableType, TypeScalarType, TypeSequence, TypeSynonym:
		return t, nil
	default:
		return "", errors.Wrapf(ErrInvalidObjectType, "%q", s)
	}
}

// NewKey builds an identity triple, lowercasing schema and name.
func NewKey(t ObjectType, schemaName, name string) Key {
	return Key{
		Type:   t,
		Schema: strings.ToLower(schemaName),
		Name:   strings.ToLower(name),
	}
}

// String renders the key as TYPE/schema/name, the form used to join the
// three sources of a synchronization.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Type, k.Schema, k.Name)
}

// NewObject builds an object record, lowercasing schema and name. The
// definition is carried as-is.
func NewObject(t ObjectType, schemaName, name string, definition *string) Object {
	return Object{
		Key:        NewKey(t, schemaName, name),
		Definition: definition,
	}
}
