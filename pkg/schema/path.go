package schema

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
)

var (
	// ErrInvalidFileType is returned for repository paths that do not end
	// in .sql.
	ErrInvalidFileType = errors.New("schema file must have a .sql extension")

	// ErrInvalidPath is returned for repository paths that do not carry a
	// root followed by type, schema, and name segments.
	ErrInvalidPath = errors.New("schema path must be <root>/<TYPE>/<schema>/<name>.sql")
)

// ObjectToPath renders the repository path for obj under root, e.g.
// ObjectToPath(obj, "base") -> "base/TABLE/dbo/users.sql".
func ObjectToPath(obj Object, root string) string {
	return KeyToPath(obj.Key, root)
}

// KeyToPath renders the repository path for key under root.
func KeyToPath(key Key, root string) string {
	return fmt.Sprintf("%s/%s/%s/%s%s", root, key.Type, key.Schema, key.Name, consts.SQLExt)
}

// PathToObject parses a repository path back into an object carrying the
// given definition. The last three segments are read as TYPE/schema/name;
// everything before them is the root and is ignored, so both base and
// overlay paths parse with the same call.
func PathToObject(path string, definition *string) (Object, error) {
	if !strings.HasSuffix(path, consts.SQLExt) {
		return Object{}, errors.Wrapf(ErrInvalidFileType, "%q", path)
	}

	parts := strings.Split(path, "/")
	if len(parts) < 4 {
		return Object{}, errors.Wrapf(ErrInvalidPath, "%q", path)
	}

	for _, p := range parts {
		if p == "" {
			return Object{}, errors.Wrapf(ErrInvalidPath, "%q", path)
		}
	}

	name := strings.TrimSuffix(parts[len(parts)-1], consts.SQLExt)
	if name == "" {
		return Object{}, errors.Wrapf(ErrInvalidPath, "%q", path)
	}

	typ, err := ParseObjectType(parts[len(parts)-3])
	if err != nil {
		return Object{}, err
	}

	return NewObject(typ, parts[len(parts)-2], name, definition), nil
}

// KeyForPath parses a repository path into an identity key.
func KeyForPath(path string) (Key, error) {
	obj, err := PathToObject(path, nil)
	if err != nil {
		return Key{}, err
	}
	return obj.Key, nil
}
