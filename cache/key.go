package cache

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Key identifies a query result: the collection it reads, the statement that
// produced it and the ordered parameters. Related lists extra collections the
// result depends on, a mutation on any of them invalidates the entry too.
type Key struct {
	Collection string
	Statement  string
	Params     []any
	Related    []string
}

var defaultSerializer = NewDefaultKeySerializer()

// NewKey builds a key for statement under collection.
func NewKey(collection, statement string, params ...any) Key {
	return Key{Collection: collection, Statement: statement, Params: params}
}

// WithRelated returns a copy of k that also depends on the given collections.
func (k Key) WithRelated(collections ...string) Key {
	out := k
	out.Related = make([]string, 0, len(k.Related)+len(collections))
	out.Related = append(out.Related, k.Related...)
	for _, c := range collections {
		if c == "" || c == k.Collection || containsString(out.Related, c) {
			continue
		}
		out.Related = append(out.Related, c)
	}
	return out
}

// Collections returns the primary collection followed by the related ones.
func (k Key) Collections() []string {
	out := make([]string, 0, 1+len(k.Related))
	out = append(out, k.Collection)
	for _, c := range k.Related {
		if c != k.Collection && !containsString(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// Validate reports whether the key can be used for a lookup. Failures wrap
// ErrInvalidKey.
func (k Key) Validate() error {
	err := validation.ValidateStruct(&k,
		validation.Field(&k.Collection, validation.Required, validation.By(noSeparator)),
		validation.Field(&k.Statement, validation.Required, validation.By(noSeparator)),
		validation.Field(&k.Params, validation.By(serializableParams)),
		validation.Field(&k.Related, validation.Each(validation.Required, validation.By(noSeparator))),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return nil
}

// String renders the key with the default serializer.
func (k Key) String() string {
	return k.Serialize(defaultSerializer)
}

// Serialize renders the key with s. The collection is always the first
// segment; related collections, when present, are appended as a sorted set.
func (k Key) Serialize(s KeySerializer) string {
	out := k.Collection + KeySeparator + s.SerializeKey(k.Statement, k.Params...)
	related := k.Collections()[1:]
	if len(related) == 0 {
		return out
	}

	sort.Strings(related)
	quoted := make([]string, len(related))
	for i, c := range related {
		quoted[i] = strconv.Quote(c)
	}
	return out + KeySeparator + "related:{" + strings.Join(quoted, ",") + "}"
}

// Equal reports structural equality under the default serializer.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// Fingerprint hashes the serialized key. Logs use it instead of raw params.
func (k Key) Fingerprint() string {
	return strconv.FormatUint(xxhash.Sum64String(k.String()), 16)
}

// ValidateCollection checks a bare collection name.
func ValidateCollection(collection string) error {
	err := validation.Validate(collection, validation.Required, validation.By(noSeparator))
	if err != nil {
		return fmt.Errorf("%w: collection %w", ErrInvalidKey, err)
	}
	return nil
}

func noSeparator(value any) error {
	s, _ := value.(string)
	if strings.Contains(s, KeySeparator) {
		return errors.New("must not contain " + KeySeparator)
	}
	return nil
}

// serializableParams rejects values whose serialized form would depend on an
// address instead of their contents. Functions are included: closures built
// at one call site share a code pointer whatever they capture.
func serializableParams(value any) error {
	params, _ := value.([]any)
	for i, p := range params {
		if p == nil {
			continue
		}
		if t := unstableType(reflect.ValueOf(p)); t != nil {
			return fmt.Errorf("param %d: %s has no stable form", i, t)
		}
	}
	return nil
}

// unstableType walks rv the way the key serializer does and returns the first
// function, channel or unsafe pointer type it meets.
func unstableType(rv reflect.Value) reflect.Type {
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.Type()

	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return unstableType(rv.Elem())

	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if t := unstableType(rv.Index(i)); t != nil {
				return t
			}
		}

	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if t := unstableType(iter.Key()); t != nil {
				return t
			}
			if t := unstableType(iter.Value()); t != nil {
				return t
			}
		}

	case reflect.Struct:
		if rv.CanInterface() {
			if _, ok := rv.Interface().(encoding.TextMarshaler); ok {
				return nil
			}
		}
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			if !rt.Field(i).IsExported() {
				continue
			}
			if t := unstableType(rv.Field(i)); t != nil {
				return t
			}
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
