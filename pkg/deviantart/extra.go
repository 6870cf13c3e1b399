package deviantart

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// The upstream schema is versioned, loosely typed, and not fully known.
// Every entity decodes its typed fields first and keeps whatever remains
// in an Extra side map so nothing is dropped on round-trip.

// decodeWithExtra unmarshals data into dst, then returns the object keys
// that dst's json tags do not claim. dst must be a pointer to a struct.
func decodeWithExtra(data []byte, dst any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, name := range knownJSONKeys(reflect.TypeOf(dst).Elem()) {
		delete(fields, name)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// knownJSONKeys lists the object keys a struct type claims through its
// json tags.
func knownJSONKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		keys = append(keys, name)
	}
	return keys
}

// ItemID is an entity id as the site emits it: usually a JSON number,
// sometimes a decimal string, occasionally a string-prefixed composite
// the site does not document. It normalizes to a canonical decimal form
// at the one point ids are used as map keys, but remembers whether the
// source was quoted so re-marshaling keeps the original JSON type.
type ItemID struct {
	raw     string
	value   uint64
	numeric bool
	quoted  bool
}

// NewItemID makes a numeric ItemID. Mostly useful in tests.
func NewItemID(value uint64) ItemID {
	return ItemID{
		raw:     strconv.FormatUint(value, 10),
		value:   value,
		numeric: true,
	}
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		id.raw = s
		id.quoted = true
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			id.value = n
			id.numeric = true
		}
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	id.raw = strconv.FormatUint(n, 10)
	id.value = n
	id.numeric = true
	return nil
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	if id.numeric && !id.quoted {
		return []byte(strconv.FormatUint(id.value, 10)), nil
	}
	return json.Marshal(id.raw)
}

// Uint64 returns the numeric value of the id. Composite string ids
// report false and must be skipped by callers that key entity maps.
func (id ItemID) Uint64() (uint64, bool) {
	return id.value, id.numeric
}

// Key returns the canonical decimal string form used to key the entity
// maps. Numeric ids are reformatted so leading zeros never leak in.
func (id ItemID) Key() string {
	if id.numeric {
		return strconv.FormatUint(id.value, 10)
	}
	return id.raw
}

func (id ItemID) String() string {
	return id.raw
}

// entityKey formats a numeric id the way the upstream keys its entity
// maps: plain decimal, no padding.
func entityKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
