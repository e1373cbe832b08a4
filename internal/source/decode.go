package source

import (
	"github.com/tidwall/gjson"

	"explorer/internal/domain"
)

// Decode turns a payload into records. The payload is either an array of
// objects, or an object whose first array-valued member (in document order)
// holds them. Any other shape yields no records. Array elements that are
// not objects are skipped.
func Decode(data []byte) ([]*domain.Object, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	root := gjson.ParseBytes(data)

	var collection gjson.Result
	switch {
	case root.IsArray():
		collection = root
	case root.IsObject():
		root.ForEach(func(_, v gjson.Result) bool {
			if v.IsArray() {
				collection = v
				return false
			}
			return true
		})
	}

	records := []*domain.Object{}
	if !collection.IsArray() {
		return records, nil
	}
	collection.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			records = append(records, toObject(v))
		}
		return true
	})
	return records, nil
}

func toObject(r gjson.Result) *domain.Object {
	o := domain.NewObject()
	r.ForEach(func(k, v gjson.Result) bool {
		o.Set(k.String(), toValue(v))
		return true
	})
	return o
}

func toValue(r gjson.Result) any {
	switch r.Type {
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num
	case gjson.String:
		return r.Str
	case gjson.JSON:
		if r.IsArray() {
			items := []any{}
			r.ForEach(func(_, v gjson.Result) bool {
				items = append(items, toValue(v))
				return true
			})
			return items
		}
		return toObject(r)
	default:
		return nil
	}
}
