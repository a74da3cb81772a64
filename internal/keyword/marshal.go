package keyword

import (
	"fmt"
	"reflect"
)

// Marshal converts a keyword return value into something the wire protocols
// can carry: strings, booleans, integers and floats pass through; slices and
// arrays are converted element by element; maps get string keys; nil becomes
// ""; anything else becomes its fmt text.
func Marshal(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x
	case []byte:
		return string(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Marshal(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Marshal(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Marshal(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Marshal(iter.Value().Interface())
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}
