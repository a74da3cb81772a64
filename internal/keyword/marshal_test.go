package keyword

import (
	"errors"
	"reflect"
	"testing"
)

type point struct{ X, Y int }

func TestMarshal_Scalars(t *testing.T) {
	for _, v := range []any{"text", true, false, 42, int64(1 << 40), 3.5, uint8(7)} {
		if got := Marshal(v); got != v {
			t.Errorf("Marshal(%#v) = %#v, want unchanged", v, got)
		}
	}
}

func TestMarshal_Nil(t *testing.T) {
	if got := Marshal(nil); got != "" {
		t.Errorf("Marshal(nil) = %#v, want empty string", got)
	}
}

func TestMarshal_Sequences(t *testing.T) {
	got := Marshal([]string{"a", "b"})
	want := []any{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	got = Marshal([]any{1, []int{2, 3}, nil})
	want = []any{1, []any{2, 3}, ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestMarshal_MapKeysStringified(t *testing.T) {
	got := Marshal(map[int]string{1: "a"})
	want := map[string]any{"1": "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	got = Marshal(map[string]any{"cookies": []map[string]string{{"name": "sid"}}})
	want = map[string]any{"cookies": []any{map[string]any{"name": "sid"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestMarshal_OtherValuesAsText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{point{1, 2}, "{1 2}"},
		{errors.New("bad"), "bad"},
		{[]byte("raw"), "raw"},
	}
	for _, tt := range tests {
		if got := Marshal(tt.in); got != tt.want {
			t.Errorf("Marshal(%#v) = %#v, want %q", tt.in, got, tt.want)
		}
	}
}
