package cache

import (
	"errors"
	"testing"
)

type codecEmployee struct {
	ID       int64  `json:"id" msgpack:"id"`
	LastName string `json:"last_name" msgpack:"last_name"`
}

func TestNewCodec(t *testing.T) {
	for _, name := range []string{"", CodecMsgpack, CodecCBOR} {
		c, err := NewCodec(name)
		if err != nil {
			t.Fatalf("NewCodec(%q): %v", name, err)
		}
		if name != "" && c.Name() != name {
			t.Errorf("Name() = %q, want %q", c.Name(), name)
		}
	}

	if _, err := NewCodec("gob"); !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("expected ErrUnknownCodec, got %v", err)
	}
}

func TestCodec_DecodesIndependentCopy(t *testing.T) {
	for _, codec := range []Codec{MsgpackCodec{}, CBORCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			src := &codecEmployee{ID: 3, LastName: "Boy"}
			data, err := codec.Marshal(src)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			var dst *codecEmployee
			if err := codec.Unmarshal(data, &dst); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if dst == src {
				t.Fatal("decoded value should be a distinct pointer")
			}
			if *dst != *src {
				t.Errorf("decoded %+v, want %+v", *dst, *src)
			}
		})
	}
}
