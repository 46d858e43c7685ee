package db

import (
	"errors"
	"testing"
)

func TestEncodeVector_Layout(t *testing.T) {
	// 1.0 is 0x3f800000.
	got := EncodeVector([]float32{1.0})
	want := []byte{0x00, 0x00, 0x80, 0x3f}
	if string(got) != string(want) {
		t.Errorf("EncodeVector(1.0) = %x, want %x", got, want)
	}
}

func TestDecodeVector(t *testing.T) {
	vec, err := DecodeVector(EncodeVector([]float32{0.25, -2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.25 || vec[1] != -2 {
		t.Errorf("unexpected vector %v", vec)
	}

	for _, data := range [][]byte{nil, {1, 2, 3}} {
		if _, err := DecodeVector(data); !errors.Is(err, ErrInvalidVector) {
			t.Errorf("DecodeVector(%v): expected ErrInvalidVector, got %v", data, err)
		}
	}
}
