package db

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector reports a byte blob that is not a packed float32 vector.
var ErrInvalidVector = errors.New("db: invalid vector encoding")

// EncodeVector packs v as little-endian float32, the FLOAT32 layout of FT
// vector fields and KNN query blobs.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidVector, len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
