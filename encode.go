// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

import (
	"encoding/binary"
	"math"
)

// encodeAttribute converts float values to the slot's element type and lays
// them out with the slot's stride. len(data) must be a multiple of
// s.Components.
func encodeAttribute(s AttributeSlot, data []float32) []byte {
	size := s.Type.Size()
	stride := s.EffectiveStride()
	vertices := len(data) / s.Components
	buf := make([]byte, vertices*stride)

	for v := 0; v < vertices; v++ {
		base := v * stride
		for c := 0; c < s.Components; c++ {
			putElement(buf[base+c*size:], s.Type, s.Normalized, data[v*s.Components+c])
		}
	}
	return buf
}

func putElement(dst []byte, t ElementType, normalized bool, v float32) {
	switch t {
	case Float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
	case Fixed:
		binary.LittleEndian.PutUint32(dst, uint32(int32(clampRound(float64(v)*65536, math.MinInt32, math.MaxInt32))))
	case Int8:
		dst[0] = byte(int8(toInt(v, normalized, math.MinInt8, math.MaxInt8)))
	case Uint8:
		dst[0] = byte(toInt(v, normalized, 0, math.MaxUint8))
	case Int16:
		binary.LittleEndian.PutUint16(dst, uint16(int16(toInt(v, normalized, math.MinInt16, math.MaxInt16))))
	case Uint16:
		binary.LittleEndian.PutUint16(dst, uint16(toInt(v, normalized, 0, math.MaxUint16)))
	case Int32:
		binary.LittleEndian.PutUint32(dst, uint32(int32(toInt(v, normalized, math.MinInt32, math.MaxInt32))))
	case Uint32:
		binary.LittleEndian.PutUint32(dst, uint32(toInt(v, normalized, 0, math.MaxUint32)))
	}
}

// toInt converts v to an integer in [lo, hi]. Normalized values are scaled
// from [0,1] or [-1,1] to the full range first.
func toInt(v float32, normalized bool, lo, hi float64) int64 {
	f := float64(v)
	if normalized {
		f *= hi
	}
	return int64(clampRound(f, lo, hi))
}

// clampRound rounds f and clamps it to [lo, hi]. NaN maps to 0.
func clampRound(f, lo, hi float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	f = math.Round(f)
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// encodeIndices encodes indices in the given format. Callers have already
// checked that every index fits.
func encodeIndices(format IndexFormat, indices []uint32) []byte {
	buf := make([]byte, len(indices)*format.Size())
	for i, idx := range indices {
		if format == IndexUint32 {
			binary.LittleEndian.PutUint32(buf[i*4:], idx)
		} else {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(idx))
		}
	}
	return buf
}
