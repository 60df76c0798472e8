// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeAttributeFloat32(t *testing.T) {
	s := Float32Slot("pos", 0, 2)
	got := encodeAttribute(s, []float32{1, -2, 0.5, 3})
	if len(got) != 16 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	want := []float32{1, -2, 0.5, 3}
	for i, w := range want {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(got[i*4:])); v != w {
			t.Errorf("value %d = %v, want %v", i, v, w)
		}
	}
}

func TestEncodeAttributeIntegerTypes(t *testing.T) {
	tests := []struct {
		name string
		slot AttributeSlot
		data []float32
		want []byte
	}{
		{
			name: "uint8 normalized",
			slot: AttributeSlot{Components: 4, Type: Uint8, Normalized: true},
			data: []float32{1, 0, 0.5, 2},
			want: []byte{255, 0, 128, 255},
		},
		{
			name: "uint8 clamps",
			slot: AttributeSlot{Components: 2, Type: Uint8},
			data: []float32{-3, 300},
			want: []byte{0, 255},
		},
		{
			name: "int8 normalized",
			slot: AttributeSlot{Components: 2, Type: Int8, Normalized: true},
			data: []float32{-1, 1},
			want: []byte{0x81, 0x7F},
		},
		{
			name: "int16",
			slot: AttributeSlot{Components: 2, Type: Int16},
			data: []float32{-2, 513},
			want: []byte{0xFE, 0xFF, 0x01, 0x02},
		},
		{
			name: "uint16 rounds",
			slot: AttributeSlot{Components: 1, Type: Uint16},
			data: []float32{2.6},
			want: []byte{3, 0},
		},
		{
			name: "int32",
			slot: AttributeSlot{Components: 1, Type: Int32},
			data: []float32{-1},
			want: []byte{0xFF, 0xFF, 0xFF, 0xFF},
		},
		{
			name: "uint32",
			slot: AttributeSlot{Components: 1, Type: Uint32},
			data: []float32{7},
			want: []byte{7, 0, 0, 0},
		},
		{
			name: "fixed 16.16",
			slot: AttributeSlot{Components: 2, Type: Fixed},
			data: []float32{1.5, -1},
			want: []byte{0x00, 0x80, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeAttribute(tt.slot, tt.data)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("encodeAttribute = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeAttributeStridePadding(t *testing.T) {
	s := AttributeSlot{Components: 3, Type: Uint8, Stride: 4}
	got := encodeAttribute(s, []float32{1, 2, 3, 4, 5, 6})
	want := []byte{1, 2, 3, 0, 4, 5, 6, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeAttribute = %v, want %v", got, want)
	}
}

func TestEncodeAttributeNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	for _, typ := range []ElementType{Int8, Uint8, Int16, Uint16, Int32, Uint32, Fixed} {
		for _, normalized := range []bool{false, true} {
			s := AttributeSlot{Components: 1, Type: typ, Normalized: normalized}
			got := encodeAttribute(s, []float32{nan})
			if !bytes.Equal(got, make([]byte, typ.Size())) {
				t.Errorf("%v (normalized=%t) NaN = %v, want zeros", typ, normalized, got)
			}
		}
	}

	if got := encodeAttribute(AttributeSlot{Components: 1, Type: Uint8}, []float32{inf}); got[0] != math.MaxUint8 {
		t.Errorf("Uint8 +Inf = %d, want %d", got[0], math.MaxUint8)
	}
	got := encodeAttribute(AttributeSlot{Components: 1, Type: Int16}, []float32{-inf})
	if v := int16(binary.LittleEndian.Uint16(got)); v != math.MinInt16 {
		t.Errorf("Int16 -Inf = %d, want %d", v, math.MinInt16)
	}
	got = encodeAttribute(AttributeSlot{Components: 1, Type: Fixed}, []float32{inf})
	if v := int32(binary.LittleEndian.Uint32(got)); v != math.MaxInt32 {
		t.Errorf("Fixed +Inf = %d, want %d", v, math.MaxInt32)
	}
}

func TestEncodeIndices(t *testing.T) {
	if got := encodeIndices(IndexUint16, []uint32{0, 1, 258}); !bytes.Equal(got, []byte{0, 0, 1, 0, 2, 1}) {
		t.Errorf("Uint16 = %v", got)
	}
	if got := encodeIndices(IndexUint32, []uint32{1, 0x01020304}); !bytes.Equal(got, []byte{1, 0, 0, 0, 4, 3, 2, 1}) {
		t.Errorf("Uint32 = %v", got)
	}
}
