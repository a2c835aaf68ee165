// SPDX-License-Identifier: GPL-2.0-or-later

package qio

import (
	"testing"

	"github.com/pkg/errors"
)

func TestLittleEndian(t *testing.T) {
	r := NewBytesReader([]byte{
		0x34, 0x12, // int16
		0xfe, 0xff, // uint16
		0x78, 0x56, 0x34, 0x12, // int32
		0x00, 0x00, 0x80, 0x3f, // float32 1.0
	})
	i16, err := r.ReadInt16()
	if err != nil || i16 != 0x1234 {
		t.Errorf("ReadInt16() = %x, %v", i16, err)
	}
	u16, err := r.ReadUint16()
	if err != nil || u16 != 0xfffe {
		t.Errorf("ReadUint16() = %x, %v", u16, err)
	}
	i32, err := r.ReadInt32()
	if err != nil || i32 != 0x12345678 {
		t.Errorf("ReadInt32() = %x, %v", i32, err)
	}
	f, err := r.ReadFloat32()
	if err != nil || f != 1 {
		t.Errorf("ReadFloat32() = %v, %v", f, err)
	}
}

func TestShortRead(t *testing.T) {
	r := NewBytesReader([]byte{1, 2, 3})
	_, err := r.ReadInt32()
	if !errors.Is(err, ErrShortRead) {
		t.Errorf("ReadInt32 on 3 bytes = %v, want ErrShortRead", err)
	}
	r = NewBytesReader(nil)
	if _, err := r.ReadUint8(); !errors.Is(err, ErrShortRead) {
		t.Errorf("ReadUint8 on empty = %v, want ErrShortRead", err)
	}
}

func TestCharArrayKeepsAlignment(t *testing.T) {
	data := append([]byte("FOO\x00garbage\x00\x00\x00\x00\x00"), 0x2a, 0, 0, 0)
	r := NewBytesReader(data)
	name, err := r.ReadCharArray(16)
	if err != nil {
		t.Fatalf("ReadCharArray: %v", err)
	}
	if name != "FOO" {
		t.Errorf("ReadCharArray = %q, want FOO", name)
	}
	if r.Offset() != 16 {
		t.Errorf("Offset after char array = %d, want 16", r.Offset())
	}
	v, err := r.ReadInt32()
	if err != nil || v != 42 {
		t.Errorf("ReadInt32 after name = %v, %v", v, err)
	}
}

func TestSizeKeepsPosition(t *testing.T) {
	r := NewBytesReader(make([]byte, 10))
	if err := r.Seek(4); err != nil {
		t.Fatal(err)
	}
	s, err := r.Size()
	if err != nil || s != 10 {
		t.Errorf("Size() = %d, %v", s, err)
	}
	if r.Offset() != 4 {
		t.Errorf("Offset() = %d, want 4", r.Offset())
	}
	if err := r.Seek(-1); err == nil {
		t.Errorf("Seek(-1) succeeded")
	}
}
