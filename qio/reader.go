// SPDX-License-Identifier: GPL-2.0-or-later

// Package qio reads little-endian binary records from seekable streams.
// Short reads are always errors, nothing is zero filled.
package qio

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var ErrShortRead = errors.New("short read")

type Reader struct {
	r io.ReadSeeker
}

func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r}
}

func NewBytesReader(data []byte) *Reader {
	return &Reader{bytes.NewReader(data)}
}

// Offset returns the current stream position.
func (q *Reader) Offset() int64 {
	o, err := q.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return o
}

// Size returns the total stream length and keeps the current position.
func (q *Reader) Size() (int64, error) {
	cur, err := q.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := q.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := q.r.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

func (q *Reader) Seek(offset int64) error {
	if offset < 0 {
		return errors.Errorf("seek to negative offset %d", offset)
	}
	_, err := q.r.Seek(offset, io.SeekStart)
	return errors.Wrapf(err, "seek to %d", offset)
}

func (q *Reader) wrap(err error, at int64) error {
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrShortRead, "at offset %d", at)
	}
	return errors.Wrapf(err, "at offset %d", at)
}

// Read decodes fixed size data (see encoding/binary) in little-endian order.
func (q *Reader) Read(data interface{}) error {
	at := q.Offset()
	return q.wrap(binary.Read(q.r, binary.LittleEndian, data), at)
}

func (q *Reader) ReadUint8() (uint8, error) {
	var r uint8
	err := q.Read(&r)
	return r, err
}

func (q *Reader) ReadInt16() (int16, error) {
	var r int16
	err := q.Read(&r)
	return r, err
}

func (q *Reader) ReadUint16() (uint16, error) {
	var r uint16
	err := q.Read(&r)
	return r, err
}

func (q *Reader) ReadInt32() (int32, error) {
	var r int32
	err := q.Read(&r)
	return r, err
}

func (q *Reader) ReadUint32() (uint32, error) {
	var r uint32
	err := q.Read(&r)
	return r, err
}

func (q *Reader) ReadFloat32() (float32, error) {
	var r float32
	err := q.Read(&r)
	return r, err
}

// ReadBytes reads exactly n bytes.
func (q *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("negative read length %d", n)
	}
	at := q.Offset()
	b := make([]byte, n)
	if _, err := io.ReadFull(q.r, b); err != nil {
		return nil, q.wrap(err, at)
	}
	return b, nil
}

// ReadCharArray reads a fixed width, zero padded name. The full width is
// always consumed so the stream stays aligned.
func (q *Reader) ReadCharArray(width int) (string, error) {
	b, err := q.ReadBytes(width)
	if err != nil {
		return "", err
	}
	return CString(b), nil
}

// CString returns the bytes up to the first zero.
func CString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n != -1 {
		return string(b[:n])
	}
	return string(b)
}
