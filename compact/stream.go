// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package compact

import "errors"

// MaxLength bounds every length or offset the stream will accept, per
// spec.md §4.1 ("all lengths are bounded by INT32_MAX").
const MaxLength = 1<<31 - 1

// ErrShort is returned whenever a read or write cannot be satisfied in
// full. The stream reports no partial results: either the whole
// operation succeeds or nothing is consumed/produced.
var ErrShort = errors.New("compact: short read or write")

// ErrNotSeekable is returned by SeekSet/SeekCur on streams that do not
// support random access (the callback-backed variant).
var ErrNotSeekable = errors.New("compact: stream is not seekable")

// ErrNoPeek is returned by Peek on streams that cannot look ahead
// without consuming (the callback-backed variant).
var ErrNoPeek = errors.New("compact: stream does not support peek")

// ErrTooLarge is returned when a requested length or offset exceeds
// MaxLength.
var ErrTooLarge = errors.New("compact: length exceeds stream bound")

// Stream is the uniform byte-oriented I/O contract every encoder and
// decoder in this module is written against. It is narrow by design: a
// single contract lets the codec layer treat an on-stack buffer, an
// allocator-backed buffer, and a user-supplied callback source
// identically.
//
// Every method reports success or failure explicitly; a failure means
// the operation had no effect (no partial reads, no partial writes).
type Stream interface {
	// Read returns exactly n bytes, advancing the cursor by n, or
	// fails without advancing the cursor at all.
	Read(n int) ([]byte, error)
	// Write appends p in full, advancing the cursor, or fails
	// without writing any of p.
	Write(p []byte) error
	// Peek returns the next byte without advancing the cursor.
	Peek() (byte, error)
	// Tell returns the current cursor position.
	Tell() (int64, error)
	// SeekSet moves the cursor to an absolute offset.
	SeekSet(pos int64) error
	// SeekCur moves the cursor by a relative offset.
	SeekCur(delta int64) error
}

// BufferStream is a Stream backed by a fixed, caller-owned byte slice.
// It owns neither the backing array nor its contents; it only tracks a
// read/write cursor into it. It supports both reading and writing
// (writes overwrite in place, they never grow the slice) and is
// seekable.
type BufferStream struct {
	buf []byte
	pos int
}

// NewBufferStream wraps buf for both reading and writing. The stream
// never reallocates buf; writes past len(buf) fail with ErrShort.
func NewBufferStream(buf []byte) *BufferStream {
	return &BufferStream{buf: buf}
}

// Bytes returns the backing slice in its entirety (not just the
// unread/unwritten remainder).
func (b *BufferStream) Bytes() []byte { return b.buf }

func (b *BufferStream) Read(n int) ([]byte, error) {
	if n < 0 || n > MaxLength {
		return nil, ErrTooLarge
	}
	if n == 0 {
		return nil, nil
	}
	if b.pos+n > len(b.buf) {
		return nil, ErrShort
	}
	out := b.buf[b.pos : b.pos+n]
	b.pos += n
	return out, nil
}

func (b *BufferStream) Write(p []byte) error {
	if len(p) > MaxLength {
		return ErrTooLarge
	}
	if b.pos+len(p) > len(b.buf) {
		return ErrShort
	}
	copy(b.buf[b.pos:], p)
	b.pos += len(p)
	return nil
}

func (b *BufferStream) Peek() (byte, error) {
	if b.pos >= len(b.buf) {
		return 0, ErrShort
	}
	return b.buf[b.pos], nil
}

func (b *BufferStream) Tell() (int64, error) { return int64(b.pos), nil }

func (b *BufferStream) SeekSet(pos int64) error {
	if pos < 0 || pos > int64(len(b.buf)) {
		return ErrShort
	}
	b.pos = int(pos)
	return nil
}

func (b *BufferStream) SeekCur(delta int64) error {
	return b.SeekSet(int64(b.pos) + delta)
}

// CallbackStream is a Stream backed by user-supplied read/write
// functions plus an opaque state value, for sources that are not
// simple in-memory buffers (sockets, pipes, anything with a blocking
// I/O callback). It is not seekable and does not support Peek, as
// spec.md §4.1 requires.
type CallbackStream struct {
	State interface{}
	ReadFn  func(state interface{}, n int) ([]byte, error)
	WriteFn func(state interface{}, p []byte) error

	pos int64
}

// NewCallbackStream builds a Stream around user-supplied callbacks.
func NewCallbackStream(state interface{}, read func(interface{}, int) ([]byte, error), write func(interface{}, []byte) error) *CallbackStream {
	return &CallbackStream{State: state, ReadFn: read, WriteFn: write}
}

func (c *CallbackStream) Read(n int) ([]byte, error) {
	if n < 0 || n > MaxLength {
		return nil, ErrTooLarge
	}
	if c.ReadFn == nil {
		return nil, ErrShort
	}
	if n == 0 {
		return nil, nil
	}
	p, err := c.ReadFn(c.State, n)
	if err != nil {
		return nil, err
	}
	if len(p) != n {
		return nil, ErrShort
	}
	c.pos += int64(n)
	return p, nil
}

func (c *CallbackStream) Write(p []byte) error {
	if len(p) > MaxLength {
		return ErrTooLarge
	}
	if c.WriteFn == nil {
		return ErrShort
	}
	if err := c.WriteFn(c.State, p); err != nil {
		return err
	}
	c.pos += int64(len(p))
	return nil
}

func (c *CallbackStream) Peek() (byte, error)        { return 0, ErrNoPeek }
func (c *CallbackStream) Tell() (int64, error)        { return c.pos, nil }
func (c *CallbackStream) SeekSet(pos int64) error     { return ErrNotSeekable }
func (c *CallbackStream) SeekCur(delta int64) error   { return ErrNotSeekable }
