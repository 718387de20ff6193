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

//go:build unix

package compact

import (
	"os"

	"golang.org/x/sys/unix"
)

// MMapStream is a read-only Stream backed by a memory-mapped file. It
// behaves like a BufferStream (seekable, Peek supported) but avoids
// copying the whole file into the heap up front, which matters for
// large schema-text or batch wire-frame sources read from disk.
type MMapStream struct {
	*BufferStream
	data []byte
}

// OpenMMapStream maps path read-only and returns a Stream over its
// contents. The caller must call Close when done to unmap the file.
func OpenMMapStream(path string) (*MMapStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &MMapStream{BufferStream: NewBufferStream(nil)}, nil
	}
	if size > MaxLength {
		return nil, ErrTooLarge
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &MMapStream{BufferStream: NewBufferStream(data), data: data}, nil
}

// Close unmaps the underlying file region.
func (m *MMapStream) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// Write always fails: the mapping is read-only, matching the "fixed
// buffer, read-only overload" variant spec.md §4.1 calls for.
func (m *MMapStream) Write(p []byte) error {
	return ErrShort
}
