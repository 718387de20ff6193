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

import (
	"bytes"
	"testing"
)

func TestBufferStreamReadWrite(t *testing.T) {
	buf := make([]byte, 4)
	s := NewBufferStream(buf)
	if err := s.Write([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]byte{4, 5}); err == nil {
		t.Fatal("expected short write error")
	}
	s.SeekSet(0)
	got, err := s.Read(3)
	if err != nil || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("got=%v err=%v", got, err)
	}
	if _, err := s.Read(5); err != ErrShort {
		t.Fatalf("expected ErrShort, got %v", err)
	}
}

func TestBufferStreamPeekSeek(t *testing.T) {
	s := NewBufferStream([]byte{0xaa, 0xbb, 0xcc})
	b, err := s.Peek()
	if err != nil || b != 0xaa {
		t.Fatalf("b=%x err=%v", b, err)
	}
	if err := s.SeekCur(2); err != nil {
		t.Fatal(err)
	}
	pos, _ := s.Tell()
	if pos != 2 {
		t.Fatalf("pos=%d", pos)
	}
	b, err = s.Peek()
	if err != nil || b != 0xcc {
		t.Fatalf("b=%x err=%v", b, err)
	}
}

func TestCallbackStreamNotSeekableNoPeek(t *testing.T) {
	data := []byte{1, 2, 3}
	pos := 0
	s := NewCallbackStream(nil, func(_ interface{}, n int) ([]byte, error) {
		out := data[pos : pos+n]
		pos += n
		return out, nil
	}, nil)
	if _, err := s.Peek(); err != ErrNoPeek {
		t.Fatalf("expected ErrNoPeek, got %v", err)
	}
	if err := s.SeekSet(0); err != ErrNotSeekable {
		t.Fatalf("expected ErrNotSeekable, got %v", err)
	}
	got, err := s.Read(2)
	if err != nil || !bytes.Equal(got, []byte{1, 2}) {
		t.Fatalf("got=%v err=%v", got, err)
	}
}
