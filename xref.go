// seehuhn.de/go/pdfstream - a streaming writer for PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pdfstream

import (
	"fmt"
	"io"
)

// xRefEntry records where an indirect object is located in the output.
// Pos is -1 until the object has been written; after this, the entry never
// changes again.
type xRefEntry struct {
	Pos        int64
	Generation uint16
	Reserved   bool
}

func (entry *xRefEntry) IsFree() bool {
	return entry.Pos < 0
}

// xRefTable is the append-only table of all object numbers allocated for
// a document.  The index into entries is the object number.
type xRefTable struct {
	entries []xRefEntry
}

func newXRefTable() *xRefTable {
	return &xRefTable{
		entries: []xRefEntry{
			{Pos: -1, Generation: 65535}, // head of the free list
		},
	}
}

// Len returns the number of entries, including the free entry 0.
func (t *xRefTable) Len() int {
	return len(t.entries)
}

// alloc allocates the next object number for an object which is
// written at byte offset pos.
func (t *xRefTable) alloc(pos int64, gen uint16) Reference {
	ref := NewReference(uint32(len(t.entries)), gen)
	t.entries = append(t.entries, xRefEntry{Pos: pos, Generation: gen})
	return ref
}

// reserve allocates the next object number without assigning a position.
func (t *xRefTable) reserve(gen uint16) Reference {
	ref := NewReference(uint32(len(t.entries)), gen)
	t.entries = append(t.entries, xRefEntry{Pos: -1, Generation: gen, Reserved: true})
	return ref
}

// checkReserved verifies that ref can be passed to fill.
func (t *xRefTable) checkReserved(ref Reference) error {
	num := ref.Number()
	if num == 0 || int64(num) >= int64(len(t.entries)) {
		return fmt.Errorf("%s: %w", ref, ErrOutOfRange)
	}
	entry := &t.entries[num]
	if !entry.IsFree() {
		return fmt.Errorf("%s: %w", ref, ErrAlreadyWritten)
	}
	if !entry.Reserved || entry.Generation != ref.Generation() {
		return fmt.Errorf("%s: %w", ref, ErrNotReserved)
	}
	return nil
}

// fill records the position of a reserved object.  The caller must have
// checked ref using checkReserved.
func (t *xRefTable) fill(ref Reference, pos int64) {
	entry := &t.entries[ref.Number()]
	entry.Pos = pos
	entry.Reserved = false
}

// firstUnresolved returns the smallest object number which was reserved
// but never written.
func (t *xRefTable) firstUnresolved() (uint32, bool) {
	for i := 1; i < len(t.entries); i++ {
		entry := &t.entries[i]
		if entry.Reserved && entry.IsFree() {
			return uint32(i), true
		}
	}
	return 0, false
}

// writeTo writes the cross-reference section, starting with the "xref"
// keyword.  Every entry occupies exactly 20 bytes.
func (t *xRefTable) writeTo(w io.Writer) error {
	_, err := fmt.Fprintf(w, "xref\r\n0 %d\r\n", len(t.entries))
	if err != nil {
		return err
	}
	for i := range t.entries {
		entry := &t.entries[i]
		pos := entry.Pos
		flag := 'n'
		if i == 0 || entry.IsFree() {
			pos = 0
			flag = 'f'
		}
		_, err = fmt.Fprintf(w, "%010d %05d %c\r\n", pos, entry.Generation, flag)
		if err != nil {
			return err
		}
	}
	return nil
}
