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

package merge

import "seehuhn.de/go/pdfstream"

// Entry is one slot in the object storage of a source document.
type Entry struct {
	// Object is the value stored in the slot, or nil if the object number
	// is not used.
	Object pdfstream.Object

	Generation uint16
}

// Source gives read-only access to a document which is to be merged.
//
// The returned slices must not be modified while [Merger.AddDocument]
// runs.
type Source interface {
	// Objects returns the object storage of the document.  The index into
	// the slice is the object number.  Slot 0 is ignored.
	Objects() []Entry

	// Pages returns the references of the page objects, in page order.
	// References use the numbering of Objects.
	Pages() []pdfstream.Reference
}
