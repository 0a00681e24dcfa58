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

// Package memdoc implements PDF documents which are held in memory.
//
// A [Document] can be used as a source for [merge.Merger].  Producers
// assemble the document object by object, and add the page objects in
// page order.
package memdoc

import (
	"errors"

	"seehuhn.de/go/pdfstream"
	"seehuhn.de/go/pdfstream/merge"
)

var errInvalidReference = errors.New("invalid object reference")

// Document is an in-memory PDF document.
type Document struct {
	objects []merge.Entry
	pages   []pdfstream.Reference
}

// New returns an empty document.
func New() *Document {
	return &Document{
		objects: make([]merge.Entry, 1),
	}
}

// Alloc allocates a new object number.  The object is null until a value
// is stored using [Document.Put].
func (d *Document) Alloc() pdfstream.Reference {
	ref := pdfstream.NewReference(uint32(len(d.objects)), 0)
	d.objects = append(d.objects, merge.Entry{})
	return ref
}

// Put stores obj under the given reference.  Object numbers beyond the
// current end of the storage extend the document.  Storing nil frees the
// object number.
func (d *Document) Put(ref pdfstream.Reference, obj pdfstream.Object) error {
	num := int(ref.Number())
	if num == 0 {
		return errInvalidReference
	}
	for len(d.objects) <= num {
		d.objects = append(d.objects, merge.Entry{})
	}
	d.objects[num] = merge.Entry{
		Object:     obj,
		Generation: ref.Generation(),
	}
	return nil
}

// Add stores obj under a newly allocated object number.
func (d *Document) Add(obj pdfstream.Object) pdfstream.Reference {
	ref := d.Alloc()
	d.objects[ref.Number()].Object = obj
	return ref
}

// Get returns the object stored under ref.  The result is nil if the
// object is not present, or if the generation numbers do not match.
func (d *Document) Get(ref pdfstream.Reference) pdfstream.Object {
	num := int(ref.Number())
	if num == 0 || num >= len(d.objects) {
		return nil
	}
	entry := d.objects[num]
	if entry.Generation != ref.Generation() {
		return nil
	}
	return entry.Object
}

// AddPage appends a page to the document.  The page object itself must be
// stored separately, before or after the call to AddPage.
func (d *Document) AddPage(page pdfstream.Reference) {
	d.pages = append(d.pages, page)
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int {
	return len(d.pages)
}

// Objects implements the [merge.Source] interface.
func (d *Document) Objects() []merge.Entry {
	return d.objects
}

// Pages implements the [merge.Source] interface.
func (d *Document) Pages() []pdfstream.Reference {
	return d.pages
}
