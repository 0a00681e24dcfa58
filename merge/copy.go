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

// A remapper translates the objects of one source document into the
// numbering of the output file.  The translation table is filled in
// before any objects are copied, so that references can point both
// backwards and forwards.
type remapper struct {
	trans map[pdfstream.Reference]pdfstream.Reference

	// numObjects is the number of object slots in the source document.
	numObjects int
}

func newRemapper(numObjects int) *remapper {
	return &remapper{
		trans:      make(map[pdfstream.Reference]pdfstream.Reference),
		numObjects: numObjects,
	}
}

// Redirect records that origRef is stored as newRef in the output.
func (c *remapper) Redirect(origRef, newRef pdfstream.Reference) {
	c.trans[origRef] = newRef
}

// Lookup returns the output reference for origRef.
func (c *remapper) Lookup(origRef pdfstream.Reference) (pdfstream.Reference, bool) {
	newRef, ok := c.trans[origRef]
	return newRef, ok
}

// Copy returns a deep copy of obj, with all references translated.
// Stream data is shared between the original and the copy.
//
// The returned object is guaranteed to be the same type as the input object,
// except for references to unused object numbers, which are replaced by null.
func (c *remapper) Copy(obj pdfstream.Object) pdfstream.Object {
	switch x := obj.(type) {
	case pdfstream.Dict:
		return c.CopyDict(x)
	case pdfstream.Array:
		return c.CopyArray(x)
	case *pdfstream.Stream:
		if x == nil {
			return nil
		}
		return &pdfstream.Stream{
			Dict: c.CopyDict(x.Dict),
			Data: x.Data,
		}
	case pdfstream.Reference:
		return c.CopyReference(x)
	default:
		return obj
	}
}

// CopyDict copies a dictionary, translating all references.
func (c *remapper) CopyDict(obj pdfstream.Dict) pdfstream.Dict {
	if obj == nil {
		return nil
	}
	res := make(pdfstream.Dict, len(obj))
	for i, e := range obj {
		res[i] = pdfstream.DictEntry{Key: e.Key, Value: c.Copy(e.Value)}
	}
	return res
}

// CopyArray copies an array, translating all references.
func (c *remapper) CopyArray(obj pdfstream.Array) pdfstream.Array {
	if obj == nil {
		return nil
	}
	res := make(pdfstream.Array, len(obj))
	for i, val := range obj {
		res[i] = c.Copy(val)
	}
	return res
}

// CopyReference translates a single reference.
//
// References to objects outside the source document are returned
// unchanged.  References to unused object numbers inside the source
// document refer to the null object, and are replaced by nil instead of
// being passed through, since the output number may belong to a different
// object.
func (c *remapper) CopyReference(obj pdfstream.Reference) pdfstream.Object {
	if newRef, ok := c.trans[obj]; ok {
		return newRef
	}
	if num := obj.Number(); num > 0 && int64(num) < int64(c.numObjects) {
		return nil
	}
	return obj
}
