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

// Package pdfstream writes PDF files sequentially, without keeping the
// document in memory.
//
// Objects are written to the output as soon as they are passed to a
// [Writer]; only the byte offset of every object is remembered, for the
// cross-reference table at the end of the file.  Forward references are
// supported by reserving an object number first and filling it in later:
//
//	w := pdfstream.NewWriter(out, nil)
//	err := w.Begin(pdfstream.V1_7)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	parent, _ := w.ReserveObject(0)
//	page, _ := w.WriteObject(pdfstream.Dict{
//	    {Key: "Type", Value: pdfstream.Name("Page")},
//	    {Key: "Parent", Value: parent},
//	}, 0)
//	w.AddPage(page)
//	... write the page tree node using w.WriteReserved(parent, ...) ...
//
//	err = w.End()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The following types implement the native PDF object types.
// All of these implement the [Object] interface:
//
//	Array
//	Bool
//	Dict
//	Integer
//	Name
//	Real
//	Reference
//	Stream
//	String
//
// The Go value nil is used for the PDF null object.
//
// The subpackage merge uses a Writer to concatenate many documents,
// keeping only one source document in memory at a time.
package pdfstream
