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
	"errors"
	"strconv"
)

var (
	errVersion = errors.New("unsupported PDF version")

	// ErrNoSink is returned by [Writer.Begin] if the writer has no output.
	ErrNoSink = errors.New("no output to write the PDF file to")

	// ErrNotOpen indicates that an operation was attempted while no
	// document was open on the writer.
	ErrNotOpen = errors.New("document is not open")

	// ErrWriterUsed is returned by [Writer.Begin] if the writer was used
	// for a document before.  A Writer can only write a single document.
	ErrWriterUsed = errors.New("writer has already been used")

	// ErrOutOfRange indicates that a reference does not correspond to an
	// object number allocated by the writer.
	ErrOutOfRange = errors.New("object number out of range")

	// ErrNotReserved indicates an attempt to fill an object number which
	// was not obtained from [Writer.ReserveObject].
	ErrNotReserved = errors.New("object was not reserved")

	// ErrAlreadyWritten indicates an attempt to write an object number
	// a second time.
	ErrAlreadyWritten = errors.New("object already written")
)

// UnresolvedError is returned by [Writer.End] if an object number was
// reserved but never written.  The document is still open when this error
// is returned.
type UnresolvedError struct {
	Number uint32
}

func (err *UnresolvedError) Error() string {
	return "reserved object " + strconv.FormatUint(uint64(err.Number), 10) +
		" was never written"
}
