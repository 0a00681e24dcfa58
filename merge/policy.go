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

import (
	"fmt"

	"seehuhn.de/go/pdfstream"
)

// MissingPagePolicy determines what happens when a page of a source
// document refers to an object which is not present in the document.
type MissingPagePolicy int

const (
	// SkipMissingPages drops such pages from the output.
	SkipMissingPages MissingPagePolicy = iota

	// FailOnMissingPage aborts the merge with a [*MissingPageError].
	FailOnMissingPage
)

func (p MissingPagePolicy) String() string {
	switch p {
	case SkipMissingPages:
		return "skip"
	case FailOnMissingPage:
		return "fail"
	default:
		return fmt.Sprintf("MissingPagePolicy(%d)", int(p))
	}
}

// MissingPageError is returned by [Merger.AddDocument] under the
// [FailOnMissingPage] policy.
type MissingPageError struct {
	// Document is the index of the source document, starting at 0.
	Document int

	// Page is the index of the page within the source document.
	Page int

	// Ref is the page reference which could not be resolved.
	Ref pdfstream.Reference
}

func (err *MissingPageError) Error() string {
	return fmt.Sprintf("document %d, page %d: page object %s not found",
		err.Document, err.Page, err.Ref)
}
