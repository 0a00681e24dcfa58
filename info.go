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

import "time"

// Info represents a PDF Document Information Dictionary.
//
// All fields in this structure are optional.  The zero value represents
// an empty information dictionary.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string

	// Creator gives the name of the application that created the original
	// document, if the document was converted to PDF from another format.
	Creator string

	// Producer gives the name of the application that converted the document
	// to PDF.
	Producer string

	CreationDate time.Time
	ModDate      time.Time
}

// AsDict returns the information dictionary.  Empty fields are omitted.
func (info *Info) AsDict() Dict {
	var res Dict
	text := func(key Name, val string) {
		if val != "" {
			res = append(res, DictEntry{key, TextString(val)})
		}
	}
	date := func(key Name, val time.Time) {
		if !val.IsZero() {
			res = append(res, DictEntry{key, Date(val)})
		}
	}
	text("Title", info.Title)
	text("Author", info.Author)
	text("Subject", info.Subject)
	text("Keywords", info.Keywords)
	text("Creator", info.Creator)
	text("Producer", info.Producer)
	date("CreationDate", info.CreationDate)
	date("ModDate", info.ModDate)
	return res
}
