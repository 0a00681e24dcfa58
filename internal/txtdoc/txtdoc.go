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

// Package txtdoc lays out text files as the pages of an in-memory PDF
// document.
//
// The text is set in 12pt Courier, one input line per output line.  The
// resulting [memdoc.Document] can be passed to a [merge.Merger].
package txtdoc

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdfstream"
	"seehuhn.de/go/pdfstream/memdoc"
)

const (
	fontSize  = 12
	leading   = 12
	margin    = 72
	tabWidth  = 4
	charWidth = 0.6 * fontSize // Courier glyphs are 600 units wide
)

// A4 is the default page size.
var A4 = rect.Rect{URx: 595.276, URy: 841.890}

// Options control the page layout.
// A nil *Options is equivalent to the zero value.
type Options struct {
	// PageSize is the media box of all pages.  The default is A4.
	PageSize rect.Rect

	// Compress enables FlateDecode compression of the content streams.
	Compress bool
}

// Columns returns the number of characters which fit on one line.
func (opt *Options) Columns() int {
	box := opt.pageSize()
	return int((box.URx - box.LLx - 2*margin) / charWidth)
}

// LinesPerPage returns the number of lines which fit on one page.
func (opt *Options) LinesPerPage() int {
	box := opt.pageSize()
	n := int((box.URy - box.LLy - 2*margin) / leading)
	return max(n, 1)
}

func (opt *Options) pageSize() rect.Rect {
	if opt == nil || opt.PageSize == (rect.Rect{}) {
		return A4
	}
	return opt.PageSize
}

// Layout reads text from r and lays it out as pages.
func Layout(r io.Reader, opt *Options) (*memdoc.Document, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return LayoutLines(lines, opt)
}

// LayoutLines lays out the given lines as pages.  An empty slice gives a
// document without pages.
func LayoutLines(lines []string, opt *Options) (*memdoc.Document, error) {
	if opt == nil {
		opt = &Options{}
	}
	box := opt.pageSize()

	doc := memdoc.New()
	catalog := doc.Alloc()
	pageTree := doc.Alloc()
	font := doc.Add(pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Font")},
		{Key: "Subtype", Value: pdfstream.Name("Type1")},
		{Key: "BaseFont", Value: pdfstream.Name("Courier")},
		{Key: "Encoding", Value: pdfstream.Name("WinAnsiEncoding")},
	})

	numLines := opt.LinesPerPage()
	var kids pdfstream.Array
	for start := 0; start < len(lines); start += numLines {
		end := min(start+numLines, len(lines))
		content, err := contentStream(lines[start:end], box, opt.Compress)
		if err != nil {
			return nil, err
		}
		page := doc.Add(pdfstream.Dict{
			{Key: "Type", Value: pdfstream.Name("Page")},
			{Key: "Parent", Value: pageTree},
			{Key: "Contents", Value: doc.Add(content)},
		})
		kids = append(kids, page)
		doc.AddPage(page)
	}

	err := doc.Put(pageTree, pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Pages")},
		{Key: "Kids", Value: kids},
		{Key: "Count", Value: pdfstream.Integer(len(kids))},
		{Key: "MediaBox", Value: rectangle(box)},
		{Key: "Resources", Value: pdfstream.Dict{
			{Key: "Font", Value: pdfstream.Dict{{Key: "F", Value: font}}},
		}},
	})
	if err != nil {
		return nil, err
	}
	err = doc.Put(catalog, pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Catalog")},
		{Key: "Pages", Value: pageTree},
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func contentStream(lines []string, box rect.Rect, compress bool) (*pdfstream.Stream, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "BT")
	fmt.Fprintf(buf, "/F %d Tf\n", fontSize)
	fmt.Fprintf(buf, "%d TL\n", leading)
	fmt.Fprintf(buf, "%.2f %.2f Td\n", box.LLx+margin, box.URy-margin-fontSize)
	for _, line := range lines {
		s := encodeString(line)
		if len(s) > 0 {
			s.PDF(buf)
			fmt.Fprintln(buf, "Tj T*")
		} else {
			fmt.Fprintln(buf, "T*")
		}
	}
	fmt.Fprintln(buf, "ET")

	stm := &pdfstream.Stream{Data: buf.Bytes()}
	if compress {
		zbuf := &bytes.Buffer{}
		zw := zlib.NewWriter(zbuf)
		_, err := zw.Write(stm.Data)
		if err != nil {
			return nil, err
		}
		err = zw.Close()
		if err != nil {
			return nil, err
		}
		stm.Data = zbuf.Bytes()
		stm.Dict.Set("Filter", pdfstream.Name("FlateDecode"))
	}
	stm.Dict.Set("Length", pdfstream.Integer(len(stm.Data)))
	return stm, nil
}

// encodeString converts a line of text to WinAnsiEncoding.  Tabs are
// expanded, and characters which cannot be represented are replaced by
// question marks.
func encodeString(s string) pdfstream.String {
	var res pdfstream.String
	col := 0
	for _, r := range s {
		if r == '\t' {
			for {
				res = append(res, ' ')
				col++
				if col%tabWidth == 0 {
					break
				}
			}
			continue
		}
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok || c < 0x20 || c == 0x7f {
			c = '?'
		}
		res = append(res, c)
		col++
	}
	return res
}

func rectangle(r rect.Rect) pdfstream.Array {
	return pdfstream.Array{
		pdfstream.Real(r.LLx),
		pdfstream.Real(r.LLy),
		pdfstream.Real(r.URx),
		pdfstream.Real(r.URy),
	}
}
