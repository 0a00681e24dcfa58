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
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultProducer is the producer name written into the file header if
// [WriterOptions.Producer] is empty.
const DefaultProducer = "seehuhn.de/go/pdfstream"

// WriterOptions allows to influence the output of a [Writer].
// A nil *WriterOptions is equivalent to the zero value.
type WriterOptions struct {
	// Producer is the name written into the comment after the
	// PDF header line.
	Producer string
}

// Writer writes a PDF file sequentially.  Objects are written to the output
// as soon as they are passed to the Writer; only the file offsets and the
// list of pages are kept in memory.
//
// A Writer can be used for a single document:  [Writer.Begin] starts the
// document, [Writer.End] writes the cross-reference table and the trailer.
// The Writer never closes the underlying io.Writer.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	w        *posWriter
	xref     *xRefTable
	ver      Version
	producer string

	open bool
	used bool

	pages   []Reference
	catalog Reference
	info    Reference
}

// NewWriter allocates a Writer which writes to w.  No data is written
// before [Writer.Begin] is called.
func NewWriter(w io.Writer, opt *WriterOptions) *Writer {
	if opt == nil {
		opt = &WriterOptions{}
	}
	producer := opt.Producer
	if producer == "" {
		producer = DefaultProducer
	}
	// the producer comment must stay on a single header line
	producer = strings.NewReplacer("\r", " ", "\n", " ").Replace(producer)

	pdf := &Writer{
		xref:     newXRefTable(),
		producer: producer,
	}
	if w != nil {
		pdf.w = &posWriter{w: bufio.NewWriter(w)}
	}
	return pdf
}

// Begin writes the PDF header and opens the document.
func (pdf *Writer) Begin(ver Version) error {
	if pdf.w == nil {
		return ErrNoSink
	}
	if pdf.used {
		return ErrWriterUsed
	}
	if !ver.isValid() {
		return errVersion
	}
	pdf.used = true

	_, err := fmt.Fprintf(pdf.w, "%%PDF-%d.%d\r\n%% PDF producer: %s\r\n%%\xE2\xE3\xCF\xD3\r\n\r\n",
		ver.Major(), ver.Minor(), pdf.producer)
	if err != nil {
		return err
	}
	// make sure the output is actually writable
	err = pdf.w.Flush()
	if err != nil {
		return err
	}

	pdf.ver = ver
	pdf.open = true
	return nil
}

// IsOpen reports whether a document has been started using [Writer.Begin]
// and not yet finished using [Writer.End].
func (pdf *Writer) IsOpen() bool {
	return pdf.open
}

// Version returns the PDF version passed to [Writer.Begin].
func (pdf *Writer) Version() Version {
	return pdf.ver
}

// ObjectCount returns the number of object numbers allocated so far,
// including the free object 0.
func (pdf *Writer) ObjectCount() int {
	return pdf.xref.Len()
}

// BytesWritten returns the current position in the output.
func (pdf *Writer) BytesWritten() int64 {
	if pdf.w == nil {
		return 0
	}
	return pdf.w.pos
}

// PageCount returns the number of pages added using [Writer.AddPage].
func (pdf *Writer) PageCount() int {
	return len(pdf.pages)
}

func (pdf *Writer) checkOpen() error {
	if !pdf.open {
		return ErrNotOpen
	}
	return pdf.w.err
}

// WriteObject allocates the next object number and writes obj to the
// output as an indirect object with the given generation number.
func (pdf *Writer) WriteObject(obj Object, gen uint16) (Reference, error) {
	err := pdf.checkOpen()
	if err != nil {
		return 0, err
	}

	ref := pdf.xref.alloc(pdf.w.pos, gen)
	err = pdf.writeIndirect(ref, obj)
	if err != nil {
		return 0, err
	}
	return ref, nil
}

// ReserveObject allocates an object number without writing any data.
// The object must later be written using [Writer.WriteReserved], before
// [Writer.End] is called.
func (pdf *Writer) ReserveObject(gen uint16) (Reference, error) {
	err := pdf.checkOpen()
	if err != nil {
		return 0, err
	}
	return pdf.xref.reserve(gen), nil
}

// WriteReserved writes obj using an object number previously obtained from
// [Writer.ReserveObject].  Every reserved number can be written only once.
// If an error is returned, nothing has been written.
func (pdf *Writer) WriteReserved(ref Reference, obj Object) error {
	err := pdf.checkOpen()
	if err != nil {
		return err
	}
	err = pdf.xref.checkReserved(ref)
	if err != nil {
		return err
	}

	pdf.xref.fill(ref, pdf.w.pos)
	return pdf.writeIndirect(ref, obj)
}

func (pdf *Writer) writeIndirect(ref Reference, obj Object) error {
	_, err := fmt.Fprintf(pdf.w, "%d %d obj\r\n", ref.Number(), ref.Generation())
	if err != nil {
		return err
	}
	err = writeObject(pdf.w, obj)
	if err != nil {
		return err
	}
	_, err = pdf.w.Write([]byte("endobj\r\n"))
	return err
}

// AddPage appends a page to the list of pages used by [Writer.CreatePageTree].
func (pdf *Writer) AddPage(page Reference) {
	pdf.pages = append(pdf.pages, page)
}

// SetCatalog sets the document catalog.  If no catalog is set,
// [Writer.End] creates one, using the pages added with [Writer.AddPage].
func (pdf *Writer) SetCatalog(catalog Reference) {
	pdf.catalog = catalog
}

// SetInfo sets the document information dictionary.
func (pdf *Writer) SetInfo(info Reference) {
	pdf.info = info
}

// CreatePageTree writes a page tree root node which has all pages added
// so far as its direct children.
func (pdf *Writer) CreatePageTree() (Reference, error) {
	kids := make(Array, len(pdf.pages))
	for i, page := range pdf.pages {
		kids[i] = page
	}
	pages := Dict{
		{"Type", Name("Pages")},
		{"Kids", kids},
		{"Count", Integer(len(pdf.pages))},
	}
	return pdf.WriteObject(pages, 0)
}

// CreateCatalog writes a minimal document catalog.
func (pdf *Writer) CreateCatalog(pageTree Reference) (Reference, error) {
	catalog := Dict{
		{"Type", Name("Catalog")},
		{"Pages", pageTree},
	}
	return pdf.WriteObject(catalog, 0)
}

// End finishes the document by writing the cross-reference table and
// the file trailer.
//
// If a reserved object has not been written, an [*UnresolvedError] is
// returned and the document stays open.
func (pdf *Writer) End() error {
	err := pdf.checkOpen()
	if err != nil {
		return err
	}
	if num, ok := pdf.xref.firstUnresolved(); ok {
		return &UnresolvedError{Number: num}
	}

	if pdf.catalog == 0 {
		pageTree, err := pdf.CreatePageTree()
		if err != nil {
			return err
		}
		catalog, err := pdf.CreateCatalog(pageTree)
		if err != nil {
			return err
		}
		pdf.catalog = catalog
	}

	xRefPos := pdf.w.pos
	err = pdf.xref.writeTo(pdf.w)
	if err != nil {
		return err
	}

	trailer := Dict{
		{"Size", Integer(pdf.xref.Len())},
		{"Root", pdf.catalog},
	}
	if pdf.info != 0 {
		trailer = append(trailer, DictEntry{"Info", pdf.info})
	}
	_, err = pdf.w.Write([]byte("trailer\r\n"))
	if err != nil {
		return err
	}
	err = trailer.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(pdf.w, "\r\nstartxref\r\n%d\r\n%%%%EOF", xRefPos)
	if err != nil {
		return err
	}
	err = pdf.w.Flush()
	if err != nil {
		return err
	}

	pdf.open = false
	return nil
}

// posWriter keeps track of the number of bytes written.  After the first
// error, all further writes fail with the same error.
type posWriter struct {
	w   *bufio.Writer
	pos int64
	err error
}

func (w *posWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.pos += int64(n)
	if err != nil {
		w.err = err
	}
	return n, err
}

func (w *posWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	if err != nil {
		w.err = err
	}
	return err
}
