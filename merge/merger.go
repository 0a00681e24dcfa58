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

// Package merge concatenates PDF documents using a streaming
// [pdfstream.Writer].
//
// Source documents are added one at a time.  All objects of a source
// document are written to the output before [Merger.AddDocument] returns,
// so that the caller can release the document afterwards.  The memory
// used by a merge is bounded by the size of the largest source document
// plus the (small) cross-reference table of the output.
//
// The output is written to a temporary file, which only replaces the
// destination file once the merge has completed successfully.
package merge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/renameio/v2"
	"golang.org/x/text/language"
	"seehuhn.de/go/pdfstream"
)

var (
	// ErrNotStarted is returned if a Merger is used before [Merger.Begin]
	// or after [Merger.Finish].
	ErrNotStarted = errors.New("merge not started")

	errStarted = errors.New("merge already started")
)

// Options control the output of a [Merger].
// A nil *Options is equivalent to the zero value.
type Options struct {
	// Version is the PDF version of the output.  The default is PDF-1.7.
	Version pdfstream.Version

	// Producer is written into the file header, into the document
	// information dictionary and into the XMP metadata.
	Producer string

	// Info, if set, is written as the document information dictionary.
	Info *pdfstream.Info

	// Lang, if set, is the natural language of the merged document.
	// This requires PDF-1.4 or newer.
	Lang language.Tag

	// XMPMetadata requests an XMP metadata stream for the merged document.
	// This requires PDF-1.4 or newer.
	XMPMetadata bool

	// PreserveGenerations keeps the generation numbers of the source
	// objects.  By default, all objects are written with generation 0.
	PreserveGenerations bool

	// MissingPages determines how pages with unresolvable references
	// are treated.
	MissingPages MissingPagePolicy

	// Perm is the permission of the output file.  The default is 0o644.
	Perm fs.FileMode

	// Logger receives debug messages.  If this is nil, nothing is logged.
	Logger *slog.Logger
}

// A Merger concatenates the pages of many source documents into a single
// output file.
//
// A Merger is not safe for concurrent use.
type Merger struct {
	path string
	opt  Options
	log  *slog.Logger

	out     *renameio.PendingFile
	w       *pdfstream.Writer
	started bool

	// err is the first error which occurred during the merge.  Once set,
	// the merge cannot be finished.
	err error

	totalPages     int
	totalDocuments int
}

// New prepares a merge into the file at path.  No files are created
// before [Merger.Begin] is called.
func New(path string, opt *Options) *Merger {
	m := &Merger{path: path}
	if opt != nil {
		m.opt = *opt
	}
	if m.opt.Version == 0 {
		m.opt.Version = pdfstream.V1_7
	}
	if m.opt.Producer == "" {
		m.opt.Producer = pdfstream.DefaultProducer
	}
	if m.opt.Perm == 0 {
		m.opt.Perm = 0o644
	}
	m.log = m.opt.Logger
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	return m
}

// Begin creates the temporary output file and writes the PDF header.
//
// A Merger can only be used once; Begin fails if it has been called before.
func (m *Merger) Begin() error {
	if m.started {
		return errStarted
	}
	m.started = true

	needsV14 := m.opt.XMPMetadata || m.opt.Lang != language.Und
	if needsV14 && m.opt.Version < pdfstream.V1_4 {
		return fmt.Errorf("document language and XMP metadata require PDF-1.4, not PDF-%s",
			m.opt.Version)
	}

	out, err := renameio.NewPendingFile(m.path, renameio.WithPermissions(m.opt.Perm))
	if err != nil {
		return err
	}
	w := pdfstream.NewWriter(out, &pdfstream.WriterOptions{
		Producer: m.opt.Producer,
	})
	err = w.Begin(m.opt.Version)
	if err != nil {
		out.Cleanup()
		return err
	}

	m.out = out
	m.w = w
	m.log.Debug("merge started", "path", m.path, "version", m.opt.Version.String())
	return nil
}

// TotalPages returns the number of pages added to the output so far.
func (m *Merger) TotalPages() int {
	return m.totalPages
}

// TotalDocuments returns the number of source documents added so far.
func (m *Merger) TotalDocuments() int {
	return m.totalDocuments
}

// AddDocument appends all pages of src to the output.  All objects of src
// are written before AddDocument returns, and no reference to src is kept.
//
// If an error is returned, the merge is aborted: all further calls to
// AddDocument and to [Merger.Finish] return the same error.
func (m *Merger) AddDocument(src Source) error {
	if m.err != nil {
		return m.err
	}
	if m.w == nil {
		return ErrNotStarted
	}

	err := m.addDocument(src)
	if err != nil {
		m.err = fmt.Errorf("document %d: %w", m.totalDocuments, err)
		return m.err
	}
	return nil
}

func (m *Merger) addDocument(src Source) error {
	objects := src.Objects()
	r := newRemapper(len(objects))

	// Allocate all output numbers first, so that references can be
	// translated independently of the order of the objects.
	for num := 1; num < len(objects); num++ {
		entry := objects[num]
		if entry.Object == nil {
			continue
		}
		var gen uint16
		if m.opt.PreserveGenerations {
			gen = entry.Generation
		}
		newRef, err := m.w.ReserveObject(gen)
		if err != nil {
			return err
		}
		r.Redirect(pdfstream.NewReference(uint32(num), entry.Generation), newRef)
	}

	pages := src.Pages()
	if m.opt.MissingPages == FailOnMissingPage {
		for i, page := range pages {
			if _, ok := r.Lookup(page); !ok {
				return &MissingPageError{Document: m.totalDocuments, Page: i, Ref: page}
			}
		}
	}

	for num := 1; num < len(objects); num++ {
		entry := objects[num]
		if entry.Object == nil {
			continue
		}
		newRef, _ := r.Lookup(pdfstream.NewReference(uint32(num), entry.Generation))
		err := m.w.WriteReserved(newRef, r.Copy(entry.Object))
		if err != nil {
			return err
		}
	}

	numPages := 0
	for i, page := range pages {
		newRef, ok := r.Lookup(page)
		if !ok {
			m.log.Warn("skipping page with missing page object",
				"document", m.totalDocuments, "page", i, "ref", page.String())
			continue
		}
		m.w.AddPage(newRef)
		numPages++
	}

	m.log.Debug("document added",
		"document", m.totalDocuments,
		"objects", len(r.trans),
		"pages", numPages,
		"bytes", m.w.BytesWritten())

	m.totalPages += numPages
	m.totalDocuments++
	return nil
}

// Finish completes the output file and moves it to its final location.
// If the merge failed, or if Finish fails, the temporary file is removed
// and the destination file is left unchanged.
func (m *Merger) Finish() error {
	if m.out == nil {
		return ErrNotStarted
	}
	out := m.out
	defer func() {
		// This is a no-op after a successful CloseAtomicallyReplace.
		out.Cleanup()
		m.out = nil
		m.w = nil
	}()

	if m.err != nil {
		return m.err
	}

	err := m.writeDocumentData()
	if err == nil {
		err = m.w.End()
	}
	if err == nil {
		err = out.CloseAtomicallyReplace()
	}
	if err != nil {
		m.err = err
		return err
	}

	m.log.Debug("merge finished",
		"path", m.path,
		"documents", m.totalDocuments,
		"pages", m.totalPages)
	return nil
}

// Abort stops the merge and removes the temporary output file.
func (m *Merger) Abort() error {
	if m.out == nil {
		return nil
	}
	err := m.out.Cleanup()
	m.out = nil
	m.w = nil
	if m.err == nil {
		m.err = ErrNotStarted
	}
	return err
}

// writeDocumentData writes the document information dictionary and, if
// needed, a document catalog with the optional entries.
func (m *Merger) writeDocumentData() error {
	now := time.Now()

	var info *pdfstream.Info
	if m.opt.Info != nil {
		infoCopy := *m.opt.Info
		info = &infoCopy
		if info.Producer == "" {
			info.Producer = m.opt.Producer
		}
		ref, err := m.w.WriteObject(info.AsDict(), 0)
		if err != nil {
			return err
		}
		m.w.SetInfo(ref)
	}

	if !m.opt.XMPMetadata && m.opt.Lang == language.Und {
		// the Writer creates the default catalog
		return nil
	}

	pageTree, err := m.w.CreatePageTree()
	if err != nil {
		return err
	}
	catalog := pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Catalog")},
		{Key: "Pages", Value: pageTree},
	}
	if m.opt.Lang != language.Und {
		catalog.Set("Lang", pdfstream.TextString(m.opt.Lang.String()))
	}
	if m.opt.XMPMetadata {
		stm, err := xmpMetadata(info, m.opt.Producer, m.opt.Version, now)
		if err != nil {
			return err
		}
		ref, err := m.w.WriteObject(stm, 0)
		if err != nil {
			return err
		}
		catalog.Set("Metadata", ref)
	}
	ref, err := m.w.WriteObject(catalog, 0)
	if err != nil {
		return err
	}
	m.w.SetCatalog(ref)
	return nil
}
