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
	"bytes"
	"time"

	"golang.org/x/text/language"
	"seehuhn.de/go/pdfstream"
	"seehuhn.de/go/xmp"
)

// pdfNamespace is the XMP namespace for PDF metadata.
// See https://developer.adobe.com/xmp/docs/XMPNamespaces/pdf/
type pdfNamespace struct {
	_          xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_          xmp.Prefix    `xmp:"pdf"`
	Keywords   xmp.Text
	PDFVersion xmp.Text
	Producer   xmp.AgentName
}

// xmpMetadata returns an XMP metadata stream which mirrors the
// document information dictionary of the merged file.
func xmpMetadata(info *pdfstream.Info, producer string, ver pdfstream.Version, now time.Time) (*pdfstream.Stream, error) {
	if info == nil {
		info = &pdfstream.Info{}
	}

	dc := &xmp.DublinCore{}
	if info.Title != "" {
		dc.Title.Set(language.MustParse("x-default"), info.Title)
	}
	if info.Subject != "" {
		dc.Description.Set(language.MustParse("x-default"), info.Subject)
	}
	if info.Author != "" {
		dc.Creator.Append(xmp.NewProperName(info.Author))
	}

	created := info.CreationDate
	if created.IsZero() {
		created = now
	}
	modified := info.ModDate
	if modified.IsZero() {
		modified = created
	}
	basic := &xmp.Basic{}
	basic.CreateDate = xmp.NewDate(created)
	basic.ModifyDate = xmp.NewDate(modified)

	pdfInfo := &pdfNamespace{}
	pdfInfo.PDFVersion = xmp.NewText(ver.String())
	pdfInfo.Producer = xmp.NewAgentName(producer)
	if info.Keywords != "" {
		pdfInfo.Keywords = xmp.NewText(info.Keywords)
	}

	packet := xmp.NewPacket()
	err := packet.Set(dc, basic, pdfInfo)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	err = packet.Write(buf, &xmp.PacketOptions{Pretty: true})
	if err != nil {
		return nil, err
	}

	stm := &pdfstream.Stream{
		Dict: pdfstream.Dict{
			{Key: "Type", Value: pdfstream.Name("Metadata")},
			{Key: "Subtype", Value: pdfstream.Name("XML")},
			{Key: "Length", Value: pdfstream.Integer(buf.Len())},
		},
		Data: buf.Bytes(),
	}
	return stm, nil
}
