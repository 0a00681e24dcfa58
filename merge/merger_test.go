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

package merge_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
	"seehuhn.de/go/pdfstream"
	"seehuhn.de/go/pdfstream/memdoc"
	"seehuhn.de/go/pdfstream/merge"
)

// singlePageDoc returns a document with a catalog, a page tree and one
// page, which uses object numbers 1 to n.
func singlePageDoc(n int) *memdoc.Document {
	doc := memdoc.New()
	catalog := doc.Alloc()
	pages := doc.Alloc()
	page := doc.Alloc()
	var extra pdfstream.Array
	for i := 4; i <= n; i++ {
		extra = append(extra, doc.Add(pdfstream.Integer(i)))
	}
	doc.Put(catalog, pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Catalog")},
		{Key: "Pages", Value: pages},
	})
	doc.Put(pages, pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Pages")},
		{Key: "Kids", Value: pdfstream.Array{page}},
		{Key: "Count", Value: pdfstream.Integer(1)},
	})
	doc.Put(page, pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Page")},
		{Key: "Parent", Value: pages},
		{Key: "Extra", Value: extra},
	})
	doc.AddPage(page)
	return doc
}

// multiPageDoc returns a document with numPages pages.
func multiPageDoc(numPages int) *memdoc.Document {
	doc := memdoc.New()
	pages := doc.Alloc()
	var kids pdfstream.Array
	for range numPages {
		page := doc.Add(pdfstream.Dict{
			{Key: "Type", Value: pdfstream.Name("Page")},
			{Key: "Parent", Value: pages},
		})
		kids = append(kids, page)
		doc.AddPage(page)
	}
	doc.Put(pages, pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Pages")},
		{Key: "Kids", Value: kids},
		{Key: "Count", Value: pdfstream.Integer(numPages)},
	})
	return doc
}

var objHeader = regexp.MustCompile(`(?m)^(\d+) (\d+) obj\r$`)

// objectNumbers returns the numbers of all indirect objects, in file order.
func objectNumbers(data []byte) []int {
	var res []int
	for _, m := range objHeader.FindAllSubmatch(data, -1) {
		num, _ := strconv.Atoi(string(m[1]))
		res = append(res, num)
	}
	return res
}

// checkXRef verifies that the cross-reference table points to the
// object headers, and returns the trailer dictionary.
func checkXRef(t *testing.T, data []byte) string {
	t.Helper()

	idx := bytes.LastIndex(data, []byte("startxref\r\n"))
	if idx < 0 {
		t.Fatal("startxref not found")
	}
	tail := strings.Fields(string(data[idx+len("startxref\r\n"):]))
	if len(tail) != 2 || tail[1] != "%%EOF" {
		t.Fatalf("malformed file end %q", tail)
	}
	xrefPos, err := strconv.Atoi(tail[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data[xrefPos:], []byte("xref\r\n0 ")) {
		t.Fatalf("no xref table at offset %d", xrefPos)
	}

	lines := strings.Split(string(data[xrefPos:]), "\r\n")
	size, err := strconv.Atoi(strings.TrimPrefix(lines[1], "0 "))
	if err != nil {
		t.Fatal(err)
	}
	for num := 1; num < size; num++ {
		f := strings.Fields(lines[2+num])
		if len(f) != 3 {
			t.Fatalf("malformed xref entry %q", lines[2+num])
		}
		if f[2] != "n" {
			continue
		}
		pos, _ := strconv.Atoi(f[0])
		gen, _ := strconv.Atoi(f[1])
		want := strconv.Itoa(num) + " " + strconv.Itoa(gen) + " obj\r\n"
		if !bytes.HasPrefix(data[pos:], []byte(want)) {
			t.Errorf("object %d: xref offset %d does not point to the object", num, pos)
		}
	}
	if lines[2+size] != "trailer" {
		t.Fatalf("trailer not found after xref table")
	}
	return lines[3+size]
}

func TestMergeTwoDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, &merge.Options{Producer: "test"})
	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(singlePageDoc(5))
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(singlePageDoc(3))
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalPages() != 2 || m.TotalDocuments() != 2 {
		t.Errorf("wrong totals: %d pages, %d documents", m.TotalPages(), m.TotalDocuments())
	}
	err = m.Finish()
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.7\r\n% PDF producer: test\r\n")) {
		t.Errorf("wrong header %q", data[:min(len(data), 40)])
	}

	wantNumbers := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if diff := cmp.Diff(wantNumbers, objectNumbers(data)); diff != "" {
		t.Errorf("wrong object numbers (-want +got):\n%s", diff)
	}

	for _, want := range []string{
		"3 0 obj\r\n<< /Type /Page /Parent 2 0 R /Extra [ 4 0 R 5 0 R ] >> endobj\r\n",
		"6 0 obj\r\n<< /Type /Catalog /Pages 7 0 R >> endobj\r\n",
		"8 0 obj\r\n<< /Type /Page /Parent 7 0 R /Extra [ ] >> endobj\r\n",
		"9 0 obj\r\n<< /Type /Pages /Kids [ 3 0 R 8 0 R ] /Count 2 >> endobj\r\n",
		"10 0 obj\r\n<< /Type /Catalog /Pages 9 0 R >> endobj\r\n",
	} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("missing %q", want)
		}
	}

	trailer := checkXRef(t, data)
	if trailer != "<< /Size 11 /Root 10 0 R >> " {
		t.Errorf("wrong trailer %q", trailer)
	}
}

func TestMergePageCount(t *testing.T) {
	counts := []int{3, 1, 0, 2}

	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, nil)
	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, n := range counts {
		err = m.AddDocument(multiPageDoc(n))
		if err != nil {
			t.Fatal(err)
		}
		total += n
		if m.TotalPages() != total {
			t.Errorf("TotalPages() = %d, want %d", m.TotalPages(), total)
		}
	}
	err = m.Finish()
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("/Count 6 >> endobj")) {
		t.Error("page tree has wrong /Count")
	}
	nums := objectNumbers(data)
	for i := 1; i < len(nums); i++ {
		if nums[i] <= nums[i-1] {
			t.Fatalf("object numbers not increasing: %v", nums)
		}
	}
	checkXRef(t, data)
}

func TestReferences(t *testing.T) {
	first := memdoc.New()
	first.Add(pdfstream.Integer(1))
	first.Add(pdfstream.Integer(2))

	// object 1 refers forward to object 3, to the empty slot 2, and
	// to object 50, which is outside the document
	second := memdoc.New()
	obj1 := second.Alloc()
	second.Alloc()
	obj3 := second.Alloc()
	second.Put(obj1, pdfstream.Array{
		obj3,
		pdfstream.NewReference(2, 0),
		pdfstream.NewReference(50, 0),
	})
	second.Put(obj3, pdfstream.Integer(7))

	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, nil)
	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	for _, doc := range []*memdoc.Document{first, second} {
		err = m.AddDocument(doc)
		if err != nil {
			t.Fatal(err)
		}
	}
	err = m.Finish()
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"3 0 obj\r\n[ 4 0 R null 50 0 R ] endobj\r\n",
		"4 0 obj\r\n7 endobj\r\n",
	} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("missing %q", want)
		}
	}
	checkXRef(t, data)
}

func TestPreserveGenerations(t *testing.T) {
	doc := memdoc.New()
	page := pdfstream.NewReference(1, 4)
	doc.Put(page, pdfstream.Dict{
		{Key: "Type", Value: pdfstream.Name("Page")},
		{Key: "Self", Value: page},
	})
	doc.AddPage(page)

	for _, preserve := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "out.pdf")
		m := merge.New(path, &merge.Options{PreserveGenerations: preserve})
		err := m.Begin()
		if err != nil {
			t.Fatal(err)
		}
		err = m.AddDocument(doc)
		if err != nil {
			t.Fatal(err)
		}
		err = m.Finish()
		if err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		ref := "1 0"
		if preserve {
			ref = "1 4"
		}
		want := ref + " obj\r\n<< /Type /Page /Self " + ref + " R >> endobj\r\n"
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("preserve=%t: missing %q", preserve, want)
		}
		if !bytes.Contains(data, []byte("/Kids [ "+ref+" R ]")) {
			t.Errorf("preserve=%t: wrong page tree", preserve)
		}
		checkXRef(t, data)
	}
}

// docWithMissingPage returns a document with one valid page and two page
// references which cannot be resolved.
func docWithMissingPage() *memdoc.Document {
	doc := multiPageDoc(1)
	empty := doc.Alloc()
	doc.AddPage(empty)
	doc.AddPage(pdfstream.NewReference(42, 0))
	return doc
}

func TestMissingPageSkip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, nil)
	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(docWithMissingPage())
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalPages() != 1 {
		t.Errorf("TotalPages() = %d, want 1", m.TotalPages())
	}
	err = m.Finish()
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("/Kids [ 2 0 R ] /Count 1")) {
		t.Error("wrong page tree")
	}
}

func TestMissingPageFail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	old := []byte("previous contents")
	err := os.WriteFile(path, old, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	m := merge.New(path, &merge.Options{MissingPages: merge.FailOnMissingPage})
	err = m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(multiPageDoc(2))
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(docWithMissingPage())
	var missing *merge.MissingPageError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingPageError, got %v", err)
	}
	if missing.Document != 1 || missing.Page != 1 {
		t.Errorf("wrong location: document %d, page %d", missing.Document, missing.Page)
	}

	// the merge is now aborted
	err2 := m.AddDocument(multiPageDoc(1))
	if err2 != err {
		t.Errorf("AddDocument after failure: %v", err2)
	}
	if m.Finish() == nil {
		t.Error("Finish succeeded after failure")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, old) {
		t.Error("destination file was modified")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("%d files left in output directory", len(entries))
	}
}

func TestAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, nil)
	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(multiPageDoc(1))
	if err != nil {
		t.Fatal(err)
	}
	err = m.Abort()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output file exists after Abort: %v", err)
	}
	if !errors.Is(m.AddDocument(multiPageDoc(1)), merge.ErrNotStarted) {
		t.Error("AddDocument succeeded after Abort")
	}
}

func TestNotStarted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, nil)
	if err := m.AddDocument(multiPageDoc(1)); !errors.Is(err, merge.ErrNotStarted) {
		t.Errorf("AddDocument before Begin: %v", err)
	}
	if err := m.Finish(); !errors.Is(err, merge.ErrNotStarted) {
		t.Errorf("Finish before Begin: %v", err)
	}

	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if m.Begin() == nil {
		t.Error("second call to Begin succeeded")
	}
	err = m.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Finish(); !errors.Is(err, merge.ErrNotStarted) {
		t.Errorf("second Finish: %v", err)
	}
}

func TestEmptyMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, &merge.Options{Version: pdfstream.V1_4})
	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = m.Finish()
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.4\r\n")) {
		t.Error("wrong header")
	}
	if !bytes.Contains(data, []byte("1 0 obj\r\n<< /Type /Pages /Kids [ ] /Count 0 >> endobj")) {
		t.Error("missing empty page tree")
	}
	trailer := checkXRef(t, data)
	if trailer != "<< /Size 3 /Root 2 0 R >> " {
		t.Errorf("wrong trailer %q", trailer)
	}
}

func TestDocumentData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, &merge.Options{
		Producer:    "test",
		Info:        &pdfstream.Info{Title: "Merged"},
		Lang:        language.AmericanEnglish,
		XMPMetadata: true,
	})
	err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(singlePageDoc(3))
	if err != nil {
		t.Fatal(err)
	}
	err = m.Finish()
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"4 0 obj\r\n<< /Title (Merged) /Producer (test) >> endobj\r\n",
		"5 0 obj\r\n<< /Type /Pages /Kids [ 3 0 R ] /Count 1 >> endobj\r\n",
		"6 0 obj\r\n<< /Type /Metadata /Subtype /XML /Length ",
		"7 0 obj\r\n<< /Type /Catalog /Pages 5 0 R /Lang (en-US) /Metadata 6 0 R >> endobj\r\n",
	} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("missing %q", want)
		}
	}
	trailer := checkXRef(t, data)
	if trailer != "<< /Size 8 /Root 7 0 R /Info 4 0 R >> " {
		t.Errorf("wrong trailer %q", trailer)
	}
}

func TestVersionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	m := merge.New(path, &merge.Options{
		Version:     pdfstream.V1_3,
		XMPMetadata: true,
	})
	if m.Begin() == nil {
		t.Fatal("XMP metadata accepted for PDF-1.3")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output file was created: %v", err)
	}
}

func TestCommitError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")

	// a non-empty directory cannot be replaced by a file
	err := os.Mkdir(path, 0o755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	m := merge.New(path, nil)
	err = m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	err = m.AddDocument(singlePageDoc(3))
	if err != nil {
		t.Fatal(err)
	}
	if m.Finish() == nil {
		t.Fatal("Finish succeeded although the destination is a directory")
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.IsDir() {
		t.Error("destination directory was replaced")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("files left in output directory: %v", names)
	}
}
