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

// Txt2pdf converts text files into a single PDF file.
//
// Every input file is laid out as a separate document, and the documents
// are then concatenated one by one.  Files with the extension ".md" are
// read as Markdown.  The output file is only replaced once all input files
// have been processed successfully.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"seehuhn.de/go/pdfstream"
	"seehuhn.de/go/pdfstream/internal/buildinfo"
	"seehuhn.de/go/pdfstream/internal/profile"
	"seehuhn.de/go/pdfstream/internal/txtdoc"
	"seehuhn.de/go/pdfstream/memdoc"
	"seehuhn.de/go/pdfstream/merge"
)

type config struct {
	out         string
	force       bool
	version     string
	title       string
	author      string
	lang        string
	xmp         bool
	compress    bool
	failMissing bool
	verbose     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.out, "o", "out.pdf", "output file name")
	flag.BoolVar(&cfg.force, "f", false, "overwrite output file if it exists")
	flag.StringVar(&cfg.version, "pdf-version", "1.7", "PDF version of the output")
	flag.StringVar(&cfg.title, "title", "", "document title")
	flag.StringVar(&cfg.author, "author", "", "document author")
	flag.StringVar(&cfg.lang, "lang", "", "document language, e.g. \"en-GB\"")
	flag.BoolVar(&cfg.xmp, "xmp", false, "write XMP metadata")
	flag.BoolVar(&cfg.compress, "z", false, "compress page contents")
	flag.BoolVar(&cfg.failMissing, "fail-missing", false, "fail instead of skipping unresolvable pages")
	flag.BoolVar(&cfg.verbose, "v", false, "print debug messages")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: no input files given")
		flag.Usage()
		os.Exit(1)
	}

	if !cfg.force {
		if _, err := os.Stat(cfg.out); !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "error: output file %q already exists\n", cfg.out)
			os.Exit(1)
		}
	}

	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		log.Fatal(err)
	}

	err = run(&cfg, flag.Args())
	if stopErr := stop(); err == nil {
		err = stopErr
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config, inputs []string) error {
	opt, err := cfg.mergeOptions()
	if err != nil {
		return err
	}
	m := merge.New(cfg.out, opt)
	err = m.Begin()
	if err != nil {
		return err
	}

	progress := io.Discard
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = os.Stderr
	}

	layout := &txtdoc.Options{Compress: cfg.compress}
	for i, fname := range inputs {
		fmt.Fprintf(progress, "\r[%d/%d] %s\x1b[K", i+1, len(inputs), fname)

		doc, err := readDocument(fname, layout)
		if err == nil {
			err = m.AddDocument(doc)
		}
		if err != nil {
			fmt.Fprintln(progress)
			m.Abort()
			return fmt.Errorf("%s: %w", fname, err)
		}
	}
	fmt.Fprintln(progress)

	err = m.Finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(progress, "%s: %d pages from %d files\n",
		cfg.out, m.TotalPages(), m.TotalDocuments())
	return nil
}

func (cfg *config) mergeOptions() (*merge.Options, error) {
	ver, err := pdfstream.ParseVersion(cfg.version)
	if err != nil {
		return nil, err
	}
	opt := &merge.Options{
		Version:     ver,
		Producer:    buildinfo.Producer("txt2pdf"),
		XMPMetadata: cfg.xmp,
	}
	if cfg.lang != "" {
		opt.Lang, err = language.Parse(cfg.lang)
		if err != nil {
			return nil, err
		}
	}
	if cfg.failMissing {
		opt.MissingPages = merge.FailOnMissingPage
	}
	if cfg.verbose {
		opt.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	now := time.Now()
	opt.Info = &pdfstream.Info{
		Title:        cfg.title,
		Author:       cfg.author,
		Creator:      "txt2pdf",
		CreationDate: now,
	}
	return opt, nil
}

func readDocument(fname string, opt *txtdoc.Options) (*memdoc.Document, error) {
	if strings.EqualFold(filepath.Ext(fname), ".md") {
		src, err := os.ReadFile(fname)
		if err != nil {
			return nil, err
		}
		return txtdoc.LayoutLines(txtdoc.MarkdownLines(src, opt.Columns()), opt)
	}

	in, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return txtdoc.Layout(in, opt)
}
