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

package txtdoc

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownLines converts a Markdown document into lines of plain text.
// Paragraphs are wrapped to the given number of columns, code blocks are
// copied verbatim, and blocks are separated by empty lines.
func MarkdownLines(src []byte, columns int) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var lines []string
	var prefix string
	emit := func(s string) {
		lines = append(lines, wrap(prefix+s, columns, len(prefix))...)
		prefix = ""
	}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Parent() == doc {
				lines = append(lines, "")
			}
			return ast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *ast.Heading:
			s := inlineText(n, src)
			if n.Level == 1 {
				s = strings.ToUpper(s)
			}
			emit(s)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			emit(inlineText(n, src))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			segs := n.Lines()
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				line := strings.TrimRight(string(seg.Value(src)), "\r\n")
				lines = append(lines, "    "+line)
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			prefix = "- "
			if list, ok := n.Parent().(*ast.List); ok && list.IsOrdered() {
				idx := list.Start
				for prev := n.PreviousSibling(); prev != nil; prev = prev.PreviousSibling() {
					idx++
				}
				prefix = strconv.Itoa(idx) + ". "
			}
		case *ast.ThematicBreak:
			lines = append(lines, strings.Repeat("-", min(columns, 20)))
		}
		return ast.WalkContinue, nil
	})

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// inlineText returns the text content of the inline children of n.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// wrap breaks s into lines of at most columns characters, where possible.
// Continuation lines are indented by indent spaces.
func wrap(s string, columns, indent int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var res []string
	line := words[0]
	for _, w := range words[1:] {
		if columns > 0 && len([]rune(line))+1+len([]rune(w)) > columns {
			res = append(res, line)
			line = strings.Repeat(" ", indent) + w
			continue
		}
		line += " " + w
	}
	return append(res, line)
}
