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
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Object represents an object in a PDF file.  The set of object types is
// fixed: [Array], [Bool], [Dict], [Integer], [Name], [Real], [Reference],
// [*Stream], and [String].  The Go value nil represents the PDF null object.
//
// Objects must not be modified after they have been passed to a [Writer].
type Object interface {
	// PDF writes the PDF file representation of the object to w.
	// Every token written is followed by a single space.
	PDF(w io.Writer) error

	isObject()
}

var (
	tokNull  = []byte("null ")
	tokTrue  = []byte("true ")
	tokFalse = []byte("false ")
	crlf     = []byte("\r\n")
)

// writeObject writes obj to w.  A nil object is written as "null".
func writeObject(w io.Writer, obj Object) error {
	if obj == nil {
		_, err := w.Write(tokNull)
		return err
	}
	return obj.PDF(w)
}

// Format formats a PDF object as a string, in the same way as it
// would be written to a PDF file.
func Format(obj Object) string {
	buf := &bytes.Buffer{}
	// writes to a bytes.Buffer cannot fail
	_ = writeObject(buf, obj)
	return buf.String()
}

// Bool represents a boolean value in a PDF file.
type Bool bool

// PDF implements the [Object] interface.
func (x Bool) PDF(w io.Writer) error {
	var err error
	if x {
		_, err = w.Write(tokTrue)
	} else {
		_, err = w.Write(tokFalse)
	}
	return err
}

func (Bool) isObject() {}

// Integer represents an integer constant in a PDF file.
type Integer int64

// PDF implements the [Object] interface.
func (x Integer) PDF(w io.Writer) error {
	buf := make([]byte, 0, 21)
	buf = strconv.AppendInt(buf, int64(x), 10)
	buf = append(buf, ' ')
	_, err := w.Write(buf)
	return err
}

func (Integer) isObject() {}

// Real represents an real number in a PDF file.
// Reals are always written in fixed point notation with five digits after
// the decimal point.  NaN and infinite values have no PDF representation
// and must not be written.
type Real float64

// PDF implements the [Object] interface.
func (x Real) PDF(w io.Writer) error {
	buf := make([]byte, 0, 24)
	buf = strconv.AppendFloat(buf, float64(x), 'f', 5, 64)
	buf = append(buf, ' ')
	_, err := w.Write(buf)
	return err
}

func (Real) isObject() {}

// String represents a raw string in a PDF file.  The character set encoding,
// if any, is determined by the context.
type String []byte

// PDF implements the [Object] interface.
//
// Strings which contain parentheses or backslashes are written in
// hexadecimal form, all other strings are written verbatim as literal
// strings.  No escape sequences are ever used.
func (x String) PDF(w io.Writer) error {
	var buf []byte
	if bytes.ContainsAny(x, `()\`) {
		buf = make([]byte, 0, 2*len(x)+3)
		buf = append(buf, '<')
		buf = hex.AppendEncode(buf, x)
		buf = append(buf, '>', ' ')
	} else {
		buf = make([]byte, 0, len(x)+3)
		buf = append(buf, '(')
		buf = append(buf, x...)
		buf = append(buf, ')', ' ')
	}
	_, err := w.Write(buf)
	return err
}

func (String) isObject() {}

// Name represents a name object in a PDF file.
type Name string

// PDF implements the [Object] interface.
func (x Name) PDF(w io.Writer) error {
	buf := make([]byte, 0, len(x)+2)
	buf = append(buf, '/')
	for i := 0; i < len(x); i++ {
		c := x[i]
		if isRegular(c) {
			buf = append(buf, c)
		} else {
			buf = append(buf, '#')
			buf = hex.AppendEncode(buf, []byte{c})
		}
	}
	buf = append(buf, ' ')
	_, err := w.Write(buf)
	return err
}

func (Name) isObject() {}

// Array represent an array of objects in a PDF file.
type Array []Object

func (x Array) String() string {
	return "<Array, " + strconv.Itoa(len(x)) + " elements>"
}

// PDF implements the [Object] interface.
func (x Array) PDF(w io.Writer) error {
	_, err := w.Write([]byte("[ "))
	if err != nil {
		return err
	}
	for _, val := range x {
		err = writeObject(w, val)
		if err != nil {
			return err
		}
	}
	_, err = w.Write([]byte("] "))
	return err
}

func (Array) isObject() {}

// DictEntry is a single key/value pair of a [Dict].
type DictEntry struct {
	Key   Name
	Value Object
}

// Dict represent a Dictionary object in a PDF file.
//
// The entries are written to the file in the order in which they are
// stored.  Keys must be unique; the [Dict.Set] method maintains this.
type Dict []DictEntry

// Get returns the value stored for key, or nil if key is not present.
func (x Dict) Get(key Name) Object {
	for _, e := range x {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Set stores val under key.  If key is already present, the value is
// replaced in place and the position of the key does not change.
func (x *Dict) Set(key Name, val Object) {
	for i := range *x {
		if (*x)[i].Key == key {
			(*x)[i].Value = val
			return
		}
	}
	*x = append(*x, DictEntry{Key: key, Value: val})
}

// Delete removes key from the dictionary.
func (x *Dict) Delete(key Name) {
	for i := range *x {
		if (*x)[i].Key == key {
			*x = append((*x)[:i], (*x)[i+1:]...)
			return
		}
	}
}

// Keys returns the keys of the dictionary, in storage order.
func (x Dict) Keys() []Name {
	keys := make([]Name, len(x))
	for i, e := range x {
		keys[i] = e.Key
	}
	return keys
}

func (x Dict) String() string {
	res := []string{}
	if tp, ok := x.Get("Type").(Name); ok {
		res = append(res, string(tp)+" Dict")
	} else {
		res = append(res, "Dict")
	}
	if len(x) != 1 {
		res = append(res, strconv.Itoa(len(x))+" entries")
	} else {
		res = append(res, "1 entry")
	}
	return "<" + strings.Join(res, ", ") + ">"
}

// PDF implements the [Object] interface.
func (x Dict) PDF(w io.Writer) error {
	_, err := w.Write([]byte("<< "))
	if err != nil {
		return err
	}
	for _, e := range x {
		err = e.Key.PDF(w)
		if err != nil {
			return err
		}
		err = writeObject(w, e.Value)
		if err != nil {
			return err
		}
	}
	_, err = w.Write([]byte(">> "))
	return err
}

func (Dict) isObject() {}

// Stream represent a stream object in a PDF file.
//
// Data is written to the file exactly as given.  If the data is compressed
// or otherwise encoded, the caller must set the corresponding /Filter and
// /Length entries in the stream dictionary.
type Stream struct {
	Dict Dict
	Data []byte
}

func (x *Stream) String() string {
	res := []string{}
	if tp, ok := x.Dict.Get("Type").(Name); ok {
		res = append(res, string(tp)+" Stream")
	} else {
		res = append(res, "Stream")
	}
	res = append(res, strconv.Itoa(len(x.Data))+" bytes")
	switch filter := x.Dict.Get("Filter").(type) {
	case Name:
		res = append(res, string(filter))
	case Array:
		for _, f := range filter {
			if name, ok := f.(Name); ok {
				res = append(res, string(name))
			}
		}
	}
	return "<" + strings.Join(res, ", ") + ">"
}

// PDF implements the [Object] interface.
func (x *Stream) PDF(w io.Writer) error {
	err := x.Dict.PDF(w)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("stream\r\n"))
	if err != nil {
		return err
	}
	_, err = w.Write(x.Data)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("\r\nendstream\r\n"))
	return err
}

func (*Stream) isObject() {}

// Reference represents a reference to an indirect object in a PDF file.
// The lower 32 bits represent the object number, the next 16 bits the
// generation number.
//
// The zero Reference refers to object 0, which is never used for data.
// It is used to indicate that no reference has been set.
type Reference uint64

// NewReference returns the reference with the given object number and
// generation.
func NewReference(number uint32, generation uint16) Reference {
	return Reference(uint64(number) | uint64(generation)<<32)
}

// Number returns the object number of the reference.
func (x Reference) Number() uint32 {
	return uint32(x)
}

// Generation returns the generation number of the reference.
func (x Reference) Generation() uint16 {
	return uint16(x >> 32)
}

func (x Reference) String() string {
	res := []string{
		"obj_",
		strconv.FormatUint(uint64(x.Number()), 10),
	}
	gen := x.Generation()
	if gen > 0 {
		res = append(res, "@", strconv.FormatUint(uint64(gen), 10))
	}
	return strings.Join(res, "")
}

// PDF implements the [Object] interface.
func (x Reference) PDF(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d %d R ", x.Number(), x.Generation())
	return err
}

func (Reference) isObject() {}
