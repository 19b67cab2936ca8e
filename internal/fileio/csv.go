package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and converting to UTF-8.
// Exports from spreadsheet tools come as UTF-8 (with or without BOM), UTF-16 or Windows-1252.
func readCSV(r io.Reader, headerRow int) (Table, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(2048)
	var dec io.Reader
	switch detectCharset(peek) {
	case "windows-1252":
		dec = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	case "utf-16le":
		dec = transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case "utf-16be":
		dec = transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	default:
		// UTF-8; BOM срезаем
		dec = transform.NewReader(br, unicode.UTF8BOM.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, rec)
	}
	return buildTable(rows, headerRow), nil
}

// detectCharset: чистый UTF-8 (и ASCII) не отдаём chardet, он называет ASCII "ISO-8859-1".
// Peek может оборвать многобайтовый символ, хвост не проверяем.
func detectCharset(peek []byte) string {
	if len(peek) == 0 {
		return "utf-8"
	}
	if bytes.HasPrefix(peek, []byte{0xff, 0xfe}) {
		return "utf-16le"
	}
	if bytes.HasPrefix(peek, []byte{0xfe, 0xff}) {
		return "utf-16be"
	}
	if utf8.Valid(peek[:lastFullRune(peek)]) {
		return "utf-8"
	}
	// не UTF-8: доверяем chardet только в UTF-16, остальное читаем как Windows-1252
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		if cs := strings.ToLower(det.Charset); cs == "utf-16le" || cs == "utf-16be" {
			return cs
		}
	}
	return "windows-1252"
}

// lastFullRune returns the length of b without a trailing incomplete UTF-8 sequence.
func lastFullRune(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
