package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var decoders = map[string]encoding.Encoding{
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
}

const sniffSize = 2048

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and converting to UTF-8.
// Input that already looks like UTF-8 is never re-decoded.
func readCSV(r io.Reader, headerRow int) (*Table, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(sniffSize)
	var dec io.Reader = br
	if len(peek) > 0 && !looksUTF8(peek, len(peek) == sniffSize) {
		if enc := detectLegacy(peek); enc != nil {
			dec = transform.NewReader(br, enc.NewDecoder())
		}
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
			return nil, err
		}
		rows = append(rows, rec)
	}
	return toTable(rows, headerRow), nil
}

// looksUTF8 проверяет окно; при truncated допускает одну руну, обрезанную границей окна.
func looksUTF8(b []byte, truncated bool) bool {
	if truncated && len(b) > 0 {
		i := len(b) - 1
		for i > 0 && len(b)-i < utf8.UTFMax && !utf8.RuneStart(b[i]) {
			i--
		}
		if utf8.RuneStart(b[i]) && !utf8.FullRune(b[i:]) {
			b = b[:i]
		}
	}
	return utf8.Valid(b)
}

// detectLegacy выбирает однобайтовую кодировку для не-UTF-8 окна.
// На коротких кириллических текстах chardet часто отвечает ISO-8859-1,
// поэтому кириллицу узнаём по форме слов и читаем как cp1251.
func detectLegacy(peek []byte) encoding.Encoding {
	if cyrillicWords(peek) {
		return charmap.Windows1251
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return nil
	}
	return decoders[strings.ToLower(det.Charset)]
}

// cyrillicWords: в словах с байтами >= 0x80 таких байтов больше, чем ASCII-букв.
// Латиница с диакритикой ("Café", "élève") даёт обратное соотношение.
func cyrillicWords(b []byte) bool {
	var high, ascii int
	wordHigh, wordASCII := 0, 0
	flush := func() {
		if wordHigh > 0 {
			high += wordHigh
			ascii += wordASCII
		}
		wordHigh, wordASCII = 0, 0
	}
	for _, c := range b {
		switch {
		case c >= 0x80:
			wordHigh++
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			wordASCII++
		default:
			flush()
		}
	}
	flush()
	return high > ascii
}

// WriteCSV writes header and rows as RFC 4180 CSV.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
