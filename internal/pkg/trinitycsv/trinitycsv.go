// Package trinitycsv reads and writes the flat CSV layout used to move
// impossible trinity entries between installations.
package trinitycsv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/trinitydb/impossible-trinity/internal/domain"
)

// Header is the exported column order.
var Header = []string{
	"name",
	"name_en",
	"field",
	"element1",
	"element2",
	"element3",
	"description",
	"hyperlink",
	"feature_image_url",
	"element1_image_url",
	"element2_image_url",
	"element3_image_url",
	"element1_sacrifice_explanation",
	"element2_sacrifice_explanation",
	"element3_sacrifice_explanation",
}

var ErrMalformed = errors.New("malformed csv file")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Values returns the entry's cells in Header order.
func Values(t domain.Trinity) []string {
	return []string{
		t.Name,
		t.NameEn,
		t.Field,
		t.Element1,
		t.Element2,
		t.Element3,
		t.Description,
		t.Hyperlink,
		t.FeatureImageURL,
		t.Element1ImageURL,
		t.Element2ImageURL,
		t.Element3ImageURL,
		t.Element1Sacrifice,
		t.Element2Sacrifice,
		t.Element3Sacrifice,
	}
}

// Encode writes a UTF-8 BOM, the header and one row per entry.
func Encode(w io.Writer, trinities []domain.Trinity) error {
	if _, err := w.Write(bom); err != nil {
		return fmt.Errorf("w.Write -> %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("cw.Write -> %w", err)
	}
	for _, t := range trinities {
		if err := cw.Write(Values(t)); err != nil {
			return fmt.Errorf("cw.Write -> %w", err)
		}
	}
	cw.Flush()

	return cw.Error()
}

// Row is one data record keyed by column name. Only columns present in the
// file's header appear in Values.
type Row struct {
	Line   int
	Values map[string]string
}

type Reader struct {
	r       *csv.Reader
	columns map[int]string
}

// NewReader consumes the header. Columns are matched by name, so their order
// does not matter and unknown columns are ignored. A file without a single
// known column is malformed.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(bom)); err == nil && bytes.Equal(prefix, bom) {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	known := make(map[string]bool, len(Header))
	for _, name := range Header {
		known[name] = true
	}

	columns := make(map[int]string)
	seen := make(map[string]bool)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if !known[name] || seen[name] {
			continue
		}
		seen[name] = true
		columns[i] = name
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no known column in header", ErrMalformed)
	}

	return &Reader{
		r:       cr,
		columns: columns,
	}, nil
}

// Read returns the next row or io.EOF. Columns missing from a short row are
// absent from Values.
func (r *Reader) Read() (Row, error) {
	record, err := r.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}

		return Row{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	line, _ := r.r.FieldPos(0)
	row := Row{
		Line:   line,
		Values: make(map[string]string, len(r.columns)),
	}
	for i, name := range r.columns {
		if i < len(record) {
			row.Values[name] = record[i]
		}
	}

	return row, nil
}
