package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/g5becks/eqrender/internal/equation"
	"github.com/samber/oops"
)

const (
	csvMinFields = 3
	activeMarker = "yes"
)

// CSVParser reads rows of active,body,name[,...] after a header row.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) CanParse(path string) bool {
	return DetectFileType(path) == FormatCSV
}

func (p *CSVParser) Parse(path string, content []byte) ([]equation.Equation, error) {
	reader := csv.NewReader(bytes.NewReader(StripBOM(content)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	namer := equation.NewNamer()
	equations := []equation.Equation{}
	headerSeen := false

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}

			return nil, oops.
				Code("SOURCE_READ_ERROR").
				With("path", path).
				Wrapf(err, "reading csv rows")
		}

		if !headerSeen {
			headerSeen = true
			continue
		}

		if len(record) < csvMinFields {
			continue
		}

		active := strings.EqualFold(strings.TrimSpace(record[0]), activeMarker)
		body := strings.TrimSpace(record[1])
		name := namer.Next(strings.TrimSpace(record[2]))

		equations = append(equations, equation.New(active, name, body))
	}

	return equations, nil
}
