package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/nwade/fabriclens/pkg/record"
)

// DecodeAssets reads a CMDB inventory CSV. Rows are keyed by the SerialNumber
// column (Serial accepted as a fallback header); rows without a serial are
// skipped, not errors.
func DecodeAssets(r io.Reader, source string) ([]record.Asset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, parseError("DecodeAssets", source, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	serialCol, ok := col["SerialNumber"]
	if !ok {
		serialCol, ok = col["Serial"]
	}
	if !ok {
		return nil, parseError("DecodeAssets", source, ErrNoRecords)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var assets []record.Asset
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError("DecodeAssets", source, err)
		}
		if serialCol >= len(row) {
			continue
		}
		serial := strings.TrimSpace(row[serialCol])
		if serial == "" {
			continue
		}
		assets = append(assets, record.Asset{
			SerialNumber: serial,
			Rack:         field(row, "Rack"),
			Building:     field(row, "Building"),
			Hall:         field(row, "Hall"),
			Site:         field(row, "Site"),
		})
	}
	return assets, nil
}
