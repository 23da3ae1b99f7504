// Package ingest decodes fabric configuration exports into a uniform record
// stream. JSON and XML carry managed-object trees; CSV carries CMDB asset
// inventories.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nwade/fabriclens/pkg/record"
)

type imdataEnvelope struct {
	TotalCount string            `json:"totalCount"`
	Imdata     []json.RawMessage `json:"imdata"`
}

// DecodeJSON reads an `imdata` export. Each imdata element is a single-key
// object mapping the record type to its attributes. Malformed documents fail
// outright; individual records with no attributes decode to empty records.
func DecodeJSON(r io.Reader, source string) ([]record.Record, error) {
	var env imdataEnvelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, &ParseError{Op: "DecodeJSON", Source: source, Offset: offsetOf(err), Cause: err}
	}
	if env.Imdata == nil {
		return nil, parseError("DecodeJSON", source, ErrMissingImdata)
	}

	records := make([]record.Record, 0, len(env.Imdata))
	for i, raw := range env.Imdata {
		var obj map[string]struct {
			Attributes map[string]interface{} `json:"attributes"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, parseError("DecodeJSON", source,
				fmt.Errorf("imdata element %d: %w", i, err))
		}
		for typ, body := range obj {
			records = append(records, newRecord(typ, body.Attributes))
		}
	}
	return records, nil
}

func newRecord(typ string, attrs map[string]interface{}) record.Record {
	flat := make(map[string]string, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			flat[k] = val
		case nil:
			// dropped
		case float64:
			flat[k] = trimFloat(val)
		case bool:
			if val {
				flat[k] = "yes"
			} else {
				flat[k] = "no"
			}
		default:
			flat[k] = fmt.Sprint(val)
		}
	}
	return record.Record{Type: typ, Attributes: flat, Dn: flat["dn"]}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func offsetOf(err error) int64 {
	if syn, ok := err.(*json.SyntaxError); ok {
		return syn.Offset
	}
	return 0
}
