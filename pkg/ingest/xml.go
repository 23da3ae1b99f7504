package ingest

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/nwade/fabriclens/pkg/record"
)

// DecodeXML reads a fabric export where each child element of the document
// root is one record: the tag names the record type, XML attributes become
// record attributes. DOCTYPE and ENTITY markup is rejected outright rather
// than expanded.
func DecodeXML(r io.Reader, source string) ([]record.Record, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	// Expand nothing beyond the predefined five.
	dec.Entity = map[string]string{}

	var records []record.Record
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Op: "DecodeXML", Source: source, Offset: dec.InputOffset(), Cause: err}
		}
		switch t := tok.(type) {
		case xml.Directive:
			d := strings.ToUpper(string(t))
			if strings.Contains(d, "DOCTYPE") || strings.Contains(d, "ENTITY") {
				return nil, parseError("DecodeXML", source, ErrExternalEntity)
			}
		case xml.StartElement:
			depth++
			if depth == 2 {
				records = append(records, elementRecord(t))
			}
		case xml.EndElement:
			depth--
		}
	}
	if depth != 0 {
		return nil, parseError("DecodeXML", source, ErrTruncatedDocument)
	}
	return records, nil
}

func elementRecord(el xml.StartElement) record.Record {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Name.Local] = a.Value
	}
	return record.Record{Type: el.Name.Local, Attributes: attrs, Dn: attrs["dn"]}
}
