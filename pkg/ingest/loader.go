package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nwade/fabriclens/pkg/logging"
	"github.com/nwade/fabriclens/pkg/metrics"
	"github.com/nwade/fabriclens/pkg/record"
)

// Format identifies the wire encoding of an input file.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatCSV  Format = "csv"
)

// DetectFormat picks a format from the file extension, sniffing the first
// non-space byte when the extension is unknown.
func DetectFormat(path string, head []byte) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".xml":
		return FormatXML, true
	case ".csv":
		return FormatCSV, true
	}
	for _, b := range head {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return FormatJSON, true
		case '<':
			return FormatXML, true
		default:
			return "", false
		}
	}
	return "", false
}

// Batch is the result of loading a set of export files.
type Batch struct {
	Records []record.Record
	Assets  []record.Asset
	Skipped []string
}

// Loader reads export files into a Batch, skipping files that fail to parse.
type Loader struct {
	log logging.Logger
}

func NewLoader(log logging.Logger) *Loader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Loader{log: log}
}

// LoadFile decodes a single file according to its detected format.
func (l *Loader) LoadFile(path string) ([]record.Record, []record.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		metrics.IngestFilesTotal.WithLabelValues("unknown", "error").Inc()
		return nil, nil, parseError("LoadFile", path, err)
	}
	format, ok := DetectFormat(path, data)
	if !ok {
		metrics.IngestFilesTotal.WithLabelValues("unknown", "error").Inc()
		return nil, nil, parseError("LoadFile", path, ErrUnknownFormat)
	}

	start := time.Now()
	var recs []record.Record
	var assets []record.Asset
	switch format {
	case FormatJSON:
		recs, err = DecodeJSON(bytes.NewReader(data), path)
	case FormatXML:
		recs, err = DecodeXML(bytes.NewReader(data), path)
	default:
		assets, err = DecodeAssets(bytes.NewReader(data), path)
	}
	metrics.IngestDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IngestFilesTotal.WithLabelValues(string(format), "error").Inc()
		return nil, nil, err
	}
	metrics.IngestFilesTotal.WithLabelValues(string(format), "ok").Inc()
	metrics.IngestRecordsTotal.Add(float64(len(recs)))
	return recs, assets, nil
}

// LoadBatch loads every path, logging and skipping files that fail. The batch
// itself never aborts; callers inspect Skipped for partial loads.
func (l *Loader) LoadBatch(paths []string) Batch {
	var batch Batch
	for _, path := range paths {
		recs, assets, err := l.LoadFile(path)
		if err != nil {
			l.log.Warn("skipping unreadable export file",
				logging.SourceFile(path), logging.ErrorField(err))
			batch.Skipped = append(batch.Skipped, path)
			continue
		}
		batch.Records = append(batch.Records, recs...)
		batch.Assets = append(batch.Assets, assets...)
		l.log.Info("loaded export file",
			logging.SourceFile(path),
			logging.RecordCount(len(recs)),
			logging.Int("assets", len(assets)))
	}
	return batch
}
