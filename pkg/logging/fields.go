package logging

import "time"

// Generic field constructors.

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field       { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain field constructors.

func Dataset(id string) Field       { return Field{Key: "dataset", Value: id} }
func Dn(dn string) Field            { return Field{Key: "dn", Value: dn} }
func RecordType(t string) Field     { return Field{Key: "record_type", Value: t} }
func RecordCount(n int) Field       { return Field{Key: "records", Value: n} }
func Analyzer(name string) Field    { return Field{Key: "analyzer", Value: name} }
func SourceFile(path string) Field  { return Field{Key: "file", Value: path} }
func TenantField(name string) Field { return Field{Key: "tenant", Value: name} }
