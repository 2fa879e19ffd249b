package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Year(year int) Field {
	return Int("year", year)
}

// Family takes anything with a String method so that this package does
// not depend on the graph types
func Family(f interface{ String() string }) Field {
	return String("family", f.String())
}

func File(path string) Field {
	return String("file", path)
}

func ASN(asn uint32) Field {
	return Field{Key: "asn", Value: asn}
}

func Backend(name string) Field {
	return String("backend", name)
}

func Paths(n int) Field {
	return Int("paths", n)
}

func Vertices(n int) Field {
	return Int("vertices", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
