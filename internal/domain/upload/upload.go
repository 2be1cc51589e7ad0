// Package upload holds the sensor upload contract: payload parsing, filename
// resolution and per-category sample statistics.
package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Sensor stream categories reported in upload statistics.
const (
	Accelerometer = "accelerometer"
	Gyroscope     = "gyroscope"
	Magnetometer  = "magnetometer"
	DeviceMotion  = "deviceMotion"
	Altimeter     = "altimeter"
)

// Categories lists the reported categories in response order.
var Categories = []string{Accelerometer, Gyroscope, Magnetometer, DeviceMotion, Altimeter}

const (
	// FilenameHeader carries the optional client supplied filename.
	FilenameHeader = "X-Filename"

	defaultFilenamePrefix = "sensor_data_"
	defaultFilenameLayout = "20060102_150405"
	indent                = "  "
)

// Payload is a parsed upload body.
type Payload struct {
	// Object is the decoded top-level JSON object. Nested objects are opaque
	// and numbers are json.Number.
	Object map[string]any
	// Pretty is the indented JSON written to disk. It keeps the client's key
	// order and number literals; strings are written unescaped and a repeated
	// key keeps its last value.
	Pretty []byte
}

// Parse validates an upload body. The body must be valid JSON, must not be a
// falsy value (null, false, 0, "", []) and must be a JSON object. An empty
// object is accepted.
func Parse(body []byte) (*Payload, error) {
	const op = "upload.parse"

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, WrapKind(op, ErrInvalidJSON, errEmptyBody)
	}

	v, err := decodeOrdered(trimmed)
	if err != nil {
		return nil, WrapKind(op, ErrInvalidJSON, err)
	}
	if isFalsy(v) {
		return nil, NewKind(op, ErrNoData)
	}
	obj, ok := v.(*object)
	if !ok {
		return nil, WrapKind(op, ErrInvalidJSON, fmt.Errorf("payload must be a JSON object, got %s", jsonKind(v)))
	}

	var compact bytes.Buffer
	if err := encodeCompact(&compact, obj); err != nil {
		return nil, WrapKind(op, ErrInvalidJSON, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact.Bytes(), "", indent); err != nil {
		return nil, WrapKind(op, ErrInvalidJSON, err)
	}
	return &Payload{Object: obj.vals, Pretty: buf.Bytes()}, nil
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	}
	return "object"
}

// Statistics maps each category to its sample count.
type Statistics map[string]int

// Summarize counts the samples of each category. A category that is missing
// or not an array counts as zero.
func Summarize(obj map[string]any) Statistics {
	stats := make(Statistics, len(Categories))
	for _, c := range Categories {
		samples, _ := obj[c].([]any)
		stats[c] = len(samples)
	}
	return stats
}

// Total sums the counts of all categories.
func (s Statistics) Total() int {
	total := 0
	for _, c := range Categories {
		total += s[c]
	}
	return total
}

// MarshalJSON writes the categories in their fixed order and always includes
// all five of them.
func (s Statistics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", c, s[c])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Receipt summarises a persisted upload.
type Receipt struct {
	Filename     string
	Path         string
	FileSize     int64
	Statistics   Statistics
	TotalSamples int
}

// DefaultFilename names an upload that arrived without a filename hint.
func DefaultFilename(t time.Time) string {
	return defaultFilenamePrefix + t.Local().Format(defaultFilenameLayout) + ".json"
}

// ResolveFilename returns hint when it is non-empty, otherwise a name derived
// from now. Uploads resolving to the same name overwrite each other.
func ResolveFilename(hint string, now time.Time) string {
	if hint != "" {
		return hint
	}
	return DefaultFilename(now)
}
