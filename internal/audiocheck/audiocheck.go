// Package audiocheck validates uploaded audio blobs before they reach storage.
package audiocheck

import (
	"bytes"
	"fmt"
)

// Fixed caps for uploaded clips.
const (
	MaxFileSize = 10 * 1024 * 1024 // bytes
	MaxDuration = 600              // seconds
)

// Leading magic bytes of accepted audio containers.
var magicNumbers = map[string][]byte{
	"webm": {0x1A, 0x45, 0xDF, 0xA3},
	"mp3":  {0xFF, 0xFB},
	"wav":  {0x52, 0x49, 0x46, 0x46}, // RIFF
	"ogg":  {0x4F, 0x67, 0x67, 0x53}, // OggS
	"m4a":  {0x00, 0x00, 0x00, 0x20, 0x66, 0x74, 0x79, 0x70},
}

// Byte signatures that reject a file regardless of container.
// Matched case-insensitively against the leading scan window.
var denylist = [][]byte{
	[]byte("<script"),
	[]byte("javascript:"),
	[]byte("data:text/html"),
	bytes.Repeat([]byte{0x00}, 16),
	{0xDE, 0xAD, 0xBE, 0xEF},
}

// How many leading bytes are scanned for denylisted signatures.
const scanWindow = 2048

// Result reports the outcome of a successful validation.
type Result struct {
	FileSize int
	Duration float64
	Format   string
}

// Validate checks size and duration caps, container magic bytes, and the
// payload denylist. The returned error message is safe to surface to users.
func Validate(data []byte, duration float64) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("no audio file provided")
	}
	if len(data) > MaxFileSize {
		return Result{}, fmt.Errorf("file size exceeds %dMB limit", MaxFileSize/1024/1024)
	}
	if duration > MaxDuration {
		return Result{}, fmt.Errorf("duration exceeds %d seconds limit", MaxDuration)
	}

	format := detectFormat(data)
	if format == "" {
		return Result{}, fmt.Errorf("invalid audio file format or corrupted file")
	}

	window := data
	if len(window) > scanWindow {
		window = window[:scanWindow]
	}
	window = bytes.ToLower(window)
	for _, sig := range denylist {
		if bytes.Contains(window, sig) {
			return Result{}, fmt.Errorf("file contains suspicious content")
		}
	}

	return Result{FileSize: len(data), Duration: duration, Format: format}, nil
}

// detectFormat returns the container name whose magic bytes prefix data.
func detectFormat(data []byte) string {
	for format, magic := range magicNumbers {
		if bytes.HasPrefix(data, magic) {
			return format
		}
	}
	return ""
}

// ContentType maps a detected format to its MIME type.
func ContentType(format string) string {
	switch format {
	case "webm":
		return "audio/webm"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
