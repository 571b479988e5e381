package engine

import (
	"encoding/json"
	"fmt"

	toon "github.com/toon-format/toon-go"
)

// Format represents a result encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOON Format = "toon"
)

// ParseFormat parses a format string, defaulting to JSON.
func ParseFormat(s string) Format {
	switch s {
	case "toon":
		return FormatTOON
	default:
		return FormatJSON
	}
}

// EncodeResult serializes a result (or any other value) in the given
// format. This is plain serialization for downstream consumers; the
// engine mandates no transport.
func EncodeResult(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatTOON:
		return toon.Marshal(v, toon.WithIndent(2))
	default:
		return nil, fmt.Errorf("unknown format: %q", format)
	}
}
