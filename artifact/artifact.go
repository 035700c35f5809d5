// Package artifact embeds seal packages inside an artifact's own bytes and
// recovers them, preserving the non-seal portion byte for byte.
//
// Supported containers: PNG (iTXt metadata chunk), JPEG (EXIF UserComment),
// and plain text or markdown (front-matter block). Every format satisfies the
// round-trip invariant: extracting an embedded artifact yields the original
// package and the original artifact bytes unchanged.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"

	"lukhas.dev/seal/seal"
)

// SealKey is the fixed metadata key under which packages are stored in every
// container format.
const SealKey = "lukhas-seal"

// ErrNoSeal reports that the container is well-formed but carries no seal.
// Callers distinguish it from malformed-container errors so they know whether
// retrying extraction with a different format guess is worthwhile.
var ErrNoSeal = errors.New("artifact: no seal found")

// Format names a container format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatText Format = "text"
)

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xff, 0xd8}
)

// Detect sniffs the container format from magic bytes, defaulting to text.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG
	case bytes.HasPrefix(data, jpegMagic):
		return FormatJPEG
	default:
		return FormatText
	}
}

// MediaType returns the MIME type for a detected format.
func MediaType(f Format) string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "text/plain"
	}
}

// Embed places pkg inside data using the given container format (FormatAuto
// sniffs it). The original artifact bytes are carried through unchanged.
func Embed(data []byte, pkg *seal.Package, f Format) ([]byte, error) {
	payload, err := encodePackage(pkg)
	if err != nil {
		return nil, err
	}
	switch resolve(f, data) {
	case FormatPNG:
		return embedPNG(data, payload)
	case FormatJPEG:
		return embedJPEG(data, payload)
	default:
		return embedText(data, payload), nil
	}
}

// Extract recovers a package from data and returns it together with the
// artifact bytes as they were before embedding. Returns ErrNoSeal when the
// container carries no seal.
func Extract(data []byte, f Format) (*seal.Package, []byte, error) {
	switch resolve(f, data) {
	case FormatPNG:
		return extractPNG(data)
	case FormatJPEG:
		return extractJPEG(data)
	default:
		return extractText(data)
	}
}

func resolve(f Format, data []byte) Format {
	if f == FormatAuto || f == "" {
		return Detect(data)
	}
	return f
}

func encodePackage(pkg *seal.Package) ([]byte, error) {
	payload, err := json.Marshal(pkg)
	if err != nil {
		return nil, &seal.Error{Kind: seal.KindInternal, Code: "SEAL-ART-001", Message: "marshal seal package", Cause: err}
	}
	return payload, nil
}

func decodePackage(payload []byte) (*seal.Package, error) {
	var pkg seal.Package
	if err := json.Unmarshal(payload, &pkg); err != nil {
		return nil, malformed("SEAL-ART-002", "embedded seal payload is not valid JSON", err)
	}
	if pkg.Seal.Version == "" || pkg.Signature.Signature == "" {
		return nil, malformed("SEAL-ART-003", "embedded seal payload missing seal or signature", nil)
	}
	return &pkg, nil
}

func malformed(code, msg string, cause error) error {
	return &seal.Error{Kind: seal.KindFormat, Code: code, Message: msg, Cause: cause}
}
