package artifact

import (
	"bytes"
	"encoding/base64"

	"lukhas.dev/seal/seal"
)

// Text embedding prepends a front-matter block:
//
//	---
//	lukhas-seal: <base64 of package JSON>
//	---
//
// followed by the original text unchanged. Extraction removes exactly the
// first well-formed front-matter block carrying the seal key.

var (
	fmOpen  = []byte("---\n")
	fmClose = []byte("\n---\n")
	fmKey   = []byte(SealKey + ": ")
)

func embedText(data, payload []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(payload)
	out := make([]byte, 0, len(data)+len(encoded)+len(fmKey)+len(fmOpen)+len(fmClose))
	out = append(out, fmOpen...)
	out = append(out, fmKey...)
	out = append(out, encoded...)
	out = append(out, fmClose...)
	return append(out, data...)
}

func extractText(data []byte) (*seal.Package, []byte, error) {
	if !bytes.HasPrefix(data, fmOpen) {
		return nil, nil, ErrNoSeal
	}
	body := data[len(fmOpen):]
	end := bytes.Index(body, fmClose)
	if end < 0 {
		return nil, nil, ErrNoSeal
	}
	block := body[:end]
	rest := body[end+len(fmClose):]

	for _, line := range bytes.Split(block, []byte("\n")) {
		encoded, ok := bytes.CutPrefix(line, fmKey)
		if !ok {
			continue
		}
		payload, err := base64.StdEncoding.DecodeString(string(encoded))
		if err != nil {
			return nil, nil, malformed("SEAL-TEXT-101", "front-matter seal value is not base64", err)
		}
		pkg, err := decodePackage(payload)
		if err != nil {
			return nil, nil, err
		}
		out := make([]byte, len(rest))
		copy(out, rest)
		return pkg, out, nil
	}
	// A front-matter block without the seal key belongs to the document.
	return nil, nil, ErrNoSeal
}
