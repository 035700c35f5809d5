package artifact

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"lukhas.dev/seal/seal"
)

// PNG embedding stores the package JSON in a single iTXt chunk (keyword
// SealKey, uncompressed) inserted immediately before the IEND chunk. All
// other chunks pass through unchanged and in their original order, so pixel
// data stays byte-identical.

const pngIENDType = "IEND"
const pngITXtType = "iTXt"

type pngChunk struct {
	typ  string
	data []byte
	// raw spans length..crc inclusive, exactly as found in the file.
	raw []byte
}

func walkPNGChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, malformed("SEAL-PNG-101", "missing PNG signature", nil)
	}
	var chunks []pngChunk
	off := len(pngMagic)
	for off < len(data) {
		if off+8 > len(data) {
			return nil, malformed("SEAL-PNG-102", "truncated PNG chunk header", nil)
		}
		length := binary.BigEndian.Uint32(data[off : off+4])
		end := off + 8 + int(length) + 4
		if end > len(data) || end < off {
			return nil, malformed("SEAL-PNG-103", "truncated PNG chunk body", nil)
		}
		chunks = append(chunks, pngChunk{
			typ:  string(data[off+4 : off+8]),
			data: data[off+8 : off+8+int(length)],
			raw:  data[off:end],
		})
		off = end
	}
	if len(chunks) == 0 || chunks[len(chunks)-1].typ != pngIENDType {
		return nil, malformed("SEAL-PNG-104", "PNG missing IEND chunk", nil)
	}
	return chunks, nil
}

func makePNGChunk(typ string, payload []byte) []byte {
	out := make([]byte, 0, 12+len(payload))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	out = append(out, lenBuf[:]...)
	out = append(out, typ...)
	out = append(out, payload...)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(payload)
	binary.BigEndian.PutUint32(lenBuf[:], crc.Sum32())
	return append(out, lenBuf[:]...)
}

// iTXt layout: keyword NUL compressionFlag compressionMethod languageTag NUL
// translatedKeyword NUL text.
func makeSealITXt(payload []byte) []byte {
	body := make([]byte, 0, len(SealKey)+5+len(payload))
	body = append(body, SealKey...)
	body = append(body, 0, 0, 0, 0, 0)
	body = append(body, payload...)
	return makePNGChunk(pngITXtType, body)
}

func sealPayloadFromITXt(chunk pngChunk) ([]byte, bool, error) {
	if chunk.typ != pngITXtType {
		return nil, false, nil
	}
	body := chunk.data
	nul := bytes.IndexByte(body, 0)
	if nul < 0 || string(body[:nul]) != SealKey {
		return nil, false, nil
	}
	rest := body[nul+1:]
	if len(rest) < 2 {
		return nil, false, malformed("SEAL-PNG-105", "seal iTXt chunk truncated", nil)
	}
	if rest[0] != 0 {
		return nil, false, malformed("SEAL-PNG-106", "seal iTXt chunk must be uncompressed", nil)
	}
	rest = rest[2:]
	// Skip language tag and translated keyword.
	for i := 0; i < 2; i++ {
		nul = bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, false, malformed("SEAL-PNG-105", "seal iTXt chunk truncated", nil)
		}
		rest = rest[nul+1:]
	}
	// Verify the chunk CRC before trusting the payload.
	crc := crc32.NewIEEE()
	crc.Write([]byte(chunk.typ))
	crc.Write(chunk.data)
	stored := binary.BigEndian.Uint32(chunk.raw[len(chunk.raw)-4:])
	if crc.Sum32() != stored {
		return nil, false, malformed("SEAL-PNG-107", "seal iTXt chunk CRC mismatch", nil)
	}
	return rest, true, nil
}

func embedPNG(data, payload []byte) ([]byte, error) {
	chunks, err := walkPNGChunks(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data)+len(payload)+64)
	out = append(out, pngMagic...)
	for _, c := range chunks {
		if c.typ == pngIENDType {
			out = append(out, makeSealITXt(payload)...)
		}
		out = append(out, c.raw...)
	}
	return out, nil
}

func extractPNG(data []byte) (*seal.Package, []byte, error) {
	chunks, err := walkPNGChunks(data)
	if err != nil {
		return nil, nil, err
	}
	sealIdx := -1
	var payload []byte
	for i, c := range chunks {
		p, found, err := sealPayloadFromITXt(c)
		if err != nil {
			return nil, nil, err
		}
		if found {
			sealIdx = i
			payload = p
			break
		}
	}
	if sealIdx < 0 {
		return nil, nil, ErrNoSeal
	}
	pkg, err := decodePackage(payload)
	if err != nil {
		return nil, nil, err
	}
	rest := make([]byte, 0, len(data))
	rest = append(rest, pngMagic...)
	for i, c := range chunks {
		if i == sealIdx {
			continue
		}
		rest = append(rest, c.raw...)
	}
	return pkg, rest, nil
}
