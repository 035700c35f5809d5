package artifact

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"lukhas.dev/seal/seal"
)

// JPEG embedding stores the package JSON in the EXIF UserComment field
// (tag 0x9286) of a dedicated APP1 segment inserted immediately after SOI.
// The value carries the standard 8-byte "UNICODE\0" charset prefix followed
// by the UTF-16BE payload. Every other segment, and the entropy-coded image
// data, passes through untouched.

const (
	jpegMarkerAPP1 = 0xe1
	jpegMarkerSOS  = 0xda

	exifTagExifIFD     = 0x8769
	exifTagUserComment = 0x9286

	exifTypeLong      = 4
	exifTypeUndefined = 7
)

var (
	exifHeader    = []byte("Exif\x00\x00")
	unicodePrefix = []byte("UNICODE\x00")
)

func utf16BEEncode(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.BigEndian.PutUint16(out[2*i:], u)
	}
	return out
}

func utf16BEDecode(b []byte) (string, bool) {
	if len(b)%2 != 0 {
		return "", false
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units)), true
}

// buildExifAPP1 lays out a minimal big-endian TIFF with IFD0 pointing at an
// Exif IFD holding one UserComment entry.
func buildExifAPP1(payload []byte) ([]byte, error) {
	comment := append(append([]byte{}, unicodePrefix...), utf16BEEncode(string(payload))...)

	const (
		ifd0Off    = 8
		exifIFDOff = ifd0Off + 2 + 12 + 4
		valueOff   = exifIFDOff + 2 + 12 + 4
	)
	tiff := make([]byte, 0, valueOff+len(comment))
	tiff = append(tiff, 'M', 'M', 0x00, 0x2a)
	tiff = binary.BigEndian.AppendUint32(tiff, ifd0Off)

	// IFD0: one entry, the Exif IFD pointer.
	tiff = binary.BigEndian.AppendUint16(tiff, 1)
	tiff = binary.BigEndian.AppendUint16(tiff, exifTagExifIFD)
	tiff = binary.BigEndian.AppendUint16(tiff, exifTypeLong)
	tiff = binary.BigEndian.AppendUint32(tiff, 1)
	tiff = binary.BigEndian.AppendUint32(tiff, exifIFDOff)
	tiff = binary.BigEndian.AppendUint32(tiff, 0)

	// Exif IFD: one entry, the UserComment.
	tiff = binary.BigEndian.AppendUint16(tiff, 1)
	tiff = binary.BigEndian.AppendUint16(tiff, exifTagUserComment)
	tiff = binary.BigEndian.AppendUint16(tiff, exifTypeUndefined)
	tiff = binary.BigEndian.AppendUint32(tiff, uint32(len(comment)))
	tiff = binary.BigEndian.AppendUint32(tiff, valueOff)
	tiff = binary.BigEndian.AppendUint32(tiff, 0)
	tiff = append(tiff, comment...)

	segLen := 2 + len(exifHeader) + len(tiff)
	if segLen > 0xffff {
		return nil, &seal.Error{Kind: seal.KindInput, Code: "SEAL-JPEG-101", Message: "seal package too large for an EXIF segment"}
	}
	seg := make([]byte, 0, 2+segLen)
	seg = append(seg, 0xff, jpegMarkerAPP1)
	seg = binary.BigEndian.AppendUint16(seg, uint16(segLen))
	seg = append(seg, exifHeader...)
	return append(seg, tiff...), nil
}

func embedJPEG(data, payload []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, jpegMagic) {
		return nil, malformed("SEAL-JPEG-102", "missing JPEG SOI marker", nil)
	}
	seg, err := buildExifAPP1(payload)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data)+len(seg))
	out = append(out, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...), nil
}

// jpegSegment is one marker segment in the header region (before SOS).
type jpegSegment struct {
	marker byte
	start  int // offset of the 0xff marker byte
	end    int // offset one past the segment payload
}

func walkJPEGSegments(data []byte) ([]jpegSegment, error) {
	if !bytes.HasPrefix(data, jpegMagic) {
		return nil, malformed("SEAL-JPEG-102", "missing JPEG SOI marker", nil)
	}
	var segs []jpegSegment
	off := 2
	for off < len(data) {
		if data[off] != 0xff {
			return nil, malformed("SEAL-JPEG-103", "expected JPEG marker", nil)
		}
		start := off
		for off < len(data) && data[off] == 0xff {
			off++
		}
		if off >= len(data) {
			return nil, malformed("SEAL-JPEG-104", "truncated JPEG marker", nil)
		}
		marker := data[off]
		off++
		// Scan-level data follows SOS; stop walking the header region.
		if marker == jpegMarkerSOS {
			return segs, nil
		}
		// Standalone markers carry no length field.
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd9) {
			segs = append(segs, jpegSegment{marker: marker, start: start, end: off})
			continue
		}
		if off+2 > len(data) {
			return nil, malformed("SEAL-JPEG-104", "truncated JPEG marker", nil)
		}
		length := int(binary.BigEndian.Uint16(data[off : off+2]))
		if length < 2 || off+length > len(data) {
			return nil, malformed("SEAL-JPEG-105", "truncated JPEG segment", nil)
		}
		off += length
		segs = append(segs, jpegSegment{marker: marker, start: start, end: off})
	}
	return segs, nil
}

func extractJPEG(data []byte) (*seal.Package, []byte, error) {
	segs, err := walkJPEGSegments(data)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range segs {
		if s.marker != jpegMarkerAPP1 {
			continue
		}
		body := data[s.start:s.end]
		// Strip marker bytes and length to get the APP1 payload.
		i := bytes.Index(body, exifHeader)
		if i < 0 {
			continue
		}
		payload, ok := userCommentPayload(body[i+len(exifHeader):])
		if !ok {
			continue
		}
		pkg, derr := decodePackage(payload)
		if derr != nil {
			// An Exif UserComment that is not a seal package belongs to
			// someone else; keep scanning.
			continue
		}
		rest := make([]byte, 0, len(data)-(s.end-s.start))
		rest = append(rest, data[:s.start]...)
		rest = append(rest, data[s.end:]...)
		return pkg, rest, nil
	}
	return nil, nil, ErrNoSeal
}

// userCommentPayload digs the UserComment value out of a TIFF blob and strips
// the charset prefix.
func userCommentPayload(tiff []byte) ([]byte, bool) {
	if len(tiff) < 8 {
		return nil, false
	}
	var order binary.ByteOrder
	switch {
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	default:
		return nil, false
	}
	ifd0 := int(order.Uint32(tiff[4:8]))
	exifIFD, ok := ifdEntryValueOffset(tiff, order, ifd0, exifTagExifIFD)
	if !ok {
		return nil, false
	}
	value, count, ok := ifdEntryValue(tiff, order, int(exifIFD), exifTagUserComment)
	if !ok || count < len(unicodePrefix) {
		return nil, false
	}
	prefix, rest := value[:8], value[8:]
	if bytes.Equal(prefix, unicodePrefix) {
		s, ok := utf16BEDecode(rest)
		if !ok {
			return nil, false
		}
		return []byte(s), true
	}
	// ASCII or undefined charset: use the raw bytes.
	return rest, true
}

func ifdEntryValueOffset(tiff []byte, order binary.ByteOrder, ifdOff int, tag uint16) (uint32, bool) {
	value, count, ok := ifdEntryValue(tiff, order, ifdOff, tag)
	if !ok || count < 4 {
		return 0, false
	}
	return order.Uint32(value[:4]), true
}

// ifdEntryValue returns the value bytes for tag within the IFD at ifdOff.
// Values of four bytes or fewer are stored inline in the entry.
func ifdEntryValue(tiff []byte, order binary.ByteOrder, ifdOff int, tag uint16) ([]byte, int, bool) {
	if ifdOff < 0 || ifdOff+2 > len(tiff) {
		return nil, 0, false
	}
	n := int(order.Uint16(tiff[ifdOff : ifdOff+2]))
	for i := 0; i < n; i++ {
		e := ifdOff + 2 + 12*i
		if e+12 > len(tiff) {
			return nil, 0, false
		}
		if order.Uint16(tiff[e:e+2]) != tag {
			continue
		}
		typ := order.Uint16(tiff[e+2 : e+4])
		count := int(order.Uint32(tiff[e+4 : e+8]))
		size := count * exifTypeSize(typ)
		if size <= 4 {
			return tiff[e+8 : e+12], size, true
		}
		off := int(order.Uint32(tiff[e+8 : e+12]))
		if off < 0 || off+size > len(tiff) {
			return nil, 0, false
		}
		return tiff[off : off+size], size, true
	}
	return nil, 0, false
}

func exifTypeSize(typ uint16) int {
	switch typ {
	case 3: // SHORT
		return 2
	case exifTypeLong:
		return 4
	case 5, 10: // RATIONAL, SRATIONAL
		return 8
	default: // BYTE, ASCII, UNDEFINED and friends
		return 1
	}
}
