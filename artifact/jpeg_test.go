package artifact

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalJPEG assembles a tiny but structurally complete JPEG: SOI, an APP0
// JFIF segment, SOS, a few bytes of entropy-coded data, EOI.
func minimalJPEG() []byte {
	out := []byte{0xff, 0xd8} // SOI

	app0 := []byte("JFIF\x00\x01\x02\x00\x00\x01\x00\x01\x00\x00")
	out = append(out, 0xff, 0xe0)
	out = binary.BigEndian.AppendUint16(out, uint16(2+len(app0)))
	out = append(out, app0...)

	out = append(out, 0xff, jpegMarkerSOS, 0x00, 0x02) // SOS, minimal header
	out = append(out, 0x12, 0x34, 0x56)                // entropy-coded data
	return append(out, 0xff, 0xd9)                     // EOI
}

func TestJPEG_EmbedInsertsAPP1AfterSOI(t *testing.T) {
	jpg := minimalJPEG()
	embedded, err := Embed(jpg, testPackage(), FormatJPEG)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(embedded, jpegMagic))
	require.Equal(t, byte(0xff), embedded[2])
	require.Equal(t, byte(jpegMarkerAPP1), embedded[3])
	// Everything after the inserted segment is the original file minus SOI.
	require.True(t, bytes.HasSuffix(embedded, jpg[2:]))
}

func TestJPEG_ExtractRestoresOriginalBytes(t *testing.T) {
	jpg := minimalJPEG()
	embedded, err := Embed(jpg, testPackage(), FormatJPEG)
	require.NoError(t, err)

	pkg, rest, err := Extract(embedded, FormatJPEG)
	require.NoError(t, err)
	require.Equal(t, jpg, rest)
	require.Equal(t, testPackage().Seal, pkg.Seal)
	require.Equal(t, testPackage().Signature, pkg.Signature)
}

func TestJPEG_SkipsForeignUserComment(t *testing.T) {
	// A camera's own EXIF UserComment must neither satisfy nor break extraction.
	foreign, err := buildExifAPP1([]byte("shot at f/2.8"))
	require.NoError(t, err)

	jpg := minimalJPEG()
	withForeign := append(append(append([]byte{}, jpg[:2]...), foreign...), jpg[2:]...)

	_, _, err = Extract(withForeign, FormatJPEG)
	require.ErrorIs(t, err, ErrNoSeal)

	embedded, err := Embed(withForeign, testPackage(), FormatJPEG)
	require.NoError(t, err)
	pkg, rest, err := Extract(embedded, FormatJPEG)
	require.NoError(t, err)
	require.Equal(t, withForeign, rest)
	require.Equal(t, testPackage().Seal, pkg.Seal)
}

func TestJPEG_UserCommentByteOrders(t *testing.T) {
	// Our writer emits big-endian TIFF; the reader must also accept it
	// round-trip through the generic IFD walker.
	seg, err := buildExifAPP1([]byte(`{"probe":true}`))
	require.NoError(t, err)
	i := bytes.Index(seg, exifHeader)
	require.GreaterOrEqual(t, i, 0)
	payload, ok := userCommentPayload(seg[i+len(exifHeader):])
	require.True(t, ok)
	require.Equal(t, []byte(`{"probe":true}`), payload)
}

func TestJPEG_TruncatedSegment(t *testing.T) {
	jpg := minimalJPEG()
	embedded, err := Embed(jpg, testPackage(), FormatJPEG)
	require.NoError(t, err)
	_, _, err = Extract(embedded[:6], FormatJPEG)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoSeal)
}

func TestJPEG_EmbedRejectsNonJPEG(t *testing.T) {
	_, err := Embed([]byte("not a jpeg"), testPackage(), FormatJPEG)
	require.Error(t, err)
}
