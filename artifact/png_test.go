package artifact

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalPNG assembles a valid 1x1 grayscale PNG: signature, IHDR, IDAT, IEND.
func minimalPNG(t *testing.T) []byte {
	t.Helper()
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], 1) // width
	binary.BigEndian.PutUint32(ihdr[4:], 1) // height
	ihdr[8] = 8                             // bit depth
	// color type, compression, filter, interlace all zero

	idat := []byte{0x78, 0x9c, 0x62, 0x60, 0x00, 0x04, 0x00, 0x00, 0xff, 0xff, 0x00, 0x06, 0x00, 0x03}

	out := append([]byte{}, pngMagic...)
	out = append(out, makePNGChunk("IHDR", ihdr)...)
	out = append(out, makePNGChunk("IDAT", idat)...)
	out = append(out, makePNGChunk(pngIENDType, nil)...)
	return out
}

func TestPNG_EmbedInsertsBeforeIEND(t *testing.T) {
	png := minimalPNG(t)
	embedded, err := Embed(png, testPackage(), FormatPNG)
	require.NoError(t, err)

	chunks, err := walkPNGChunks(embedded)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	require.Equal(t, "IHDR", chunks[0].typ)
	require.Equal(t, "IDAT", chunks[1].typ)
	require.Equal(t, pngITXtType, chunks[2].typ)
	require.Equal(t, pngIENDType, chunks[3].typ)
}

func TestPNG_PixelDataUntouched(t *testing.T) {
	png := minimalPNG(t)
	embedded, err := Embed(png, testPackage(), FormatPNG)
	require.NoError(t, err)

	before, err := walkPNGChunks(png)
	require.NoError(t, err)
	after, err := walkPNGChunks(embedded)
	require.NoError(t, err)
	for _, want := range before {
		found := false
		for _, got := range after {
			if got.typ == want.typ && bytes.Equal(got.raw, want.raw) {
				found = true
				break
			}
		}
		require.True(t, found, "chunk %s changed by embedding", want.typ)
	}
}

func TestPNG_ExtractRestoresOriginalBytes(t *testing.T) {
	png := minimalPNG(t)
	embedded, err := Embed(png, testPackage(), FormatPNG)
	require.NoError(t, err)

	pkg, rest, err := Extract(embedded, FormatPNG)
	require.NoError(t, err)
	require.Equal(t, png, rest)
	require.Equal(t, testPackage().Seal, pkg.Seal)
}

func TestPNG_IgnoresForeignITXt(t *testing.T) {
	// An iTXt chunk with a different keyword is someone else's metadata.
	body := append([]byte("Comment"), 0, 0, 0, 0, 0)
	body = append(body, []byte("shot on a phone")...)
	foreign := makePNGChunk(pngITXtType, body)

	png := minimalPNG(t)
	iendStart := len(png) - 12 // IEND is always 12 bytes: len + type + crc
	withForeign := append(append(append([]byte{}, png[:iendStart]...), foreign...), png[iendStart:]...)

	_, _, err := Extract(withForeign, FormatPNG)
	require.ErrorIs(t, err, ErrNoSeal)

	// Embedding alongside it still round-trips and leaves it in place.
	embedded, err := Embed(withForeign, testPackage(), FormatPNG)
	require.NoError(t, err)
	_, rest, err := Extract(embedded, FormatPNG)
	require.NoError(t, err)
	require.Equal(t, withForeign, rest)
}

func TestPNG_CorruptSealChunkCRC(t *testing.T) {
	embedded, err := Embed(minimalPNG(t), testPackage(), FormatPNG)
	require.NoError(t, err)

	chunks, err := walkPNGChunks(embedded)
	require.NoError(t, err)
	var sealChunk []byte
	for _, c := range chunks {
		if c.typ == pngITXtType {
			sealChunk = c.raw
		}
	}
	require.NotNil(t, sealChunk)
	// Flip a payload byte without fixing the CRC.
	idx := bytes.Index(embedded, sealChunk)
	corrupted := append([]byte{}, embedded...)
	corrupted[idx+8+len(SealKey)+5] ^= 0x01

	_, _, err = Extract(corrupted, FormatPNG)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoSeal)
}

func TestPNG_MissingSignature(t *testing.T) {
	notPNG := []byte("definitely not a png")
	_, err := Embed(notPNG, testPackage(), FormatPNG)
	require.Error(t, err)
}
