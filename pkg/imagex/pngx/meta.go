// Package pngx reads and writes the profile chunks of PNG files (iCCP,
// eXIf and XMP in iTXt) that image/png skips.
package pngx

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"io"

	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
)

const Magic = "\x89PNG\r\n\x1a\n"

const xmpKeyword = "XML:com.adobe.xmp"

type iTXtChunk struct {
	key               string
	languageTag       string
	translatedKeyword string
	text              []byte
}

// ReadMeta walks the chunk list of data and collects the profiles. Pixel
// data is not decoded.
func ReadMeta(data []byte) (imagex.Meta, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, png.FormatError("not a PNG file")
	}
	meta := imagex.Meta{}
	for pos := len(Magic); pos+8 <= len(data); {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		end := pos + 8 + length + 4
		if length < 0 || end > len(data) {
			return meta, png.FormatError("truncated chunk")
		}
		typ := string(data[pos+4 : pos+8])
		body := data[pos+8 : pos+8+length]
		if binary.BigEndian.Uint32(data[end-4:end]) != crc32.ChecksumIEEE(data[pos+4:pos+8+length]) {
			return meta, png.FormatError("invalid checksum")
		}

		switch {
		case typ == "iCCP" && meta[imagex.ICCP] == nil:
			_, icc, err := parseZTXt(bufio.NewReader(bytes.NewReader(body)))
			if err != nil {
				return meta, err
			}
			meta[imagex.ICCP] = icc
		case typ == "eXIf" && meta[imagex.EXIF] == nil:
			meta[imagex.EXIF] = append([]byte(nil), body...)
		case typ == "iTXt":
			chunk, err := parseITXt(bufio.NewReader(bytes.NewReader(body)))
			if err != nil {
				return meta, err
			}
			if chunk.key == xmpKeyword && len(chunk.text) != 0 {
				meta[imagex.XMP] = chunk.text
			}
		case typ == "IEND":
			return meta, nil
		}
		pos = end
	}
	return meta, nil
}

// Decode reads a PNG image together with its profiles.
func Decode(r io.Reader) (image.Image, imagex.Meta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	meta, err := ReadMeta(data)
	if err != nil {
		return nil, nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	return img, meta, nil
}

// InsertMeta writes the PNG stream src to w with the profiles of meta
// placed right after IHDR.
func InsertMeta(w io.Writer, src []byte, meta imagex.Meta) error {
	const ihdrEnd = len(Magic) + 8 + 13 + 4
	if len(src) < ihdrEnd || string(src[len(Magic)+4:len(Magic)+8]) != "IHDR" {
		return png.FormatError("missing IHDR")
	}
	var extra bytes.Buffer
	if icc := meta.Get(imagex.ICCP); len(icc) != 0 {
		var body bytes.Buffer
		body.WriteString("ICC Profile\x00\x00")
		zw := zlib.NewWriter(&body)
		if _, err := zw.Write(icc); err != nil {
			return errors.WithStack(err)
		}
		if err := zw.Close(); err != nil {
			return errors.WithStack(err)
		}
		writeChunk(&extra, "iCCP", body.Bytes())
	}
	if exif := meta.Get(imagex.EXIF); len(exif) != 0 {
		writeChunk(&extra, "eXIf", exif)
	}
	if xmp := meta.Get(imagex.XMP); len(xmp) != 0 {
		body := append([]byte(xmpKeyword+"\x00\x00\x00\x00\x00"), xmp...)
		writeChunk(&extra, "iTXt", body)
	}

	for _, part := range [][]byte{src[:ihdrEnd], extra.Bytes(), src[ihdrEnd:]} {
		if _, err := w.Write(part); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func writeChunk(buf *bytes.Buffer, typ string, body []byte) {
	var head [8]byte
	binary.BigEndian.PutUint32(head[:4], uint32(len(body)))
	copy(head[4:], typ)
	buf.Write(head[:])
	buf.Write(body)
	crc := crc32.NewIEEE()
	crc.Write(head[4:])
	crc.Write(body)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])
}

func parseZTXt(body *bufio.Reader) (string, []byte, error) {
	key, err := readCStr(body, 79)
	if err != nil {
		return "", nil, err
	}

	if b, err := body.ReadByte(); err != nil {
		return "", nil, err
	} else if b != 0 {
		//The only presently legitimate value for Compression method is 0 (deflate/inflate compression)
		return "", nil, png.FormatError("unknown compression method")
	}

	zr, err := zlib.NewReader(body)
	if err != nil {
		return "", nil, err
	}
	defer zr.Close()

	value := bytes.NewBuffer(make([]byte, 0, bytes.MinRead))
	if _, err := value.ReadFrom(zr); err != nil {
		return "", nil, err
	}

	return key, value.Bytes(), nil
}

func parseITXt(body *bufio.Reader) (*iTXtChunk, error) {
	var err error
	var chunk = new(iTXtChunk)
	chunk.key, err = readCStr(body, 79)
	if err != nil {
		return nil, err
	}

	compressed, err := body.ReadByte()
	if err != nil {
		return nil, err
	}
	if b, err := body.ReadByte(); err != nil {
		return nil, err
	} else if compressed == 1 && b != 0 {
		return nil, png.FormatError("unknown compression method")
	}

	if chunk.languageTag, err = readCStr(body, -1); err != nil {
		return nil, err
	}
	if chunk.translatedKeyword, err = readCStr(body, -1); err != nil {
		return nil, err
	}

	var r io.Reader = body
	if compressed == 1 {
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	value := bytes.NewBuffer(make([]byte, 0, bytes.MinRead))
	if _, err = value.ReadFrom(r); err != nil {
		return nil, err
	}
	chunk.text = value.Bytes()

	return chunk, nil
}

// readCStr reads a NUL terminated string of at most lim bytes; lim <= 0
// means no limit.
func readCStr(r *bufio.Reader, lim int) (string, error) {
	var str = make([]byte, 0, 32)
	for n := 0; lim <= 0 || n < lim; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		str = append(str, b)
	}
	return string(str), nil
}
