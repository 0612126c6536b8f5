// Package zipx recovers UTF-8 entry names from zip archives written by
// tools that store names in a legacy code page.
package zipx

import (
	"archive/zip"
	"encoding/binary"
	"hash/crc32"
)

// unicodePathTag is the Info-ZIP Unicode Path extra field (APPNOTE 4.6.9).
const unicodePathTag = 0x7075

// DetectZipUTF8Path returns the UTF-8 name of fh and whether the name is
// still not known to be UTF-8. A Unicode Path field whose CRC does not
// match the stored name is ignored.
func DetectZipUTF8Path(fh *zip.FileHeader) (string, bool) {
	if !fh.NonUTF8 {
		return fh.Name, false
	}

	extra := fh.Extra
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra[0:2])
		size := int(binary.LittleEndian.Uint16(extra[2:4]))
		extra = extra[4:]
		if size > len(extra) {
			break
		}
		data := extra[:size]
		extra = extra[size:]

		// version(1) crc32(4) name
		if tag != unicodePathTag || len(data) < 5 {
			continue
		}
		if binary.LittleEndian.Uint32(data[1:5]) == crc32.ChecksumIEEE([]byte(fh.Name)) {
			return string(data[5:]), false
		}
	}
	return fh.Name, true
}

// UnicodePathExtra builds the extra field DetectZipUTF8Path reads.
func UnicodePathExtra(stored, utf8Name string) []byte {
	b := make([]byte, 9, 9+len(utf8Name))
	binary.LittleEndian.PutUint16(b[0:2], unicodePathTag)
	binary.LittleEndian.PutUint16(b[2:4], uint16(5+len(utf8Name)))
	b[4] = 1
	binary.LittleEndian.PutUint32(b[5:9], crc32.ChecksumIEEE([]byte(stored)))
	return append(b, utf8Name...)
}
