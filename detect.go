package mpegdec

import (
	"bytes"
)

// Start code values (ISO/IEC 13818-2 table 6-1), following 0x000001.
const (
	startCodePicture  = 0x00
	startCodeSequence = 0xB3
)

var startCodePrefix = []byte{0x00, 0x00, 0x01}

// PictureHeader holds the leading fields of an MPEG-1/2 picture header.
type PictureHeader struct {
	Offset            int               // Position of the picture start code in the payload
	TemporalReference uint16            // Display position within the group of pictures
	CodingType        PictureCodingType // picture_coding_type
	VBVDelay          uint16
}

// FindPictureHeader locates the first picture start code in data and parses
// the header that follows it. Sequence, GOP and user-data headers before it
// are skipped.
//
// Header layout after 0x00000100:
//
//	temporal_reference  10 bits
//	picture_coding_type  3 bits
//	vbv_delay           16 bits
func FindPictureHeader(data []byte) (PictureHeader, bool) {
	for off := 0; ; {
		i := bytes.Index(data[off:], startCodePrefix)
		if i < 0 {
			return PictureHeader{}, false
		}
		pos := off + i
		if pos+3 >= len(data) {
			return PictureHeader{}, false
		}
		if data[pos+3] != startCodePicture {
			off = pos + 3
			continue
		}

		h := data[pos+4:]
		if len(h) < 4 {
			return PictureHeader{}, false
		}
		return PictureHeader{
			Offset:            pos,
			TemporalReference: uint16(h[0])<<2 | uint16(h[1])>>6,
			CodingType:        PictureCodingType((h[1] >> 3) & 0x07),
			VBVDelay:          uint16(h[1]&0x07)<<13 | uint16(h[2])<<5 | uint16(h[3])>>3,
		}, true
	}
}

// AppendPictureHeader appends a picture start code and header to dst.
// The remaining bits of the last byte are zero.
func AppendPictureHeader(dst []byte, h PictureHeader) []byte {
	tr := h.TemporalReference & 0x03FF
	ct := uint8(h.CodingType) & 0x07
	dst = append(dst, startCodePrefix...)
	return append(dst,
		startCodePicture,
		byte(tr>>2),
		byte(tr&0x03)<<6 | ct<<3 | byte(h.VBVDelay>>13),
		byte(h.VBVDelay>>5),
		byte(h.VBVDelay<<3),
	)
}

// HasSequenceHeader reports whether data contains a sequence header start
// code before its first picture.
func HasSequenceHeader(data []byte) bool {
	for off := 0; ; {
		i := bytes.Index(data[off:], startCodePrefix)
		if i < 0 || off+i+3 >= len(data) {
			return false
		}
		switch data[off+i+3] {
		case startCodeSequence:
			return true
		case startCodePicture:
			return false
		}
		off += i + 3
	}
}
