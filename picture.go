package mpegdec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// PictureInfoSize is the encoded size of PictureInfo in a stream file. It is
// sizeof(VdpPictureInfoMPEG1Or2) including the trailing pad byte.
const PictureInfoSize = 156

var errShortPictureInfo = errors.New("picture info too short")

// PictureInfo carries the picture-level parameters of one MPEG-1/2 picture.
// Field order and widths mirror VdpPictureInfoMPEG1Or2.
type PictureInfo struct {
	// ForwardReference and BackwardReference are filled in by the decoder
	// immediately before Render; values read from a stream are ignored.
	ForwardReference  BufferHandle
	BackwardReference BufferHandle

	SliceCount uint32

	PictureStructure         uint8
	PictureCodingType        PictureCodingType
	IntraDCPrecision         uint8
	FramePredFrameDCT        uint8
	ConcealmentMotionVectors uint8
	IntraVLCFormat           uint8
	AlternateScan            uint8
	QScaleType               uint8
	TopFieldFirst            uint8
	FullPelForwardVector     uint8
	FullPelBackwardVector    uint8
	FCode                    [2][2]uint8

	IntraQuantizerMatrix    [64]uint8
	NonIntraQuantizerMatrix [64]uint8
}

// MarshalTo encodes p into b, which must hold at least PictureInfoSize bytes.
func (p *PictureInfo) MarshalTo(b []byte) error {
	if len(b) < PictureInfoSize {
		return errShortPictureInfo
	}
	binary.LittleEndian.PutUint32(b[0:], uint32(p.ForwardReference))
	binary.LittleEndian.PutUint32(b[4:], uint32(p.BackwardReference))
	binary.LittleEndian.PutUint32(b[8:], p.SliceCount)
	b[12] = p.PictureStructure
	b[13] = uint8(p.PictureCodingType)
	b[14] = p.IntraDCPrecision
	b[15] = p.FramePredFrameDCT
	b[16] = p.ConcealmentMotionVectors
	b[17] = p.IntraVLCFormat
	b[18] = p.AlternateScan
	b[19] = p.QScaleType
	b[20] = p.TopFieldFirst
	b[21] = p.FullPelForwardVector
	b[22] = p.FullPelBackwardVector
	b[23] = p.FCode[0][0]
	b[24] = p.FCode[0][1]
	b[25] = p.FCode[1][0]
	b[26] = p.FCode[1][1]
	copy(b[27:91], p.IntraQuantizerMatrix[:])
	copy(b[91:155], p.NonIntraQuantizerMatrix[:])
	b[155] = 0
	return nil
}

// UnmarshalPictureInfo decodes a PictureInfo from the first PictureInfoSize
// bytes of b.
func UnmarshalPictureInfo(b []byte) (PictureInfo, error) {
	var p PictureInfo
	if len(b) < PictureInfoSize {
		return p, fmt.Errorf("%w: %d bytes", errShortPictureInfo, len(b))
	}
	p.ForwardReference = BufferHandle(binary.LittleEndian.Uint32(b[0:]))
	p.BackwardReference = BufferHandle(binary.LittleEndian.Uint32(b[4:]))
	p.SliceCount = binary.LittleEndian.Uint32(b[8:])
	p.PictureStructure = b[12]
	p.PictureCodingType = PictureCodingType(b[13])
	p.IntraDCPrecision = b[14]
	p.FramePredFrameDCT = b[15]
	p.ConcealmentMotionVectors = b[16]
	p.IntraVLCFormat = b[17]
	p.AlternateScan = b[18]
	p.QScaleType = b[19]
	p.TopFieldFirst = b[20]
	p.FullPelForwardVector = b[21]
	p.FullPelBackwardVector = b[22]
	p.FCode[0][0] = b[23]
	p.FCode[0][1] = b[24]
	p.FCode[1][0] = b[25]
	p.FCode[1][1] = b[26]
	copy(p.IntraQuantizerMatrix[:], b[27:91])
	copy(p.NonIntraQuantizerMatrix[:], b[91:155])
	return p, nil
}

// Payload owns the compressed bitstream of one picture.
type Payload struct {
	data     []byte
	released bool
}

// NewPayload takes ownership of data.
func NewPayload(data []byte) *Payload {
	return &Payload{data: data}
}

// Bytes returns the bitstream, or nil once the payload has been released.
// The slice is only valid until Release.
func (p *Payload) Bytes() []byte {
	if p == nil || p.released {
		return nil
	}
	return p.data
}

// Len returns the bitstream length in bytes.
func (p *Payload) Len() int {
	return len(p.Bytes())
}

// Released reports whether Release has been called.
func (p *Payload) Released() bool {
	return p == nil || p.released
}

// Release drops the bitstream. Calling Release more than once is a no-op.
func (p *Payload) Release() {
	if p == nil || p.released {
		return
	}
	p.data = nil
	p.released = true
}

// PictureRecord is one encoded picture: its picture-info block and payload.
type PictureRecord struct {
	Info    PictureInfo
	Payload *Payload
}

// CodingType returns the picture's coding type.
func (r *PictureRecord) CodingType() PictureCodingType {
	return r.Info.PictureCodingType
}

// bitstream returns the decoder bitstream descriptor for the record.
func (r *PictureRecord) bitstream() []BitstreamBuffer {
	return []BitstreamBuffer{{
		Version: BitstreamBufferVersion,
		Data:    r.Payload.Bytes(),
	}}
}

// Release releases the record's payload.
func (r *PictureRecord) Release() {
	r.Payload.Release()
}
