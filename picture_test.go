package mpegdec

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func testPictureInfo() PictureInfo {
	p := PictureInfo{
		ForwardReference:         3,
		BackwardReference:        InvalidHandle,
		PictureStructure:         3,
		PictureCodingType:        PicturePredicted,
		IntraDCPrecision:         2,
		FramePredFrameDCT:        1,
		ConcealmentMotionVectors: 0,
		IntraVLCFormat:           1,
		AlternateScan:            0,
		QScaleType:               1,
		TopFieldFirst:            1,
		FullPelForwardVector:     0,
		FullPelBackwardVector:    0,
		FCode:                    [2][2]uint8{{1, 2}, {15, 15}},
		SliceCount:               36,
	}
	for i := range p.IntraQuantizerMatrix {
		p.IntraQuantizerMatrix[i] = uint8(8 + i)
		p.NonIntraQuantizerMatrix[i] = 16
	}
	return p
}

func TestPictureInfo_MarshalLayout(t *testing.T) {
	p := testPictureInfo()
	b := make([]byte, PictureInfoSize)
	if err := p.MarshalTo(b); err != nil {
		t.Fatalf("MarshalTo: %v", err)
	}

	if got := binary.LittleEndian.Uint32(b[0:]); got != 3 {
		t.Errorf("forward reference = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(b[4:]); got != InvalidHandle {
		t.Errorf("backward reference = %#x, want %#x", got, uint32(InvalidHandle))
	}
	if got := binary.LittleEndian.Uint32(b[8:]); got != 36 {
		t.Errorf("slice count = %d, want 36", got)
	}
	if b[12] != 3 {
		t.Errorf("picture structure byte = %d, want 3", b[12])
	}
	if b[13] != uint8(PicturePredicted) {
		t.Errorf("coding type byte = %d, want %d", b[13], PicturePredicted)
	}
	if !bytes.Equal(b[23:27], []byte{1, 2, 15, 15}) {
		t.Errorf("f_code = %v", b[23:27])
	}
	if b[27] != 8 || b[90] != 8+63 {
		t.Errorf("intra matrix bounds = %d, %d", b[27], b[90])
	}
	if b[91] != 16 || b[154] != 16 {
		t.Errorf("non-intra matrix bounds = %d, %d", b[91], b[154])
	}
	if b[155] != 0 {
		t.Errorf("pad byte = %d, want 0", b[155])
	}

	back, err := UnmarshalPictureInfo(b)
	if err != nil {
		t.Fatalf("UnmarshalPictureInfo: %v", err)
	}
	if back != p {
		t.Errorf("UnmarshalPictureInfo = %+v, want %+v", back, p)
	}
}

// TestUnmarshalPictureInfo_CLayout decodes a record laid out the way
// VdpPictureInfoMPEG1Or2 sits in memory.
func TestUnmarshalPictureInfo_CLayout(t *testing.T) {
	b := make([]byte, PictureInfoSize)
	binary.LittleEndian.PutUint32(b[0:], InvalidHandle)
	binary.LittleEndian.PutUint32(b[4:], InvalidHandle)
	binary.LittleEndian.PutUint32(b[8:], 36)  // slice_count
	b[12] = 3                                 // picture_structure
	b[13] = uint8(PicturePredicted)           // picture_coding_type
	b[23], b[24], b[25], b[26] = 1, 2, 15, 15 // f_code
	b[27] = 8                                 // intra_quantizer_matrix[0]
	b[154] = 16                               // non_intra_quantizer_matrix[63]

	p, err := UnmarshalPictureInfo(b)
	if err != nil {
		t.Fatalf("UnmarshalPictureInfo: %v", err)
	}
	if p.SliceCount != 36 || p.PictureStructure != 3 || p.PictureCodingType != PicturePredicted {
		t.Errorf("slice_count=%d structure=%d coding type=%v", p.SliceCount, p.PictureStructure, p.PictureCodingType)
	}
	if p.FCode != [2][2]uint8{{1, 2}, {15, 15}} {
		t.Errorf("f_code = %v", p.FCode)
	}
	if p.IntraQuantizerMatrix[0] != 8 || p.NonIntraQuantizerMatrix[63] != 16 {
		t.Errorf("matrices = %d, %d", p.IntraQuantizerMatrix[0], p.NonIntraQuantizerMatrix[63])
	}
}

func TestPictureInfo_ShortBuffer(t *testing.T) {
	var p PictureInfo
	if err := p.MarshalTo(make([]byte, PictureInfoSize-1)); err == nil {
		t.Error("MarshalTo accepted a short buffer")
	}
	if _, err := UnmarshalPictureInfo(make([]byte, 10)); err == nil {
		t.Error("UnmarshalPictureInfo accepted a short buffer")
	}
}

func TestPayload_Release(t *testing.T) {
	p := NewPayload([]byte{1, 2, 3})
	if p.Len() != 3 || p.Released() {
		t.Fatalf("new payload: len=%d released=%v", p.Len(), p.Released())
	}

	p.Release()
	if !p.Released() {
		t.Error("Released() = false after Release")
	}
	if p.Bytes() != nil || p.Len() != 0 {
		t.Errorf("released payload still exposes %d bytes", p.Len())
	}

	p.Release()
	if !p.Released() {
		t.Error("second Release changed state")
	}
}

func TestPayload_Empty(t *testing.T) {
	p := NewPayload(nil)
	if p.Released() {
		t.Error("empty payload reported as released")
	}
	p.Release()
	if !p.Released() {
		t.Error("Released() = false after Release")
	}

	var nilPayload *Payload
	if !nilPayload.Released() || nilPayload.Bytes() != nil {
		t.Error("nil payload should behave as released")
	}
	nilPayload.Release()
}

func TestPictureRecord_Bitstream(t *testing.T) {
	rec := &PictureRecord{
		Info:    PictureInfo{PictureCodingType: PictureIntra},
		Payload: NewPayload([]byte{0, 0, 1, 0xb3}),
	}

	bufs := rec.bitstream()
	if len(bufs) != 1 {
		t.Fatalf("bitstream() returned %d buffers, want 1", len(bufs))
	}
	if bufs[0].Version != BitstreamBufferVersion || len(bufs[0].Data) != 4 {
		t.Errorf("bitstream()[0] = %+v", bufs[0])
	}

	rec.Release()
	if !rec.Payload.Released() {
		t.Error("PictureRecord.Release did not release the payload")
	}
}
