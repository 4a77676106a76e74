package mpegdec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// StreamHeaderSize is the size of the stream file header:
// width, height (int32), aspect ratio (float64), profile (uint32).
const StreamHeaderSize = 20

// MaxPayloadSize bounds a single picture's payload length read from a file.
const MaxPayloadSize = 16 << 20

var (
	ErrSourceUnreadable = errors.New("stream source unreadable")
	ErrTruncatedStream  = errors.New("truncated stream")
	ErrPayloadTooLarge  = errors.New("picture payload too large")
)

// Stream is a pre-parsed sample: the header of the source bitstream and a
// fixed number of pictures in decode order.
type Stream struct {
	Width       int32
	Height      int32
	AspectRatio float64
	Profile     DecoderProfile

	Pictures []*PictureRecord
}

// CodingTypes returns the coding type of every picture, in decode order.
func (s *Stream) CodingTypes() []PictureCodingType {
	types := make([]PictureCodingType, len(s.Pictures))
	for i, p := range s.Pictures {
		types[i] = p.CodingType()
	}
	return types
}

// PayloadBytes returns the summed payload length of all pictures.
func (s *Stream) PayloadBytes() int {
	n := 0
	for _, p := range s.Pictures {
		n += p.Payload.Len()
	}
	return n
}

// Release releases every picture payload. The stream must not be decoded
// afterwards.
func (s *Stream) Release() {
	for _, p := range s.Pictures {
		p.Release()
	}
}

// OpenStream reads a stream file holding count pictures.
func OpenStream(path string, count int) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer f.Close()

	s, err := ReadStream(bufio.NewReader(f), count)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadStream reads a stream header followed by count picture records.
func ReadStream(r io.Reader, count int) (*Stream, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid picture count %d", count)
	}

	var hdr [StreamHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, readErr("header", err)
	}
	s := &Stream{
		Width:       int32(binary.LittleEndian.Uint32(hdr[0:])),
		Height:      int32(binary.LittleEndian.Uint32(hdr[4:])),
		AspectRatio: math.Float64frombits(binary.LittleEndian.Uint64(hdr[8:])),
		Profile:     DecoderProfile(binary.LittleEndian.Uint32(hdr[16:])),
		Pictures:    make([]*PictureRecord, 0, count),
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", s.Width, s.Height)
	}

	var info [PictureInfoSize + 4]byte
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, info[:]); err != nil {
			s.Release()
			return nil, readErr(fmt.Sprintf("picture %d info", i), err)
		}
		pi, err := UnmarshalPictureInfo(info[:PictureInfoSize])
		if err != nil {
			s.Release()
			return nil, err
		}
		pi.ForwardReference = InvalidHandle
		pi.BackwardReference = InvalidHandle

		n := binary.LittleEndian.Uint32(info[PictureInfoSize:])
		if n > MaxPayloadSize {
			s.Release()
			return nil, fmt.Errorf("picture %d: %w: %d bytes", i, ErrPayloadTooLarge, n)
		}
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			s.Release()
			return nil, readErr(fmt.Sprintf("picture %d payload", i), err)
		}
		s.Pictures = append(s.Pictures, &PictureRecord{Info: pi, Payload: NewPayload(data)})
	}
	return s, nil
}

func readErr(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: %w", what, ErrTruncatedStream)
	}
	return fmt.Errorf("%s: %w: %w", what, ErrSourceUnreadable, err)
}

// WriteStream writes s in the format ReadStream reads.
func WriteStream(w io.Writer, s *Stream) error {
	var hdr [StreamHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(s.Width))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(s.Height))
	binary.LittleEndian.PutUint64(hdr[8:], math.Float64bits(s.AspectRatio))
	binary.LittleEndian.PutUint32(hdr[16:], uint32(s.Profile))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	var info [PictureInfoSize + 4]byte
	for i, p := range s.Pictures {
		if p.Payload.Released() {
			return fmt.Errorf("picture %d: payload released", i)
		}
		if err := p.Info.MarshalTo(info[:]); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(info[PictureInfoSize:], uint32(p.Payload.Len()))
		if _, err := w.Write(info[:]); err != nil {
			return err
		}
		if _, err := w.Write(p.Payload.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
