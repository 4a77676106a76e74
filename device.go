package mpegdec

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned by optional device operations the driver lacks.
var ErrNotSupported = errors.New("operation not supported")

// BufferHandle identifies one reconstructed-picture surface owned by a Device.
type BufferHandle uint32

// DecoderHandle identifies one decoder context owned by a Device.
type DecoderHandle uint32

// InvalidHandle is the "no surface" / "no decoder" sentinel. It has the same
// value as VDP_INVALID_HANDLE so picture infos can be passed through as-is.
const InvalidHandle = 0xffffffff

// Valid reports whether h names a surface.
func (h BufferHandle) Valid() bool { return h != InvalidHandle }

func (h BufferHandle) String() string {
	if !h.Valid() {
		return "none"
	}
	return fmt.Sprintf("surface(%d)", uint32(h))
}

// Valid reports whether h names a decoder context.
func (h DecoderHandle) Valid() bool { return h != InvalidHandle }

// Status is the result code of a device call. Values match VdpStatus.
type Status uint32

const (
	StatusOK                     Status = 0
	StatusNoImplementation       Status = 1
	StatusDisplayPreempted       Status = 2
	StatusInvalidHandle          Status = 3
	StatusInvalidPointer         Status = 4
	StatusInvalidChromaType      Status = 5
	StatusInvalidYCbCrFormat     Status = 6
	StatusInvalidRGBAFormat      Status = 7
	StatusInvalidIndexedFormat   Status = 8
	StatusInvalidColorStandard   Status = 9
	StatusInvalidColorTableFmt   Status = 10
	StatusInvalidBlendFactor     Status = 11
	StatusInvalidBlendEquation   Status = 12
	StatusInvalidFlag            Status = 13
	StatusInvalidDecoderProfile  Status = 14
	StatusInvalidVideoMixerFeat  Status = 15
	StatusInvalidVideoMixerParam Status = 16
	StatusInvalidVideoMixerAttr  Status = 17
	StatusInvalidVideoMixerPict  Status = 18
	StatusInvalidFuncID          Status = 19
	StatusInvalidSize            Status = 20
	StatusInvalidValue           Status = 21
	StatusInvalidStructVersion   Status = 22
	StatusResources              Status = 23
	StatusHandleDeviceMismatch   Status = 24
	StatusGenericError           Status = 25
)

// BitstreamBufferVersion is the struct_version of VdpBitstreamBuffer.
const BitstreamBufferVersion = 0

// BitstreamBuffer describes one chunk of compressed picture data handed to
// the decoder. Data is borrowed from the picture's Payload for the duration
// of the Render call.
type BitstreamBuffer struct {
	Version uint32
	Data    []byte
}

// Device is the hardware decode capability. Implementations are not required
// to be safe for concurrent use; a Decoder never calls one concurrently.
type Device interface {
	// CreateDecoder creates a decoder context able to decode pictures of the
	// given profile and size holding up to maxReferences reference surfaces.
	CreateDecoder(profile DecoderProfile, width, height, maxReferences uint32) (DecoderHandle, error)

	// CreateSurface creates one reconstructed-picture surface.
	CreateSurface(chroma ChromaType, width, height uint32) (BufferHandle, error)

	// Render decodes one picture into target. The forward and backward
	// references in info name surfaces that were previously rendered.
	Render(decoder DecoderHandle, target BufferHandle, info *PictureInfo, bitstream []BitstreamBuffer) Status

	DestroySurface(surface BufferHandle)
	DestroyDecoder(decoder DecoderHandle)

	// ErrorString returns a human-readable description of st.
	ErrorString(st Status) string
}

// StatusError is returned when a device call reports a non-OK status.
type StatusError struct {
	Op      string // Device operation, e.g. "create decoder"
	Status  Status
	Message string // Device description of Status, may be empty
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

// statusError builds a *StatusError for st, asking dev for the message.
func statusError(dev Device, op string, st Status) error {
	msg := ""
	if dev != nil {
		msg = dev.ErrorString(st)
	}
	return &StatusError{Op: op, Status: st, Message: msg}
}

// IsStatus reports whether err carries the device status st.
func IsStatus(err error, st Status) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == st
}
