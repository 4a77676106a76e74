//go:build !linux || novdpau

package mpegdec

import "errors"

var errVDPAUUnsupported = errors.New("VDPAU support not built on this platform")

// IsVDPAUAvailable reports whether libvdpau and libX11 could be loaded.
func IsVDPAUAvailable() bool { return false }

// VDPAUDevice is unavailable in this build. Every Device method fails.
type VDPAUDevice struct{}

// OpenVDPAU always fails in this build.
func OpenVDPAU(display string) (*VDPAUDevice, error) {
	return nil, errVDPAUUnsupported
}

// DecoderCapabilities always fails in this build.
func (d *VDPAUDevice) DecoderCapabilities(profile DecoderProfile) (bool, uint32, uint32, error) {
	return false, 0, 0, ErrNotSupported
}

func (d *VDPAUDevice) CreateDecoder(profile DecoderProfile, width, height, maxReferences uint32) (DecoderHandle, error) {
	return InvalidHandle, errVDPAUUnsupported
}

func (d *VDPAUDevice) CreateSurface(chroma ChromaType, width, height uint32) (BufferHandle, error) {
	return InvalidHandle, errVDPAUUnsupported
}

func (d *VDPAUDevice) Render(decoder DecoderHandle, target BufferHandle, info *PictureInfo, bitstream []BitstreamBuffer) Status {
	return StatusNoImplementation
}

func (d *VDPAUDevice) DestroySurface(surface BufferHandle) {}

func (d *VDPAUDevice) DestroyDecoder(decoder DecoderHandle) {}

func (d *VDPAUDevice) ErrorString(st Status) string {
	return errVDPAUUnsupported.Error()
}

// Close implements io.Closer.
func (d *VDPAUDevice) Close() error { return nil }
