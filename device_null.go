package mpegdec

import (
	"fmt"
	"sync"
)

// RenderCall records one NullDevice.Render invocation.
type RenderCall struct {
	Decoder         DecoderHandle
	Target          BufferHandle
	CodingType      PictureCodingType
	Forward         BufferHandle
	Backward        BufferHandle
	BitstreamBytes  int
	BitstreamChunks int
	Status          Status
}

// NullDevice is a Device that decodes nothing. It hands out sequential
// handles, checks that every Render names live surfaces, and records every
// call. Failures can be injected for testing.
type NullDevice struct {
	mu sync.Mutex

	// RenderStatus, if set, chooses the status of each Render call after the
	// handle checks pass. n is the 0-based Render call number.
	RenderStatus func(n int, call RenderCall) Status

	// CreateDecoderStatus, if not StatusOK, makes CreateDecoder fail.
	CreateDecoderStatus Status

	// FailSurfaceAt makes the n-th CreateSurface call (1-based) fail.
	// Zero disables the failure.
	FailSurfaceAt int

	nextHandle uint32
	surfaces   map[BufferHandle]bool
	decoders   map[DecoderHandle]bool

	surfacesCreated   int
	surfacesDestroyed int
	decodersCreated   int
	decodersDestroyed int
	renders           []RenderCall
}

// NewNullDevice returns an empty NullDevice.
func NewNullDevice() *NullDevice {
	return &NullDevice{
		surfaces: make(map[BufferHandle]bool),
		decoders: make(map[DecoderHandle]bool),
	}
}

func (n *NullDevice) handle() uint32 {
	h := n.nextHandle
	n.nextHandle++
	return h
}

// CreateDecoder implements Device.
func (n *NullDevice) CreateDecoder(profile DecoderProfile, width, height, maxReferences uint32) (DecoderHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.CreateDecoderStatus != StatusOK {
		return InvalidHandle, statusError(n, "create decoder", n.CreateDecoderStatus)
	}
	if width == 0 || height == 0 {
		return InvalidHandle, statusError(n, "create decoder", StatusInvalidSize)
	}
	h := DecoderHandle(n.handle())
	n.decoders[h] = true
	n.decodersCreated++
	return h, nil
}

// CreateSurface implements Device.
func (n *NullDevice) CreateSurface(chroma ChromaType, width, height uint32) (BufferHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.FailSurfaceAt > 0 && n.surfacesCreated+1 == n.FailSurfaceAt {
		n.FailSurfaceAt = 0
		return InvalidHandle, statusError(n, "create surface", StatusResources)
	}
	h := BufferHandle(n.handle())
	n.surfaces[h] = true
	n.surfacesCreated++
	return h, nil
}

// Render implements Device.
func (n *NullDevice) Render(decoder DecoderHandle, target BufferHandle, info *PictureInfo, bitstream []BitstreamBuffer) Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	call := RenderCall{
		Decoder:         decoder,
		Target:          target,
		CodingType:      info.PictureCodingType,
		Forward:         info.ForwardReference,
		Backward:        info.BackwardReference,
		BitstreamChunks: len(bitstream),
	}
	for _, b := range bitstream {
		call.BitstreamBytes += len(b.Data)
	}

	call.Status = n.check(call)
	if call.Status == StatusOK && n.RenderStatus != nil {
		call.Status = n.RenderStatus(len(n.renders), call)
	}
	n.renders = append(n.renders, call)
	return call.Status
}

func (n *NullDevice) check(call RenderCall) Status {
	if !n.decoders[call.Decoder] || !n.surfaces[call.Target] {
		return StatusInvalidHandle
	}
	for _, ref := range []BufferHandle{call.Forward, call.Backward} {
		if !ref.Valid() {
			continue
		}
		if !n.surfaces[ref] || ref == call.Target {
			return StatusInvalidHandle
		}
	}
	return StatusOK
}

// DestroySurface implements Device.
func (n *NullDevice) DestroySurface(surface BufferHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.surfaces[surface] {
		delete(n.surfaces, surface)
		n.surfacesDestroyed++
	}
}

// DestroyDecoder implements Device.
func (n *NullDevice) DestroyDecoder(decoder DecoderHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.decoders[decoder] {
		delete(n.decoders, decoder)
		n.decodersDestroyed++
	}
}

// ErrorString implements Device.
func (n *NullDevice) ErrorString(st Status) string {
	switch st {
	case StatusOK:
		return "no error"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusInvalidSize:
		return "invalid size"
	case StatusResources:
		return "resource allocation failure"
	case StatusInvalidDecoderProfile:
		return "invalid decoder profile"
	case StatusGenericError:
		return "generic error"
	default:
		return fmt.Sprintf("status %d", st)
	}
}

// Renders returns a copy of the recorded Render calls.
func (n *NullDevice) Renders() []RenderCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]RenderCall(nil), n.renders...)
}

// LiveSurfaces returns how many surfaces exist and were not destroyed.
func (n *NullDevice) LiveSurfaces() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.surfaces)
}

// LiveDecoders returns how many decoders exist and were not destroyed.
func (n *NullDevice) LiveDecoders() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.decoders)
}

// Counts returns how many surfaces and decoders were created and destroyed.
func (n *NullDevice) Counts() (surfacesCreated, surfacesDestroyed, decodersCreated, decodersDestroyed int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.surfacesCreated, n.surfacesDestroyed, n.decodersCreated, n.decodersDestroyed
}
