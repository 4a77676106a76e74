//go:build linux && !novdpau

// Package mpegdec drives VDPAU hardware decoders via libvdpau using purego.

package mpegdec

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	vdpauOnce    sync.Once
	vdpauHandle  uintptr
	x11Handle    uintptr
	vdpauInitErr error
	vdpauLoaded  bool
)

// libvdpau / libX11 entry points
var (
	xOpenDisplay       func(name uintptr) uintptr
	xDefaultScreen     func(display uintptr) int32
	xCloseDisplay      func(display uintptr) int32
	vdpDeviceCreateX11 func(display uintptr, screen int32, device, getProcAddress uintptr) uint32
)

var (
	errVDPAUClosed       = errors.New("VDPAU device closed")
	errVDPAUFuncNotFound = errors.New("VDPAU function not provided by driver")
)

// VdpFuncId values from vdpau.h
const (
	vdpFuncGetErrorString      = 0
	vdpFuncGetProcAddress      = 1
	vdpFuncDeviceDestroy       = 5
	vdpFuncVideoSurfaceCreate  = 9
	vdpFuncVideoSurfaceDestroy = 10
	vdpFuncDecoderQueryCaps    = 35
	vdpFuncDecoderCreate       = 36
	vdpFuncDecoderDestroy      = 37
	vdpFuncDecoderRender       = 39
)

const (
	vdpauLibEnv = "MPEGDEC_VDPAU_LIB_PATH"
	x11LibEnv   = "MPEGDEC_X11_LIB_PATH"
	vdpauSoname = "libvdpau.so.1"
	x11Soname   = "libX11.so.6"
)

// vdpBitstreamBuffer mirrors VdpBitstreamBuffer.
type vdpBitstreamBuffer struct {
	structVersion  uint32
	bitstream      uintptr
	bitstreamBytes uint32
}

// vdpauOut holds output parameters of VDPAU calls.
// It is heap-allocated so the pointers handed to C stay valid.
type vdpauOut struct {
	device   uint32
	handle   uint32
	procAddr uintptr
	fn       uintptr
	caps     [5]uint32 // is_supported, max_level, max_macroblocks, max_width, max_height
}

func loadVDPAU() error {
	vdpauOnce.Do(func() {
		vdpauInitErr = loadVDPAULibs()
		if vdpauInitErr == nil {
			vdpauLoaded = true
		}
	})
	return vdpauInitErr
}

func loadVDPAULibs() error {
	x11, _, err := dlopenFirst(libCandidates(x11LibEnv, x11Soname))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", x11Soname, err)
	}
	vdp, _, err := dlopenFirst(libCandidates(vdpauLibEnv, vdpauSoname))
	if err != nil {
		purego.Dlclose(x11)
		return fmt.Errorf("failed to load %s: %w", vdpauSoname, err)
	}
	x11Handle = x11
	vdpauHandle = vdp

	purego.RegisterLibFunc(&xOpenDisplay, x11Handle, "XOpenDisplay")
	purego.RegisterLibFunc(&xDefaultScreen, x11Handle, "XDefaultScreen")
	purego.RegisterLibFunc(&xCloseDisplay, x11Handle, "XCloseDisplay")
	purego.RegisterLibFunc(&vdpDeviceCreateX11, vdpauHandle, "vdp_device_create_x11")
	return nil
}

// IsVDPAUAvailable reports whether libvdpau and libX11 could be loaded.
// It does not open a display.
func IsVDPAUAvailable() bool {
	return loadVDPAU() == nil && vdpauLoaded
}

// VDPAUDevice is a Device backed by a VDPAU driver on an X11 display.
type VDPAUDevice struct {
	mu sync.Mutex

	display uintptr
	device  uint32
	out     *vdpauOut
	info    *[PictureInfoSize]byte
	bufs    *[1]vdpBitstreamBuffer

	getProcAddress      func(device, id uint32, out uintptr) uint32
	getErrorString      func(status uint32) uintptr
	deviceDestroy       func(device uint32) uint32
	videoSurfaceCreate  func(device, chroma, width, height uint32, out uintptr) uint32
	videoSurfaceDestroy func(surface uint32) uint32
	decoderQueryCaps    func(device, profile uint32, supported, maxLevel, maxMacroblocks, maxWidth, maxHeight uintptr) uint32
	decoderCreate       func(device, profile, width, height, maxReferences uint32, out uintptr) uint32
	decoderDestroy      func(decoder uint32) uint32
	decoderRender       func(decoder, target uint32, info uintptr, count uint32, buffers uintptr) uint32
}

// OpenVDPAU opens the X11 display (empty = $DISPLAY) and creates a VDPAU
// device on its default screen.
func OpenVDPAU(display string) (*VDPAUDevice, error) {
	if err := loadVDPAU(); err != nil {
		return nil, fmt.Errorf("VDPAU not available: %w", err)
	}

	var name uintptr
	var cname []byte
	if display != "" {
		cname = append([]byte(display), 0)
		name = uintptr(unsafe.Pointer(&cname[0]))
	}
	dpy := xOpenDisplay(name)
	runtime.KeepAlive(cname)
	if dpy == 0 {
		return nil, fmt.Errorf("cannot open X display %q", display)
	}

	d := &VDPAUDevice{
		display: dpy,
		out:     &vdpauOut{},
		info:    &[PictureInfoSize]byte{},
		bufs:    &[1]vdpBitstreamBuffer{},
	}

	st := Status(vdpDeviceCreateX11(dpy, xDefaultScreen(dpy),
		uintptr(unsafe.Pointer(&d.out.device)),
		uintptr(unsafe.Pointer(&d.out.procAddr)),
	))
	runtime.KeepAlive(d.out)
	if st != StatusOK {
		xCloseDisplay(dpy)
		return nil, &StatusError{Op: "vdp_device_create_x11", Status: st}
	}
	d.device = d.out.device
	purego.RegisterFunc(&d.getProcAddress, d.out.procAddr)

	if err := d.loadFuncs(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *VDPAUDevice) proc(id uint32) (uintptr, error) {
	d.out.fn = 0
	st := Status(d.getProcAddress(d.device, id, uintptr(unsafe.Pointer(&d.out.fn))))
	runtime.KeepAlive(d.out)
	if st != StatusOK || d.out.fn == 0 {
		return 0, fmt.Errorf("%w: id %d (status %d)", errVDPAUFuncNotFound, id, st)
	}
	return d.out.fn, nil
}

func (d *VDPAUDevice) loadFuncs() error {
	funcs := []struct {
		id  uint32
		ptr any
	}{
		{vdpFuncGetErrorString, &d.getErrorString},
		{vdpFuncDeviceDestroy, &d.deviceDestroy},
		{vdpFuncVideoSurfaceCreate, &d.videoSurfaceCreate},
		{vdpFuncVideoSurfaceDestroy, &d.videoSurfaceDestroy},
		{vdpFuncDecoderCreate, &d.decoderCreate},
		{vdpFuncDecoderDestroy, &d.decoderDestroy},
		{vdpFuncDecoderRender, &d.decoderRender},
	}
	for _, f := range funcs {
		fn, err := d.proc(f.id)
		if err != nil {
			return err
		}
		purego.RegisterFunc(f.ptr, fn)
	}

	// Optional: older drivers may not expose capability queries.
	if fn, err := d.proc(vdpFuncDecoderQueryCaps); err == nil {
		purego.RegisterFunc(&d.decoderQueryCaps, fn)
	}
	return nil
}

// DecoderCapabilities reports whether profile is supported and the largest
// picture size the driver accepts for it.
func (d *VDPAUDevice) DecoderCapabilities(profile DecoderProfile) (supported bool, maxWidth, maxHeight uint32, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.decoderQueryCaps == nil {
		return false, 0, 0, ErrNotSupported
	}
	c := &d.out.caps
	st := Status(d.decoderQueryCaps(d.device, uint32(profile),
		uintptr(unsafe.Pointer(&c[0])),
		uintptr(unsafe.Pointer(&c[1])),
		uintptr(unsafe.Pointer(&c[2])),
		uintptr(unsafe.Pointer(&c[3])),
		uintptr(unsafe.Pointer(&c[4])),
	))
	runtime.KeepAlive(d.out)
	if st != StatusOK {
		return false, 0, 0, d.statusErr("query decoder capabilities", st)
	}
	return c[0] != 0, c[3], c[4], nil
}

func (d *VDPAUDevice) statusErr(op string, st Status) error {
	return &StatusError{Op: op, Status: st, Message: d.errorString(st)}
}

func (d *VDPAUDevice) errorString(st Status) string {
	if d.getErrorString == nil {
		return ""
	}
	return cString(d.getErrorString(uint32(st)), maxErrorStringLen)
}

// CreateDecoder implements Device.
func (d *VDPAUDevice) CreateDecoder(profile DecoderProfile, width, height, maxReferences uint32) (DecoderHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == InvalidHandle {
		return InvalidHandle, errVDPAUClosed
	}
	d.out.handle = InvalidHandle
	st := Status(d.decoderCreate(d.device, uint32(profile), width, height, maxReferences,
		uintptr(unsafe.Pointer(&d.out.handle))))
	runtime.KeepAlive(d.out)
	if st != StatusOK {
		return InvalidHandle, d.statusErr("create decoder", st)
	}
	return DecoderHandle(d.out.handle), nil
}

// CreateSurface implements Device.
func (d *VDPAUDevice) CreateSurface(chroma ChromaType, width, height uint32) (BufferHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == InvalidHandle {
		return InvalidHandle, errVDPAUClosed
	}
	d.out.handle = InvalidHandle
	st := Status(d.videoSurfaceCreate(d.device, uint32(chroma), width, height,
		uintptr(unsafe.Pointer(&d.out.handle))))
	runtime.KeepAlive(d.out)
	if st != StatusOK {
		return InvalidHandle, d.statusErr("create surface", st)
	}
	return BufferHandle(d.out.handle), nil
}

// Render implements Device.
func (d *VDPAUDevice) Render(decoder DecoderHandle, target BufferHandle, info *PictureInfo, bitstream []BitstreamBuffer) Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(bitstream) != 1 {
		return StatusInvalidValue
	}
	if err := info.MarshalTo(d.info[:]); err != nil {
		return StatusInvalidPointer
	}

	data := bitstream[0].Data
	b := &d.bufs[0]
	b.structVersion = bitstream[0].Version
	b.bitstream = 0
	b.bitstreamBytes = uint32(len(data))
	if len(data) > 0 {
		b.bitstream = uintptr(unsafe.Pointer(&data[0]))
	}

	st := Status(d.decoderRender(uint32(decoder), uint32(target),
		uintptr(unsafe.Pointer(&d.info[0])), 1,
		uintptr(unsafe.Pointer(&d.bufs[0]))))

	// Keep the bitstream and descriptors alive across the C call
	runtime.KeepAlive(data)
	runtime.KeepAlive(d.info)
	runtime.KeepAlive(d.bufs)
	return st
}

// DestroySurface implements Device.
func (d *VDPAUDevice) DestroySurface(surface BufferHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.videoSurfaceDestroy != nil && surface.Valid() {
		d.videoSurfaceDestroy(uint32(surface))
	}
}

// DestroyDecoder implements Device.
func (d *VDPAUDevice) DestroyDecoder(decoder DecoderHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.decoderDestroy != nil && decoder.Valid() {
		d.decoderDestroy(uint32(decoder))
	}
}

// ErrorString implements Device.
func (d *VDPAUDevice) ErrorString(st Status) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errorString(st)
}

// Close destroys the VDPAU device and closes the display. Surfaces and
// decoders created on the device must be destroyed first.
func (d *VDPAUDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.deviceDestroy != nil && d.device != InvalidHandle {
		d.deviceDestroy(d.device)
	}
	d.device = InvalidHandle
	if d.display != 0 {
		xCloseDisplay(d.display)
		d.display = 0
	}
	return nil
}
