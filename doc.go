// Package mpegdec feeds pre-parsed MPEG-1/2 pictures to a hardware picture
// decoder (VDPAU) and manages the surfaces it decodes into.
//
// Key pieces include:
//   - Stream/PictureRecord: a sample window of pictures read from a stream file
//   - SurfacePool: a fixed set of decode target surfaces
//   - ReferenceState: the two reference surfaces that P and B pictures need
//   - Decoder: streaming (one picture per call) and batch (whole window, then
//     display order) decoding
//   - Reorder/DisplayOrder: decode order to display order
//   - FindPictureHeader: MPEG picture start code and header fields in a payload
//   - Device: the decode capability, with VDPAUDevice and NullDevice providers
//
// # Architecture
//
//	Streaming: Stream -> Decoder.DecodeNext -> Device.Render -> surface (decode order)
//	Batch:     Stream -> Decoder.DecodeWindowAndReorder -> Device.Render x N -> Reorder -> surfaces (display order)
//
// A surface is only reused once it is neither of the two live references,
// so a pool of four surfaces always has a free target.
//
// # Native Libraries
//
// VDPAUDevice loads libvdpau.so.1 and libX11.so.6 at runtime with purego
// (no cgo needed). Set MPEGDEC_VDPAU_LIB_PATH or MPEGDEC_X11_LIB_PATH to
// override the library location.
//
// # Build Tags
//
// Optional tags disable features:
//   - novdpau: build without the VDPAU binding (OpenVDPAU always fails)
package mpegdec
