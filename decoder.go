package mpegdec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// DefaultPicturesPerWindow is the number of pictures in one sample window.
const DefaultPicturesPerWindow = MaxSurfaces

// DefaultMaxReferences is the reference depth the decoder context is created
// with: one past and one future picture.
const DefaultMaxReferences = 2

var (
	ErrNotInitialized     = errors.New("decoder not initialized")
	ErrAlreadyInitialized = errors.New("decoder already initialized")
	ErrDecoderReleased    = errors.New("decoder context released")
	ErrClosed             = errors.New("decoder closed")
	ErrWindowTooLarge     = errors.New("window larger than surface pool")
	ErrUnsupportedProfile = errors.New("unsupported decoder profile")
	ErrInvalidStream      = errors.New("invalid stream")
)

// Config configures a Decoder.
type Config struct {
	PicturesPerWindow int          // Pictures per sample window (and per stream)
	MaxReferences     uint32       // Reference depth passed to CreateDecoder
	Chroma            ChromaType   // Surface chroma type
	Logger            *slog.Logger // nil = slog.Default()
}

// DefaultConfig returns a four-picture window with two references and 4:2:0 surfaces.
func DefaultConfig() Config {
	return Config{
		PicturesPerWindow: DefaultPicturesPerWindow,
		MaxReferences:     DefaultMaxReferences,
		Chroma:            Chroma420,
	}
}

// Option modifies a Config.
type Option func(*Config)

// WithPicturesPerWindow sets the window size.
func WithPicturesPerWindow(n int) Option {
	return func(c *Config) { c.PicturesPerWindow = n }
}

// WithMaxReferences sets the decoder context's reference depth.
func WithMaxReferences(n uint32) Option {
	return func(c *Config) { c.MaxReferences = n }
}

// WithChroma sets the surface chroma type.
func WithChroma(ct ChromaType) Option {
	return func(c *Config) { c.Chroma = ct }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Source loads the pictures of one session.
type Source func(count int) (*Stream, error)

// FromFile reads the stream file at path.
func FromFile(path string) Source {
	return func(count int) (*Stream, error) {
		return OpenStream(path, count)
	}
}

// FromReader reads a stream from r.
func FromReader(r io.Reader) Source {
	return func(count int) (*Stream, error) {
		return ReadStream(r, count)
	}
}

// FromStream uses an already loaded stream. The decoder takes ownership of
// its payloads.
func FromStream(s *Stream) Source {
	return func(count int) (*Stream, error) {
		if s == nil || len(s.Pictures) != count {
			n := 0
			if s != nil {
				n = len(s.Pictures)
				s.Release()
			}
			return nil, fmt.Errorf("%w: have %d pictures, want %d", ErrInvalidStream, n, count)
		}
		return s, nil
	}
}

// Stats reports decoder activity.
type Stats struct {
	PicturesDecoded  uint64 // Render calls made
	DecodeFailures   uint64 // Render calls that returned a non-OK status
	BytesSubmitted   uint64 // Bitstream bytes handed to the device
	WindowsCompleted uint64 // Full windows decoded (streaming wraps and batch runs)
}

// DecodedPicture describes one Render call.
type DecodedPicture struct {
	Index      int               // Position in decode order within the window
	CodingType PictureCodingType // Coding type of the picture
	Surface    BufferHandle      // Surface decoded into
	Forward    BufferHandle      // Forward reference used
	Backward   BufferHandle      // Backward reference used

	// Err is non-nil if the device reported a failure. Surface contents are
	// undefined in that case, but the references advanced as usual.
	Err error
}

type decoderState int

const (
	stateNew decoderState = iota
	stateReady
	stateReleased
	stateFailed
	stateClosed
)

// Decoder feeds one sample window of pictures to a Device, rotating decode
// targets through a SurfacePool and tracking reference surfaces.
//
// Decoder is safe for concurrent use but decodes strictly sequentially.
type Decoder struct {
	mu sync.Mutex

	dev    Device
	source Source
	config Config
	log    *slog.Logger
	id     uuid.UUID

	state   decoderState
	failErr error

	stream  *Stream
	decoder DecoderHandle
	pool    SurfacePool
	refs    ReferenceState
	target  BufferHandle
	index   int

	stats Stats
}

// NewDecoder creates a decoder reading from source. Init must be called
// before decoding.
func NewDecoder(dev Device, source Source, opts ...Option) *Decoder {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.PicturesPerWindow <= 0 {
		config.PicturesPerWindow = DefaultPicturesPerWindow
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()

	return &Decoder{
		dev:     dev,
		source:  source,
		config:  config,
		log:     logger.With("component", "mpegdec", "session", id.String()),
		id:      id,
		decoder: InvalidHandle,
		pool:    newSurfacePool(),
		refs:    NoReferences(),
		target:  InvalidHandle,
	}
}

// ID returns the session id used in log records.
func (d *Decoder) ID() uuid.UUID { return d.id }

// Config returns the decoder configuration.
func (d *Decoder) Config() Config { return d.config }

// Init loads the stream, creates the decoder context and the surfaces.
// In decode-only mode only DecodeOnlySurfaces surfaces are created.
// On failure everything already acquired is released and every later call
// returns the same error.
func (d *Decoder) Init(decodeOnly bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case stateNew:
	case stateClosed:
		return ErrClosed
	case stateFailed:
		return d.failErr
	default:
		return ErrAlreadyInitialized
	}

	if err := d.init(decodeOnly); err != nil {
		d.teardown()
		d.failErr = err
		d.state = stateFailed
		d.log.Error("init failed", "error", err)
		return err
	}

	d.state = stateReady
	d.log.Info("decoder initialized",
		"width", d.stream.Width,
		"height", d.stream.Height,
		"aspect", d.stream.AspectRatio,
		"profile", d.stream.Profile.String(),
		"pictures", len(d.stream.Pictures),
		"surfaces", d.pool.Provisioned(),
		"decode_only", decodeOnly,
	)
	return nil
}

func (d *Decoder) init(decodeOnly bool) error {
	if d.dev == nil {
		return errors.New("no device")
	}
	if d.source == nil {
		return fmt.Errorf("%w: no source", ErrSourceUnreadable)
	}

	s, err := d.source(d.config.PicturesPerWindow)
	if err != nil {
		return err
	}
	d.stream = s
	if err := validateStream(s); err != nil {
		return err
	}
	d.checkHeaders(s)

	dec, err := d.dev.CreateDecoder(s.Profile, uint32(s.Width), uint32(s.Height), d.config.MaxReferences)
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	d.decoder = dec

	count := MaxSurfaces
	if decodeOnly {
		count = DecodeOnlySurfaces
	}
	if err := d.pool.provision(d.dev, count, d.config.Chroma, uint32(s.Width), uint32(s.Height)); err != nil {
		return fmt.Errorf("create surfaces: %w", err)
	}

	d.resetWindow()
	return nil
}

func validateStream(s *Stream) error {
	if !s.Profile.IsMPEG12() {
		return fmt.Errorf("%w: %s", ErrUnsupportedProfile, s.Profile)
	}
	for i, p := range s.Pictures {
		if !p.CodingType().Valid() {
			return fmt.Errorf("%w: picture %d has coding type %d", ErrInvalidStream, i, p.CodingType())
		}
	}
	if len(s.Pictures) > 0 && s.Pictures[0].CodingType() == PictureBidirectional {
		return fmt.Errorf("%w: window starts with a B picture", ErrInvalidStream)
	}
	return nil
}

// checkHeaders compares each payload's picture header with its picture info.
// Disagreements are logged; payloads reach the device unchanged.
func (d *Decoder) checkHeaders(s *Stream) {
	for i, p := range s.Pictures {
		h, ok := FindPictureHeader(p.Payload.Bytes())
		if !ok {
			d.log.Debug("no picture header in payload", "index", i)
			continue
		}
		if h.CodingType != p.CodingType() {
			d.log.Warn("picture header disagrees with picture info",
				"index", i,
				"info", p.CodingType().String(),
				"header", h.CodingType.String(),
			)
		}
	}
}

// resetWindow restores the state at the start of a window.
func (d *Decoder) resetWindow() {
	d.refs = NoReferences()
	d.target = d.pool.Slot(0)
	d.index = 0
}

func (d *Decoder) checkReady() error {
	switch d.state {
	case stateReady:
		return nil
	case stateNew:
		return ErrNotInitialized
	case stateReleased:
		return ErrDecoderReleased
	case stateFailed:
		return d.failErr
	default:
		return ErrClosed
	}
}

// render decodes rec into target against the current references.
func (d *Decoder) render(index int, rec *PictureRecord, target BufferHandle) DecodedPicture {
	d.refs.apply(&rec.Info)
	pic := DecodedPicture{
		Index:      index,
		CodingType: rec.CodingType(),
		Surface:    target,
		Forward:    rec.Info.ForwardReference,
		Backward:   rec.Info.BackwardReference,
	}

	st := d.dev.Render(d.decoder, target, &rec.Info, rec.bitstream())
	d.stats.PicturesDecoded++
	d.stats.BytesSubmitted += uint64(rec.Payload.Len())
	if st != StatusOK {
		pic.Err = statusError(d.dev, "render", st)
		d.stats.DecodeFailures++
		d.log.Warn("decoding failed",
			"index", index,
			"type", pic.CodingType.String(),
			"surface", uint32(target),
			"error", pic.Err,
		)
	}

	d.refs = d.refs.Advance(pic.CodingType, target)
	return pic
}

// DecodeNext decodes the next picture of the window and returns the surface
// it was decoded into. Pictures come out in decode order. A device failure
// on the picture is logged and not returned; see DecodeNextPicture.
func (d *Decoder) DecodeNext() (BufferHandle, error) {
	pic, err := d.DecodeNextPicture()
	if err != nil {
		return InvalidHandle, err
	}
	return pic.Surface, nil
}

// DecodeNextPicture is DecodeNext with the per-picture details. After the
// last picture of the window the next call starts the window over with no
// references.
func (d *Decoder) DecodeNextPicture() (DecodedPicture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkReady(); err != nil {
		return DecodedPicture{}, err
	}

	index := d.index
	d.index++
	pic := d.render(index, d.stream.Pictures[index], d.target)

	next, err := d.pool.SelectTarget(d.refs.Forward, d.refs.Backward)
	if err != nil {
		d.fail(err)
		return pic, err
	}
	d.target = next

	if d.index >= len(d.stream.Pictures) {
		d.resetWindow()
		d.stats.WindowsCompleted++
	}
	return pic, nil
}

// DecodeWindowAndReorder decodes the whole window, picture j into surface j,
// and returns the surfaces in display order. The decoder context is released
// afterwards; the surfaces stay valid until Close.
func (d *Decoder) DecodeWindowAndReorder() ([]BufferHandle, error) {
	pics, err := d.DecodeWindow()
	if err != nil {
		return nil, err
	}
	slots := make([]BufferHandle, len(pics))
	for i, p := range pics {
		slots[i] = p.Surface
	}
	return slots, nil
}

// DecodeWindow is DecodeWindowAndReorder with the per-picture details, in
// display order.
func (d *Decoder) DecodeWindow() ([]DecodedPicture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkReady(); err != nil {
		return nil, err
	}
	window := len(d.stream.Pictures)
	if window > d.pool.Provisioned() {
		return nil, fmt.Errorf("%w: %d pictures, %d surfaces", ErrWindowTooLarge, window, d.pool.Provisioned())
	}

	d.resetWindow()
	pics := make([]DecodedPicture, window)
	types := make([]PictureCodingType, window)
	for j, rec := range d.stream.Pictures {
		pics[j] = d.render(j, rec, d.pool.Slot(j))
		types[j] = pics[j].CodingType
	}
	d.stats.WindowsCompleted++

	reorder(types, func(i, j int) {
		pics[i], pics[j] = pics[j], pics[i]
	})

	d.dev.DestroyDecoder(d.decoder)
	d.decoder = InvalidHandle
	d.state = stateReleased
	d.log.Debug("window decoded", "pictures", window, "failures", d.stats.DecodeFailures)
	return pics, nil
}

// fail ends the session after an invariant violation.
func (d *Decoder) fail(err error) {
	d.failErr = err
	d.state = stateFailed
	d.log.Error("session failed", "error", err, "forward", uint32(d.refs.Forward), "backward", uint32(d.refs.Backward))
}

// Stream returns the loaded stream, or nil before Init.
func (d *Decoder) Stream() *Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stream
}

// Stats returns decoding statistics.
func (d *Decoder) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// References returns the current reference state.
func (d *Decoder) References() ReferenceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refs
}

// NextTarget returns the surface the next DecodeNext call decodes into.
func (d *Decoder) NextTarget() BufferHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

// Surfaces returns the pool slots in declaration order.
func (d *Decoder) Surfaces() []BufferHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pool.Handles()
}

// Close destroys the surfaces and the decoder context and releases the
// picture payloads. Close is idempotent.
func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == stateClosed {
		return nil
	}
	d.teardown()
	d.state = stateClosed
	d.log.Debug("decoder closed",
		"pictures", d.stats.PicturesDecoded,
		"failures", d.stats.DecodeFailures,
	)
	return nil
}

func (d *Decoder) teardown() {
	if d.dev != nil {
		d.pool.release(d.dev)
		if d.decoder.Valid() {
			d.dev.DestroyDecoder(d.decoder)
		}
	}
	d.decoder = InvalidHandle
	if d.stream != nil {
		d.stream.Release()
	}
	d.refs = NoReferences()
	d.target = InvalidHandle
	d.index = 0
}
