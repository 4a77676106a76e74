package mpegdec

import (
	"errors"
	"fmt"
)

// MaxSurfaces is the capacity of a SurfacePool. It must exceed the number of
// simultaneously live references (two) so the target can always rotate.
const MaxSurfaces = 4

// DecodeOnlySurfaces is how many surfaces are provisioned in decode-only mode.
const DecodeOnlySurfaces = 3

// ErrPoolExhausted reports that every provisioned surface is held as a
// reference. It cannot happen with a correctly sized pool.
var ErrPoolExhausted = errors.New("surface pool exhausted")

// SurfacePool is a fixed set of decode target surfaces. Slots that were not
// provisioned hold InvalidHandle and are never selected.
type SurfacePool struct {
	slots       [MaxSurfaces]BufferHandle
	provisioned int
}

// newSurfacePool returns a pool with every slot empty.
func newSurfacePool() SurfacePool {
	var p SurfacePool
	for i := range p.slots {
		p.slots[i] = InvalidHandle
	}
	return p
}

// provision creates count surfaces on dev. On failure the surfaces already
// created stay in the pool so release can destroy them.
func (p *SurfacePool) provision(dev Device, count int, chroma ChromaType, width, height uint32) error {
	if count < 1 || count > MaxSurfaces {
		return fmt.Errorf("invalid surface count %d (want 1..%d)", count, MaxSurfaces)
	}
	for i := 0; i < count; i++ {
		h, err := dev.CreateSurface(chroma, width, height)
		if err != nil {
			return fmt.Errorf("surface %d: %w", i, err)
		}
		p.slots[i] = h
		p.provisioned = i + 1
	}
	return nil
}

// release destroys every created surface and empties the pool.
func (p *SurfacePool) release(dev Device) {
	for i, h := range p.slots {
		if h.Valid() {
			dev.DestroySurface(h)
		}
		p.slots[i] = InvalidHandle
	}
	p.provisioned = 0
}

// Capacity returns the number of slots, provisioned or not.
func (p *SurfacePool) Capacity() int { return len(p.slots) }

// Provisioned returns the number of slots holding a surface.
func (p *SurfacePool) Provisioned() int { return p.provisioned }

// Slot returns the handle in slot i, or InvalidHandle if i is out of range or
// not provisioned.
func (p *SurfacePool) Slot(i int) BufferHandle {
	if i < 0 || i >= len(p.slots) {
		return InvalidHandle
	}
	return p.slots[i]
}

// Handles returns a copy of all slots in declaration order.
func (p *SurfacePool) Handles() []BufferHandle {
	out := make([]BufferHandle, len(p.slots))
	copy(out, p.slots[:])
	return out
}

// SelectTarget returns the first provisioned surface, in slot order, that is
// not one of exclude.
func (p *SurfacePool) SelectTarget(exclude ...BufferHandle) (BufferHandle, error) {
next:
	for i := 0; i < p.provisioned; i++ {
		h := p.slots[i]
		for _, x := range exclude {
			if h == x {
				continue next
			}
		}
		return h, nil
	}
	return InvalidHandle, fmt.Errorf("%w: %d provisioned, %d excluded", ErrPoolExhausted, p.provisioned, len(exclude))
}
