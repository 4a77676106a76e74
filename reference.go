package mpegdec

// ReferenceState holds the surfaces of the two most recently decoded
// reference pictures (I or P).
//
// Backward is always the newest reference and Forward the one before it.
// A P picture predicts from Backward alone, which the decoder passes as the
// picture's forward reference. A B picture is decoded between the two and
// uses Forward as its past reference and Backward as its future one.
type ReferenceState struct {
	Forward  BufferHandle
	Backward BufferHandle
}

// NoReferences returns the state at the start of a window.
func NoReferences() ReferenceState {
	return ReferenceState{Forward: InvalidHandle, Backward: InvalidHandle}
}

// Resolve returns the forward and backward references a picture of type ct
// must be decoded against.
func (s ReferenceState) Resolve(ct PictureCodingType) (forward, backward BufferHandle) {
	switch ct {
	case PicturePredicted:
		return s.Backward, InvalidHandle
	case PictureBidirectional:
		return s.Forward, s.Backward
	default:
		return InvalidHandle, InvalidHandle
	}
}

// Advance returns the state after a picture of type ct was decoded into
// decoded. B pictures leave the state unchanged.
func (s ReferenceState) Advance(ct PictureCodingType, decoded BufferHandle) ReferenceState {
	if ct == PictureBidirectional {
		return s
	}
	return ReferenceState{Forward: s.Backward, Backward: decoded}
}

// Holds reports whether h is one of the live references.
func (s ReferenceState) Holds(h BufferHandle) bool {
	return h.Valid() && (h == s.Forward || h == s.Backward)
}

// Empty reports whether no reference is held.
func (s ReferenceState) Empty() bool {
	return !s.Forward.Valid() && !s.Backward.Valid()
}

// apply writes the references for info's coding type into info.
func (s ReferenceState) apply(info *PictureInfo) {
	info.ForwardReference, info.BackwardReference = s.Resolve(info.PictureCodingType)
}
