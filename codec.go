package mpegdec

// PictureCodingType identifies how a picture was coded.
// Values follow the MPEG picture_coding_type field.
type PictureCodingType uint8

const (
	PictureUnknown       PictureCodingType = iota
	PictureIntra                           // I: decodable on its own
	PicturePredicted                       // P: one earlier reference
	PictureBidirectional                   // B: two references, never itself a reference
)

func (t PictureCodingType) String() string {
	switch t {
	case PictureIntra:
		return "I"
	case PicturePredicted:
		return "P"
	case PictureBidirectional:
		return "B"
	default:
		return "Unknown"
	}
}

// IsReference reports whether pictures of this type may be referenced by
// later pictures.
func (t PictureCodingType) IsReference() bool {
	return t == PictureIntra || t == PicturePredicted
}

// Valid reports whether t is one of the three coded picture types.
func (t PictureCodingType) Valid() bool {
	return t >= PictureIntra && t <= PictureBidirectional
}

// DecoderProfile identifies the codec variant the hardware decoder is created
// for. Values match VdpDecoderProfile.
type DecoderProfile uint32

const (
	ProfileMPEG1         DecoderProfile = 0
	ProfileMPEG2Simple   DecoderProfile = 1
	ProfileMPEG2Main     DecoderProfile = 2
	ProfileH264Baseline  DecoderProfile = 6
	ProfileH264Main      DecoderProfile = 7
	ProfileH264High      DecoderProfile = 8
	ProfileVC1Simple     DecoderProfile = 9
	ProfileVC1Main       DecoderProfile = 10
	ProfileVC1Advanced   DecoderProfile = 11
	ProfileMPEG4Part2SP  DecoderProfile = 12
	ProfileMPEG4Part2ASP DecoderProfile = 13
)

func (p DecoderProfile) String() string {
	switch p {
	case ProfileMPEG1:
		return "MPEG1"
	case ProfileMPEG2Simple:
		return "MPEG2 Simple"
	case ProfileMPEG2Main:
		return "MPEG2 Main"
	case ProfileH264Baseline:
		return "H264 Baseline"
	case ProfileH264Main:
		return "H264 Main"
	case ProfileH264High:
		return "H264 High"
	case ProfileVC1Simple:
		return "VC1 Simple"
	case ProfileVC1Main:
		return "VC1 Main"
	case ProfileVC1Advanced:
		return "VC1 Advanced"
	case ProfileMPEG4Part2SP:
		return "MPEG4 Part2 SP"
	case ProfileMPEG4Part2ASP:
		return "MPEG4 Part2 ASP"
	default:
		return "Unknown"
	}
}

// IsMPEG12 reports whether the profile decodes MPEG-1 or MPEG-2 video, the
// only picture-info layout this package knows how to feed.
func (p DecoderProfile) IsMPEG12() bool {
	return p == ProfileMPEG1 || p == ProfileMPEG2Simple || p == ProfileMPEG2Main
}

// ChromaType identifies the chroma subsampling of a surface.
// Values match VdpChromaType.
type ChromaType uint32

const (
	Chroma420 ChromaType = iota // YUV 4:2:0
	Chroma422                   // YUV 4:2:2
	Chroma444                   // YUV 4:4:4
)

func (c ChromaType) String() string {
	switch c {
	case Chroma420:
		return "4:2:0"
	case Chroma422:
		return "4:2:2"
	case Chroma444:
		return "4:4:4"
	default:
		return "Unknown"
	}
}
