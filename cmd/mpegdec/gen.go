package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thesyncim/mpegdec"
)

// GenOptions holds gen command options
type GenOptions struct {
	Pattern     string
	Width       int
	Height      int
	AspectRatio float64
	Profile     string
	PayloadSize int
}

func newGenCommand() *cobra.Command {
	opts := &GenOptions{}

	cmd := &cobra.Command{
		Use:   "gen FILE",
		Short: "Write a synthetic stream file",
		Long: `Write a stream file whose pictures carry placeholder bitstreams. It is only
meaningful with --device fake, which checks surface handling but decodes
nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := syntheticStream(opts)
			if err != nil {
				return err
			}
			if err := writeStreamFile(args[0], s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pictures (%s) to %s\n", len(s.Pictures), opts.Pattern, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "pattern", "IPBP", "Picture coding types in decode order")
	cmd.Flags().IntVar(&opts.Width, "width", 720, "Picture width")
	cmd.Flags().IntVar(&opts.Height, "height", 576, "Picture height")
	cmd.Flags().Float64Var(&opts.AspectRatio, "aspect", 4.0/3.0, "Display aspect ratio")
	cmd.Flags().StringVar(&opts.Profile, "profile", "mpeg2-main", "Profile: mpeg1, mpeg2-simple or mpeg2-main")
	cmd.Flags().IntVar(&opts.PayloadSize, "payload", 4096, "Bytes per picture payload")
	return cmd
}

func parseProfile(name string) (mpegdec.DecoderProfile, error) {
	switch strings.ToLower(name) {
	case "mpeg1":
		return mpegdec.ProfileMPEG1, nil
	case "mpeg2-simple":
		return mpegdec.ProfileMPEG2Simple, nil
	case "mpeg2-main", "mpeg2":
		return mpegdec.ProfileMPEG2Main, nil
	default:
		return 0, fmt.Errorf("unknown profile %q", name)
	}
}

func parsePattern(pattern string) ([]mpegdec.PictureCodingType, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	types := make([]mpegdec.PictureCodingType, len(pattern))
	for i, c := range strings.ToUpper(pattern) {
		switch c {
		case 'I':
			types[i] = mpegdec.PictureIntra
		case 'P':
			types[i] = mpegdec.PicturePredicted
		case 'B':
			types[i] = mpegdec.PictureBidirectional
		default:
			return nil, fmt.Errorf("invalid picture type %q in pattern", c)
		}
	}
	return types, nil
}

func syntheticStream(opts *GenOptions) (*mpegdec.Stream, error) {
	profile, err := parseProfile(opts.Profile)
	if err != nil {
		return nil, err
	}
	types, err := parsePattern(opts.Pattern)
	if err != nil {
		return nil, err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.PayloadSize < minPayloadSize || opts.PayloadSize > mpegdec.MaxPayloadSize {
		return nil, fmt.Errorf("invalid payload size %d", opts.PayloadSize)
	}

	s := &mpegdec.Stream{
		Width:       int32(opts.Width),
		Height:      int32(opts.Height),
		AspectRatio: opts.AspectRatio,
		Profile:     profile,
	}
	// Temporal reference of decode index j is its display position.
	temporal := make([]uint16, len(types))
	for pos, j := range mpegdec.DisplayOrder(types) {
		temporal[j] = uint16(pos)
	}

	slices := uint32((opts.Height + 15) / 16)
	for i, ct := range types {
		hdr := mpegdec.PictureHeader{TemporalReference: temporal[i], CodingType: ct, VBVDelay: 0xFFFF}
		s.Pictures = append(s.Pictures, &mpegdec.PictureRecord{
			Info:    syntheticInfo(ct, slices),
			Payload: mpegdec.NewPayload(syntheticPayload(i, hdr, opts.PayloadSize)),
		})
	}
	return s, nil
}

func syntheticInfo(ct mpegdec.PictureCodingType, slices uint32) mpegdec.PictureInfo {
	info := mpegdec.PictureInfo{
		ForwardReference:  mpegdec.InvalidHandle,
		BackwardReference: mpegdec.InvalidHandle,
		PictureStructure:  3, // frame picture
		PictureCodingType: ct,
		FramePredFrameDCT: 1,
		FCode:             [2][2]uint8{{15, 15}, {15, 15}},
		SliceCount:        slices,
	}
	if ct != mpegdec.PictureIntra {
		info.FCode[0] = [2]uint8{1, 1}
	}
	if ct == mpegdec.PictureBidirectional {
		info.FCode[1] = [2]uint8{1, 1}
	}
	for i := range info.IntraQuantizerMatrix {
		info.IntraQuantizerMatrix[i] = 16
		info.NonIntraQuantizerMatrix[i] = 16
	}
	return info
}

// minPayloadSize fits a picture start code and header.
const minPayloadSize = 8

// syntheticPayload is a picture header followed by filler that never forms
// a start code.
func syntheticPayload(index int, hdr mpegdec.PictureHeader, size int) []byte {
	b := mpegdec.AppendPictureHeader(make([]byte, 0, size), hdr)
	for i := len(b); i < size; i++ {
		b = append(b, byte(index+i))
	}
	return b
}

func writeStreamFile(path string, s *mpegdec.Stream) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := mpegdec.WriteStream(w, s); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
