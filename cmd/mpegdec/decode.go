package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thesyncim/mpegdec"
)

func newStreamCommand(v *viper.Viper) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "stream FILE",
		Short: "Decode pictures one at a time in decode order",
		Long: `Decode --count pictures one per call. The window restarts from its first
picture after the last one, so counts larger than the window decode it again.`,
		Args: cobra.ExactArgs(1),
		RunE: sessionCommand(v, func(cmd *cobra.Command, s *session, cfg settings) error {
			n := count
			if n <= 0 {
				n = cfg.Pictures
			}
			out := cmd.OutOrStdout()
			for i := 0; i < n; i++ {
				pic, err := s.DecodeNextPicture()
				if err != nil {
					return err
				}
				printPicture(out, pic)
			}
			printStats(out, s.Stats())
			return nil
		}),
	}

	cmd.Flags().IntVarP(&count, "count", "c", 0, "Pictures to decode (default: one window)")
	return cmd
}

func newBatchCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE",
		Short: "Decode a whole window and print it in display order",
		Args:  cobra.ExactArgs(1),
		RunE: sessionCommand(v, func(cmd *cobra.Command, s *session, cfg settings) error {
			pics, err := s.DecodeWindow()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, pic := range pics {
				printPicture(out, pic)
			}
			printStats(out, s.Stats())
			return nil
		}),
	}
}

func printPicture(w io.Writer, pic mpegdec.DecodedPicture) {
	status := "ok"
	if pic.Err != nil {
		status = pic.Err.Error()
	}
	fmt.Fprintf(w, "%3d %s surface=%-12v fwd=%-12v bwd=%-12v %s\n",
		pic.Index, pic.CodingType, pic.Surface, pic.Forward, pic.Backward, status)
}

func printStats(w io.Writer, st mpegdec.Stats) {
	fmt.Fprintf(w, "decoded=%d failed=%d bytes=%d windows=%d\n",
		st.PicturesDecoded, st.DecodeFailures, st.BytesSubmitted, st.WindowsCompleted)
}
