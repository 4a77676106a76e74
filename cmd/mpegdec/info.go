package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thesyncim/mpegdec"
)

func newInfoCommand(v *viper.Viper) *cobra.Command {
	var caps bool

	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Show the header and pictures of a stream file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadSettings(v)
			s, err := mpegdec.OpenStream(args[0], cfg.Pictures)
			if err != nil {
				return err
			}
			defer s.Release()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Size:     %dx%d\n", s.Width, s.Height)
			fmt.Fprintf(out, "Aspect:   %.4f\n", s.AspectRatio)
			fmt.Fprintf(out, "Profile:  %s\n", s.Profile)
			fmt.Fprintf(out, "Pictures: %d (%d bytes)\n", len(s.Pictures), s.PayloadBytes())
			for i, p := range s.Pictures {
				fmt.Fprintf(out, "  %3d %s %8d bytes, %d slices", i, p.CodingType(), p.Payload.Len(), p.Info.SliceCount)
				if h, ok := mpegdec.FindPictureHeader(p.Payload.Bytes()); ok {
					fmt.Fprintf(out, ", header %s tr=%d", h.CodingType, h.TemporalReference)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Display order: %v\n", mpegdec.DisplayOrder(s.CodingTypes()))

			if !caps {
				return nil
			}
			return printCapabilities(cmd, cfg, s.Profile)
		},
	}

	cmd.Flags().BoolVar(&caps, "caps", false, "Query the VDPAU driver for the stream's profile")
	return cmd
}

func printCapabilities(cmd *cobra.Command, cfg settings, profile mpegdec.DecoderProfile) error {
	dev, err := mpegdec.OpenVDPAU(cfg.Display)
	if err != nil {
		return err
	}
	defer dev.Close()

	out := cmd.OutOrStdout()
	supported, maxW, maxH, err := dev.DecoderCapabilities(profile)
	if errors.Is(err, mpegdec.ErrNotSupported) {
		fmt.Fprintln(out, "Driver:   capability query not available")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Driver:   supported=%v max=%dx%d\n", supported, maxW, maxH)
	return nil
}
