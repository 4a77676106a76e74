package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thesyncim/mpegdec"
)

func newRootCommand() *cobra.Command {
	v := newConfig()

	cmd := &cobra.Command{
		Use:   "mpegdec",
		Short: "Decode MPEG-1/2 sample streams on a hardware decoder",
		Long: `mpegdec feeds a pre-parsed sample window of MPEG-1/2 pictures to a VDPAU
decoder, either one picture at a time in decode order (stream) or as a whole
window reordered into display order (batch).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			return readConfigFile(v, path)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Config file (default: mpegdec.yaml in ., $HOME/.config/mpegdec, /etc/mpegdec)")
	pf.String("device", "vdpau", "Decode device: vdpau or fake")
	pf.String("display", "", "X11 display for VDPAU (default: $DISPLAY)")
	pf.IntP("pictures", "n", mpegdec.DefaultPicturesPerWindow, "Pictures per sample window")
	pf.Bool("decode-only", false, fmt.Sprintf("Provision only %d surfaces", mpegdec.DecodeOnlySurfaces))
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	for _, name := range []string{"device", "display", "pictures", "decode-only", "verbose"} {
		v.BindPFlag(name, pf.Lookup(name))
	}

	cmd.AddCommand(newInfoCommand(v))
	cmd.AddCommand(newStreamCommand(v))
	cmd.AddCommand(newBatchCommand(v))
	cmd.AddCommand(newBenchCommand(v))
	cmd.AddCommand(newGenCommand())
	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openDevice returns the configured device and a function that closes it.
func openDevice(s settings) (mpegdec.Device, func() error, error) {
	switch s.Device {
	case "fake", "null":
		return mpegdec.NewNullDevice(), func() error { return nil }, nil
	case "vdpau":
		dev, err := mpegdec.OpenVDPAU(s.Display)
		if err != nil {
			return nil, nil, err
		}
		return dev, dev.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown device %q (want vdpau or fake)", s.Device)
	}
}

// session is an initialized decoder on its own device.
type session struct {
	*mpegdec.Decoder
	closeDevice func() error
}

func openSession(s settings, file string, log *slog.Logger) (*session, error) {
	dev, closeDevice, err := openDevice(s)
	if err != nil {
		return nil, err
	}

	d := mpegdec.NewDecoder(dev, mpegdec.FromFile(file),
		mpegdec.WithPicturesPerWindow(s.Pictures),
		mpegdec.WithLogger(log),
	)
	if err := d.Init(s.DecodeOnly); err != nil {
		d.Close()
		closeDevice()
		return nil, err
	}
	return &session{Decoder: d, closeDevice: closeDevice}, nil
}

func (s *session) Close() error {
	s.Decoder.Close()
	return s.closeDevice()
}

// sessionCommand wires the common setup of the decode commands.
func sessionCommand(v *viper.Viper, run func(cmd *cobra.Command, s *session, cfg settings) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := loadSettings(v)
		log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

		s, err := openSession(cfg, args[0], log)
		if err != nil {
			return err
		}
		defer s.Close()
		return run(cmd, s, cfg)
	}
}
