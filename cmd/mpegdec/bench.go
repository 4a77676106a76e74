package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thesyncim/mpegdec"
	"golang.org/x/sync/errgroup"
)

func newBenchCommand(v *viper.Viper) *cobra.Command {
	var (
		duration time.Duration
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "bench FILE",
		Short: "Measure streaming decode throughput",
		Long: `Decode the sample window in a loop for --duration and report pictures per
second. With --parallel N, N independent sessions run at once, each with its
own device and surfaces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 {
				return fmt.Errorf("invalid --parallel %d", parallel)
			}
			cfg := loadSettings(v)
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			ctx, cancel := context.WithTimeout(cmd.Context(), duration)
			defer cancel()

			start := time.Now()
			stats, err := runBench(ctx, cfg, args[0], parallel, log)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			var total mpegdec.Stats
			for i, st := range stats {
				fmt.Fprintf(out, "session %d: %d pictures, %d failed, %.1f pictures/s\n",
					i, st.PicturesDecoded, st.DecodeFailures, float64(st.PicturesDecoded)/elapsed.Seconds())
				total.PicturesDecoded += st.PicturesDecoded
				total.DecodeFailures += st.DecodeFailures
				total.BytesSubmitted += st.BytesSubmitted
			}
			fmt.Fprintf(out, "total: %d pictures in %v, %.1f pictures/s, %.2f MB/s\n",
				total.PicturesDecoded, elapsed.Round(time.Millisecond),
				float64(total.PicturesDecoded)/elapsed.Seconds(),
				float64(total.BytesSubmitted)/elapsed.Seconds()/1e6)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "How long to decode")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "Concurrent decode sessions")
	return cmd
}

// runBench runs parallel streaming sessions until ctx is done.
func runBench(ctx context.Context, cfg settings, file string, parallel int, log *slog.Logger) ([]mpegdec.Stats, error) {
	g, ctx := errgroup.WithContext(ctx)
	stats := make([]mpegdec.Stats, parallel)

	for i := 0; i < parallel; i++ {
		i := i
		g.Go(func() error {
			s, err := openSession(cfg, file, log.With("worker", i))
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			defer s.Close()

			for ctx.Err() == nil {
				if _, err := s.DecodeNext(); err != nil {
					return fmt.Errorf("session %d: %w", i, err)
				}
			}
			stats[i] = s.Stats()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
