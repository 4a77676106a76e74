// mpegdec decodes MPEG-1/2 sample streams on a VDPAU hardware decoder.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
