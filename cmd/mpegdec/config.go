package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/thesyncim/mpegdec"
)

const envPrefix = "MPEGDEC"

// configPaths are searched for mpegdec.yaml when --config is not given.
var configPaths = []string{
	".",
	"$HOME/.config/mpegdec",
	"/etc/mpegdec",
}

// settings is the resolved configuration shared by all commands.
type settings struct {
	Device     string // "vdpau" or "fake" ("null" is an alias; quote it in YAML)
	Display    string // X11 display, empty = $DISPLAY
	Pictures   int    // Pictures per sample window
	DecodeOnly bool   // Provision only mpegdec.DecodeOnlySurfaces surfaces
	Verbose    bool
}

func newConfig() *viper.Viper {
	v := viper.New()

	v.SetDefault("device", "vdpau")
	v.SetDefault("display", "")
	v.SetDefault("pictures", mpegdec.DefaultPicturesPerWindow)
	v.SetDefault("decode-only", false)
	v.SetDefault("verbose", false)

	// MPEGDEC_DEVICE, MPEGDEC_DECODE_ONLY, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// readConfigFile loads path, or mpegdec.yaml from configPaths if path is
// empty. A missing default config file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mpegdec")
		v.SetConfigType("yaml")
		for _, p := range configPaths {
			v.AddConfigPath(os.ExpandEnv(p))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		Device:     v.GetString("device"),
		Display:    v.GetString("display"),
		Pictures:   v.GetInt("pictures"),
		DecodeOnly: v.GetBool("decode-only"),
		Verbose:    v.GetBool("verbose"),
	}
}
