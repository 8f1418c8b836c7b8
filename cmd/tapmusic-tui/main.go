// Command tapmusic-tui is an interactive front end for saving tapmusic collages.
package main

import (
	"fmt"
	"os"

	"github.com/handiism/tapmusic-collage/internal/config"
	"github.com/handiism/tapmusic-collage/internal/tui"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "", "settings file (default: user config dir)")
	pflag.Parse()

	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	settings := config.DefaultSettings()
	if path != "" {
		s, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		settings = s
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
