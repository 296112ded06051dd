package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("supply exited with error")
		os.Exit(1)
	}
}
