package main

import (
	"flag"
	"log"

	"github.com/danmuck/coqctl/internal/config"
)

const defaultPath = "cmd/coqctl/config.toml"

func main() {
	output := flag.String("output", defaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", defaultPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			log.Fatal(err)
		}
		coqtop := cfg.Session.Coqtop
		if coqtop == "" {
			coqtop = "$PATH"
		}
		log.Printf("Validated config at %s (coqtop=%s timeout=%s startup_timeout=%s)",
			*input, coqtop, cfg.Session.Timeout, cfg.Session.StartupTimeout)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
