// Command inkwell builds the static site of a webcomic.
//
// Run it from the site root, or point -root at it:
//
//	inkwell -root ./my-comic
//
// Every flag can also be set from the environment, such as INKWELL_ROOT.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ancientlore/inkwell/build"
	"github.com/ancientlore/inkwell/config"
	"github.com/facebookgo/flagenv"
)

// main is where it all begins. 😀
func main() {
	var (
		fRoot   = flag.String("root", ".", "Root of comic site.")
		fConfig = flag.String("config", config.FileName, "Config file, relative to the root.")
		fNow    = flag.String("now", "", "Build as of this RFC 3339 time instead of the current time.")
		fClean  = flag.Bool("clean", false, "Remove generated files and exit.")
	)
	flag.Parse()
	flagenv.Prefix = "INKWELL_"
	flagenv.Parse()

	now := time.Now()
	if *fNow != "" {
		var err error
		now, err = time.Parse(time.RFC3339, *fNow)
		if err != nil {
			log.Printf("Invalid -now value %q: %s", *fNow, err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(*fRoot, filepath.Join(*fRoot, *fConfig))
	if err != nil {
		log.Printf("Cannot load config: %s", err)
		os.Exit(2)
	}

	if *fClean {
		err = build.Clean(*fRoot, cfg)
		if err != nil {
			log.Printf("Cannot clean site: %s", err)
			os.Exit(3)
		}
		log.Print("Removed generated files.")
		return
	}

	res, err := build.Run(build.Options{Root: *fRoot, Config: cfg, Now: now})
	if err != nil {
		log.Printf("Build failed: %s", err)
		os.Exit(4)
	}
	log.Printf("Built %d posts and %d files; %d posts scheduled.", res.Posts, len(res.Files), res.Scheduled)
}
