// Command preview serves a built comic site locally, under the same base
// directory it will have when published.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ancientlore/cachefs"
	"github.com/ancientlore/inkwell/build"
	"github.com/ancientlore/inkwell/config"
	"github.com/ancientlore/inkwell/web"
	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"
)

func main() {
	var (
		fPort              = flag.Int("port", 8080, "Port to listen on.")
		fReadTimeout       = flag.Duration("readtimeout", 10*time.Second, "HTTP server read timeout.")
		fReadHeaderTimeout = flag.Duration("readheadertimeout", 5*time.Second, "HTTP server read header timeout.")
		fWriteTimeout      = flag.Duration("writetimeout", 30*time.Second, "HTTP server write timeout.")
		fRoot              = flag.String("root", ".", "Root of comic site.")
		fConfig            = flag.String("config", config.FileName, "Config file, relative to the root.")
		fBuild             = flag.Bool("build", false, "Build the site before serving it.")
	)
	flag.Parse()
	flagenv.Prefix = "INKWELL_"
	flagenv.Parse()

	cfg, err := config.Load(*fRoot, filepath.Join(*fRoot, *fConfig))
	if err != nil {
		log.Printf("Cannot load config: %s", err)
		os.Exit(1)
	}

	if *fBuild {
		res, err := build.Run(build.Options{Root: *fRoot, Config: cfg, Now: time.Now()})
		if err != nil {
			log.Printf("Build failed: %s", err)
			os.Exit(2)
		}
		log.Printf("Built %d posts (%d scheduled)", res.Posts, res.Scheduled)
	}

	// Setup groupcache with no peers
	groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })
	cached := cachefs.New(os.DirFS(*fRoot), &cachefs.Config{
		GroupName:   "inkwell",
		SizeInBytes: cfg.Preview.CacheSize,
		Duration:    cfg.Preview.CacheDuration.D(),
	})

	handler := web.HeaderHandler(
		web.ExpiresHandler(
			gziphandler.GzipHandler(
				web.HiddenHandler(
					web.ErrorHandler(
						http.FileServer(http.FS(cached)),
						cached,
					),
					cfg.Settings.TemplateDir, *fConfig,
				),
			),
			cfg.Preview.Expires.D(),
			cfg.Preview.StaticExpires.D(),
		),
		cfg.Preview.Headers)

	mux := http.NewServeMux()
	if base := cfg.BaseDir(); base != "" {
		prefix := "/" + base
		mux.Handle(prefix+"/", http.StripPrefix(prefix, handler))
		mux.Handle("/{$}", http.RedirectHandler(prefix+"/", http.StatusFound))
		log.Printf("Serving site under %s/", prefix)
	} else {
		mux.Handle("/", handler)
	}

	var srv = http.Server{
		Addr:              fmt.Sprintf(":%d", *fPort),
		Handler:           mux,
		ReadTimeout:       *fReadTimeout,
		WriteTimeout:      *fWriteTimeout,
		ReadHeaderTimeout: *fReadHeaderTimeout,
	}

	// Create signal handler for graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
	}()

	log.Printf("Listening on port %d", *fPort)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server: %v", err)
	} else {
		log.Print("Goodbye.")
	}
}
