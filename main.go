package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/sigimage/internal/app"
	"github.com/rook-computer/sigimage/internal/config"
	"github.com/rook-computer/sigimage/internal/render"
	"github.com/rook-computer/sigimage/internal/state"
	"github.com/rook-computer/sigimage/internal/system"
	"github.com/rook-computer/sigimage/internal/web"
)

// defaultMaxSegments bounds a single stroke payload on the service.
const defaultMaxSegments = 20000

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sigimage:", err)
		os.Exit(1)
	}
}

func run() error {
	serverCfg, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		return err
	}

	settings := config.Defaults()
	settings.Register(flag.CommandLine, defaultMaxSegments)
	listen := flag.String("listen", serverCfg.ListenAddr, "HTTP listen address; env "+web.EnvListenAddr)
	dev := flag.Bool("dev", serverCfg.DevMode, "enable permissive CORS for local development; env "+web.EnvDevMode)
	staticDir := flag.String("static-dir", serverCfg.StaticDir, "serve this directory at / instead of the embedded capture page; env "+web.EnvStaticDir)
	publicURL := flag.String("public-url", "", "capture page URL shown as a QR code; detected from the host address when empty; env SIGIMAGE_PUBLIC_URL")
	framebuffer := flag.String("framebuffer", "", "framebuffer device for the preview display, e.g. /dev/fb0; env SIGIMAGE_FRAMEBUFFER")
	debug := flag.Bool("debug", false, "enable debug logging to ./sigimage-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; env SIGIMAGE_STDIO_LOG")
	flag.Parse()

	if err := settings.ApplyEnv(flag.CommandLine); err != nil {
		return err
	}
	if err := config.ApplyEnv(flag.CommandLine, map[string]string{
		"public-url":  "SIGIMAGE_PUBLIC_URL",
		"framebuffer": "SIGIMAGE_FRAMEBUFFER",
		"stdio-log":   "SIGIMAGE_STDIO_LOG",
	}); err != nil {
		return err
	}

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable while the console is in graphics mode.
	if *stdioLog != "" {
		if err := redirectStdIO(*stdioLog); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NewErrorLogger(os.Stderr)
	if *debug {
		f, err := os.OpenFile("./sigimage-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logger = app.NewFileLogger(f)
		logger.Infof("main", "debug logging enabled")
	}

	gen, err := settings.Generator(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := state.NewStore()
	store.UpdateNetwork(networkInfo(*listen, *publicURL, logger))

	serverCfg.ListenAddr, serverCfg.DevMode, serverCfg.StaticDir = *listen, *dev, *staticDir
	server := web.NewHTTPServer(serverCfg, web.APIV1Deps{
		Generator: gen,
		Store:     store,
		FontPath:  settings.FontPath,
		Logger:    logger,
	})

	a := app.New(store, nil, server)
	a.Logger = logger
	if *framebuffer != "" {
		display := render.NewFBDisplay(*framebuffer)
		display.Logger = logger
		a.Display = display
		a.Console = true
	}

	err = a.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func networkInfo(listen, publicURL string, logger app.Logger) state.NetworkInfo {
	ip, err := system.PrimaryIPv4()
	if err != nil {
		logger.Infof("main", "host address: %v", err)
	}
	if publicURL == "" {
		publicURL = system.CaptureURL(listen, ip)
	}
	return state.NetworkInfo{IP: ip, URL: publicURL}
}
