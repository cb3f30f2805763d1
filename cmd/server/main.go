// path: evochess/cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"evochess/internal/abilities"
	"evochess/internal/engine"
	"evochess/internal/httpx"
	"evochess/internal/session"
)

func main() {
	// Flags with env fallbacks. Default: no preconfigured game; clients
	// create games over the API.
	addr := flag.String("addr", getenv("EVOCHESS_ADDR", ":8080"), "listen address")
	debug := flag.Bool("debug", getenb("EVOCHESS_DEBUG", false), "development logging")
	stillTurns := flag.Int("stationary-threshold", geteni("EVOCHESS_STATIONARY_THRESHOLD", 3), "full turns a piece must hold its square before stationary abilities arm")
	drainWait := flag.Duration("shutdown-timeout", getend("EVOCHESS_SHUTDOWN_TIMEOUT", 5*time.Second), "time allowed for in-flight requests on shutdown")
	preconfig := flag.Bool("preconfig", getenb("EVOCHESS_PRECONFIG", false), "create a game on startup")
	startFEN := flag.String("fen", getenv("EVOCHESS_FEN", ""), "starting position for the preconfigured game")
	wAbils := flag.String("white-abilities", getenv("EVOCHESS_WHITE_ABILITIES", ""), "comma-separated loadout for White (used only if -preconfig)")
	bAbils := flag.String("black-abilities", getenv("EVOCHESS_BLACK_ABILITIES", ""), "comma-separated loadout for Black (used only if -preconfig)")
	flag.Parse()

	logger, err := buildLogger(*debug)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	mgr := session.NewManager(logger, engine.WithStationaryThreshold(*stillTurns))

	if *preconfig {
		white, err := parseLoadoutCSV(*wAbils)
		fatalIf(logger, err, "white abilities")
		black, err := parseLoadoutCSV(*bAbils)
		fatalIf(logger, err, "black abilities")

		sess, err := mgr.Create(session.CreateParams{
			FEN:     strings.TrimSpace(*startFEN),
			Loadout: session.Loadout{White: white, Black: black},
		})
		fatalIf(logger, err, "preconfigured game")
		logger.Info("game preconfigured",
			zap.String("id", sess.ID),
			zap.Strings("white", engine.AbilityList(white).Strings()),
			zap.Strings("black", engine.AbilityList(black).Strings()),
		)
	}

	srv := httpx.NewServer(mgr, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(*addr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		fatalIf(logger, err, "http server")
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), *drainWait)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
		<-errCh
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func parseLoadoutCSV(s string) ([]engine.Ability, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return abilities.ParseCSV(s)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func geteni(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getend(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

func fatalIf(logger *zap.Logger, err error, label string) {
	if err != nil {
		logger.Fatal(label, zap.Error(err))
	}
}
