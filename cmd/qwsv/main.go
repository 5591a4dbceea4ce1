package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"github.com/crystal-mush/goqwsv/pkg/config"
	"github.com/crystal-mush/goqwsv/pkg/console"
	"github.com/crystal-mush/goqwsv/pkg/metrics"
	"github.com/crystal-mush/goqwsv/pkg/server"
)

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

// frameTime is the simulation tick.
const frameTime = 100 * time.Millisecond

func main() {
	confFile := flag.String("conf", envDefault("QWSV_CONF", ""), "Path to server config file (env: QWSV_CONF)")
	startMap := flag.String("map", envDefault("QWSV_MAP", ""), "Map to spawn at startup (env: QWSV_MAP)")
	execFile := flag.String("exec", envDefault("QWSV_EXEC", ""), "Console script to run at startup (env: QWSV_EXEC)")
	noConsole := flag.Bool("noconsole", os.Getenv("QWSV_NOCONSOLE") == "true", "Disable the interactive console (env: QWSV_NOCONSOLE)")
	flag.Parse()

	cfg, err := config.Load(*confFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *confFile != "" {
		log.Printf("Loaded config from %s", *confFile)
	}

	m := metrics.New(time.Now())
	srv, err := server.New(cfg, m)
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		go func() {
			log.Printf("Metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("Metrics server: %v", err)
			}
		}()
	}

	if stop, err := srv.Maps.Watch(); err != nil {
		log.Printf("Map watcher disabled: %v", err)
	} else {
		defer stop()
	}

	if *execFile != "" {
		data, err := os.ReadFile(*execFile)
		if err != nil {
			log.Fatalf("Error reading %s: %v", *execFile, err)
		}
		if err := srv.Console.Cbuf.AddText(string(data) + "\n"); err != nil {
			log.Fatalf("Error queuing %s: %v", *execFile, err)
		}
	}
	if *startMap != "" {
		srv.Console.Cbuf.AddText("map " + *startMap + "\n")
	}

	lines := make(chan string)
	if !*noConsole {
		rl, err := readline.New("] ")
		if err != nil {
			log.Fatalf("Error starting console: %v", err)
		}
		defer rl.Close()
		srv.Console.Out = rl.Stdout()
		log.SetOutput(rl.Stderr())
		go readConsole(rl, lines)
	}

	quit := false
	srv.Console.Commands.Register("quit", func(*console.Args) { quit = true }, "shut the server down")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	log.Printf("Server running, %d client slots", cfg.MaxClients)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				log.Printf("Console closed, shutting down")
				return
			}
			if err := srv.Console.Cbuf.AddText(line + "\n"); err != nil {
				log.Printf("Console: %v", err)
			}
		case now := <-ticker.C:
			err := srv.Frame(now.Sub(last).Seconds())
			last = now
			if err != nil {
				log.Printf("Host error: %v", err)
				return
			}
			if quit {
				log.Printf("Shutting down")
				return
			}
		case sig := <-sigs:
			log.Printf("Received %s, shutting down", sig)
			return
		}
	}
}

// readConsole feeds operator input to the simulation loop. It closes lines
// on EOF.
func readConsole(rl *readline.Instance, lines chan<- string) {
	defer close(lines)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return
		}
		lines <- line
	}
}
