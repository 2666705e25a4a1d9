package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/coqctl/internal/config"
	"github.com/danmuck/coqctl/internal/logging"
	"github.com/danmuck/coqctl/internal/observability"
	"github.com/danmuck/coqctl/internal/protocol"
	"github.com/danmuck/coqctl/internal/protocol/session"
)

type options struct {
	configPath  string
	coqtop      string
	timeout     time.Duration
	metricsAddr string
	sentences   []string
}

// adder is the slice of session.Client the submit loop needs.
type adder interface {
	Add(source string) (protocol.StateID, error)
}

func main() {
	logging.ConfigureRuntime()

	opts, set, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "coqctl: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts, set, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "coqctl: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, map[string]bool, error) {
	var opts options
	fs := flag.NewFlagSet("coqctl", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "TOML config path")
	fs.StringVar(&opts.coqtop, "coqtop", "", "coqtop executable (default: search $PATH)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per-read/write timeout once the worker is up")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	opts.sentences = fs.Args()
	return opts, set, nil
}

// resolveConfig loads the config file, if any, and applies flags that were
// given explicitly on top of it.
func resolveConfig(opts options, set map[string]bool) (config.Client, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Client{}, err
		}
		cfg = loaded
	}
	if set["coqtop"] {
		cfg.Session.Coqtop = strings.TrimSpace(opts.coqtop)
	}
	if set["timeout"] {
		cfg.Session.Timeout = opts.timeout
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = strings.TrimSpace(opts.metricsAddr)
	}
	if err := config.Validate(cfg); err != nil {
		return config.Client{}, err
	}
	return cfg, nil
}

func run(opts options, set map[string]bool, stdin io.Reader, stdout io.Writer) error {
	cfg, err := resolveConfig(opts, set)
	if err != nil {
		return err
	}
	if cfg.MetricsAddr != "" {
		serveMetrics(cfg.MetricsAddr)
	}

	sentences := opts.sentences
	if len(sentences) == 0 {
		sentences, err = readSentences(stdin)
		if err != nil {
			return err
		}
	}

	client, err := session.Connect(cfg.Session)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("close session")
		}
	}()
	fmt.Fprintf(stdout, "state_id=%s\n", client.StateID())
	return submit(client, sentences, stdout)
}

// submit sends each sentence in order. Failed sentences are reported and
// skipped; any other error stops the loop.
func submit(s adder, sentences []string, out io.Writer) error {
	for _, sentence := range sentences {
		id, err := s.Add(sentence)
		var failure *session.CallFailure
		switch {
		case err == nil:
			fmt.Fprintf(out, "state_id=%s\n", id)
		case errors.As(err, &failure):
			fmt.Fprintf(out, "error: %s\n", failure.Info)
		default:
			return fmt.Errorf("add %q: %w", sentence, err)
		}
	}
	return nil
}

func readSentences(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}
	return out, nil
}

func metricsRouter(started time.Time) *gin.Engine {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(started).String(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func serveMetrics(addr string) {
	srv := &http.Server{Addr: addr, Handler: metricsRouter(time.Now()), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
}
