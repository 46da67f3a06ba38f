package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/dsprenkels/maruska/internal/client"
	"github.com/dsprenkels/maruska/internal/comet"
	"github.com/dsprenkels/maruska/internal/config"
	"github.com/dsprenkels/maruska/internal/logging"
	"github.com/dsprenkels/maruska/internal/prefs"
	"github.com/dsprenkels/maruska/internal/state"
	"github.com/dsprenkels/maruska/internal/ui"
)

const retryBase = time.Second

// Options configure a maruska run. Non-empty fields override the config file.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses prefs.DefaultPath
	Host        string
	LogLevel    string
	LogFile     string
	MetricsAddr string
	Username    string
	Headless    bool
	Version     string
}

// Run connects to the queue server and drives the UI, or the headless
// follower, until ctx is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logOut, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Close() }()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: logOut})
	log := logging.WithComponent("app")
	log.Info().Str("version", opts.Version).Str("host", cfg.Host).Msg("starting")

	userPrefs := opts.loadPrefs()

	store := &state.Store{}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger("supervisor")}).MustHook()

	channel, err := comet.New(cfg.Host,
		comet.WithUserAgent(userAgent(opts.Version)),
		comet.WithRequestTimeout(cfg.RequestTimeout),
		comet.WithRetry(cfg.RetryAttempts, retryBase),
		comet.WithPollRate(cfg.PollRate),
		comet.WithMetrics(comet.NewMetrics(reg)),
		comet.WithHealth(store),
		comet.WithEventHook(hook),
		comet.WithLogger(logging.WithComponent("comet")),
	)
	if err != nil {
		return fmt.Errorf("init comet channel: %w", err)
	}
	defer func() { _ = channel.Close() }()

	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.RequestTimeout)
	err = channel.Connect(connectCtx)
	cancelConnect()
	if err != nil {
		return err
	}

	svcCtx, stop := context.WithCancel(ctx)
	defer stop()
	root := suture.New("maruska", suture.Spec{EventHook: hook})
	root.Add(channel)
	if cfg.MetricsAddr != "" {
		root.Add(newMetricsServer(cfg.MetricsAddr, reg))
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}
	supervised := root.ServeBackground(svcCtx)

	cl := client.New(channel, logging.WithComponent("client"))
	if err := cl.FollowAll(); err != nil {
		return err
	}
	if userPrefs.CanLogin() {
		log.Info().Str("username", userPrefs.Username).Msg("logging in with stored access key")
		if err := cl.LoginAccessKey(userPrefs.Username, userPrefs.AccessKey); err != nil {
			return err
		}
	}

	if opts.Headless {
		err = Follow(svcCtx, channel, cl, logging.WithComponent("follow"))
	} else {
		err = ui.Run(svcCtx, ui.Options{
			Client:     cl,
			Source:     channel,
			Store:      store,
			Host:       cfg.Host,
			BufferSize: cfg.BufferSize,
			Prefs:      userPrefs,
			PrefsPath:  opts.PrefsPath,
			Version:    opts.Version,
		})
	}

	stop()
	if serr := <-supervised; serr != nil && !errors.Is(serr, context.Canceled) {
		log.Warn().Err(serr).Msg("supervisor stopped")
	}
	log.Info().Msg("stopped")
	return err
}

func (o Options) apply(cfg *config.Config) {
	if v := strings.TrimSpace(o.Host); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(o.LogFile); v != "" {
		cfg.Log.File = v
	}
	if v := strings.TrimSpace(o.MetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}
}

// loadPrefs reads stored preferences. A username given on the command line
// replaces the stored one, and the stored access key only applies to the
// user it was issued to.
func (o Options) loadPrefs() prefs.Prefs {
	p := prefs.Load(o.PrefsPath)
	if u := strings.TrimSpace(o.Username); u != "" && u != p.Username {
		p.Username = u
		p.AccessKey = ""
	}
	return p
}

func userAgent(version string) string {
	if version == "" {
		return "maruska"
	}
	return "maruska/" + version
}
