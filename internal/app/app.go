package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/tote/internal/address"
	"github.com/five82/tote/internal/cart"
	"github.com/five82/tote/internal/config"
	"github.com/five82/tote/internal/logging"
	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/orders"
	"github.com/five82/tote/internal/prefs"
	"github.com/five82/tote/internal/shop"
	"github.com/five82/tote/internal/state"
	"github.com/five82/tote/internal/ui"
)

// Options configure the tote application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tote/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	PageSize   int    // orders per page; zero uses the configured size
}

// Env is the wired application shared by the TUI and the CLI commands.
type Env struct {
	Config     config.Config
	Log        *zap.Logger
	Client     *shop.Client
	Dispatcher *mutation.Dispatcher
	Store      *state.Store
}

// Open loads configuration and builds the logger, client, dispatcher and
// store. Callers must Close the Env.
func Open(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}
	if opts.PageSize > 0 {
		cfg.PageSize = min(opts.PageSize, config.MaxPageSize)
	}

	log, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := shop.NewClient(cfg.APIBase, cfg.Token)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("init shop client: %w", err)
	}

	return newEnv(cfg, log, client), nil
}

func newEnv(cfg config.Config, log *zap.Logger, client *shop.Client) *Env {
	disp := mutation.NewDispatcher(log)
	store := state.New(
		cart.New(client, disp),
		address.New(client, disp),
		orders.New(client, disp, cfg.PageSize),
	)
	return &Env{Config: cfg, Log: log, Client: client, Dispatcher: disp, Store: store}
}

// Close flushes the logger.
func (e *Env) Close() {
	_ = e.Log.Sync()
}

// Refresh reads the cart, addresses and the requested orders page in
// parallel and applies whatever arrived. The first failure is returned.
func (e *Env) Refresh(ctx context.Context) error {
	var (
		r       state.Refresh
		g       errgroup.Group
		started = time.Now()
	)
	req := e.Store.Orders.Request()

	g.Go(func() error {
		c, err := e.Client.FetchCart(ctx)
		if err != nil {
			return fmt.Errorf("fetch cart: %w", err)
		}
		r.Cart = &c
		return nil
	})
	g.Go(func() error {
		a, err := e.Client.FetchAddresses(ctx)
		if err != nil {
			return fmt.Errorf("fetch addresses: %w", err)
		}
		r.Addresses, r.HasAddresses = a, true
		return nil
	})
	g.Go(func() error {
		p, err := e.Client.FetchOrders(ctx, req.Page, req.Limit)
		if err != nil {
			return fmt.Errorf("fetch orders: %w", err)
		}
		r.Orders, r.OrdersFor = &p, req
		return nil
	})

	err := g.Wait()
	e.Store.Update(r, err)
	if err != nil {
		e.Log.Warn("refresh failed",
			zap.Stringer("kind", shop.KindOf(err)),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return err
	}
	e.Log.Debug("refresh ok", zap.Duration("elapsed", time.Since(started)), zap.Int("orders_page", req.Page))
	return nil
}

// Run boots the tote TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		env.Log.Warn("prefs unreadable, using defaults", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Populate the store before the first frame; failures show in the UI.
	_ = env.Refresh(ctx)
	poller := StartPoller(ctx, env, env.Log, env.Config.PollInterval)

	env.Log.Info("tote started", zap.String("api_base", env.Config.APIBase), zap.Duration("poll", env.Config.PollInterval))
	defer env.Log.Info("tote stopped")

	return ui.Run(ui.Options{
		Context:    ctx,
		Store:      env.Store,
		Dispatcher: env.Dispatcher,
		Refresher:  poller,
		Log:        env.Log,
		LogFile:    env.Config.LogFile,
		ThemeName:  userPrefs.Theme,
		View:       userPrefs.View,
		PrefsPath:  opts.PrefsPath,
	})
}
