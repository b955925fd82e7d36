package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/qualitasnexus/nexctl/internal/config"
	"github.com/qualitasnexus/nexctl/internal/errors"
	"github.com/qualitasnexus/nexctl/internal/identity"
	"github.com/qualitasnexus/nexctl/internal/log"
	"github.com/qualitasnexus/nexctl/internal/session"
	"github.com/qualitasnexus/nexctl/internal/ux"
)

// app wires configuration, session state, and the backend client for one
// command invocation.
type app struct {
	cfg     *config.Config
	cmdCtx  *CommandContext
	logger  *log.Logger
	storage session.Storage
	store   *session.Store
	logout  *session.LogoutOrchestrator
	client  *identity.Client
	out     io.Writer
	errOut  io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmdCtx.APIURL != "" {
		cfg.APIURL = cmdCtx.APIURL
	}

	level := log.ParseLevel(cfg.LogLevel)
	if cmdCtx.Verbose {
		level = log.LevelDebug
	}
	logger := log.New(log.Config{
		Level:  level,
		Format: log.ParseFormat(cfg.LogFormat),
		Output: cmd.ErrOrStderr(),
	})

	storage := session.NewFileStorage(cfg.SessionPath())
	store := session.NewStore(storage, logger)
	store.Hydrate()

	errOut := cmd.ErrOrStderr()
	logout := session.NewLogoutOrchestrator(store, func() {
		fmt.Fprintln(errOut, "Session ended. Run 'nexctl login' to sign in again.")
	}, logger)

	client := identity.NewClient(cfg.APIURL, store, storage, logout,
		identity.WithLogger(logger))

	return &app{
		cfg:     cfg,
		cmdCtx:  cmdCtx,
		logger:  logger,
		storage: storage,
		store:   store,
		logout:  logout,
		client:  client,
		out:     cmd.OutOrStdout(),
		errOut:  errOut,
	}, nil
}

// print renders data with the formatter selected by --format.
func (a *app) print(data interface{}) error {
	formatter, err := ux.NewFormatter(a.cmdCtx.Format, &ux.FormatterOptions{
		Writer:  a.out,
		NoColor: a.cmdCtx.NoColor,
	})
	if err != nil {
		return err
	}
	return formatter.Format(data)
}

// requireSession fails fast when no usable session exists.
func (a *app) requireSession() error {
	guard := session.NewGuard(a.store, func() {
		fmt.Fprintln(a.errOut, "Not logged in. Run 'nexctl login' first.")
	})
	return guard.Check()
}

// ensurePermissions fetches the permission set once per process; the set
// is session state, not persisted state.
func (a *app) ensurePermissions(ctx context.Context) {
	if len(a.store.Permissions()) == 0 {
		a.client.LoadPermissions(ctx, "")
	}
}

// requirePermission enforces a permission against the loaded set. An
// empty set denies everything, which is where a failed permission fetch
// lands.
func (a *app) requirePermission(ctx context.Context, permission string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.ensurePermissions(ctx)
	if !a.store.HasPermission(permission) {
		return errors.NewPermissionDeniedError(permission)
	}
	return nil
}

// run adapts an app-aware handler to cobra's RunE, attaching recovery
// suggestions to whatever error comes back.
func run(handler func(cmd *cobra.Command, app *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return ux.EnhanceError(err)
		}
		if err := handler(cmd, app, args); err != nil {
			return ux.EnhanceError(err)
		}
		return nil
	}
}
