// Package app wires the console's components into one explicitly
// constructed container: session storage, transport, resource services,
// and the collection stores every command renders from. Nothing here is a
// process-wide singleton; commands build an App, run, and stop it.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/audit"
	"github.com/tgoo/authadm/pkg/collection"
	"github.com/tgoo/authadm/pkg/config"
	"github.com/tgoo/authadm/pkg/export"
	"github.com/tgoo/authadm/pkg/service"
	"github.com/tgoo/authadm/pkg/session"
	"github.com/tgoo/authadm/pkg/transport"
)

// App is the application container.
type App struct {
	log logrus.FieldLogger
	cfg *config.Config

	SessionStorage *session.FileStorage
	Session        *session.Store
	Transport      *transport.Client
	Auth           *service.AuthService
	PlatformSvc    *service.PlatformService
	UserSvc        *service.UserService
	Platforms      *collection.PlatformStore
	Users          *collection.UserStore

	// Audit is nil when the audit trail is disabled.
	Audit audit.Store
}

// New constructs the container. The notifier and redirector come from the
// caller so the surface (CLI, tests) decides how global transport events
// reach the user.
func New(
	log logrus.FieldLogger,
	cfg *config.Config,
	notifier transport.Notifier,
	redirector transport.LoginRedirector,
) *App {
	a := &App{
		log: log.WithField("component", "app"),
		cfg: cfg,
	}

	a.SessionStorage = session.NewFileStorage(log, cfg.SessionPath())

	a.Transport = transport.NewClient(
		log, &cfg.API, a.SessionStorage, notifier, redirector,
	)

	a.Auth = service.NewAuthService(a.Transport, cfg.API.PlatformCode)
	a.PlatformSvc = service.NewPlatformService(a.Transport)
	a.UserSvc = service.NewUserService(a.Transport)

	a.Session = session.NewStore(log, a.Auth, a.SessionStorage)

	// The transport clears durable storage on 401; the in-memory session
	// must follow so the two never disagree.
	a.Transport.OnUnauthorized(a.Session.Reset)

	a.Platforms = collection.NewPlatformStore(log, a.PlatformSvc)
	a.Users = collection.NewUserStore(log, a.UserSvc)

	if cfg.Audit != nil && cfg.Audit.Enabled {
		a.Audit = audit.NewStore(log, cfg.Audit)
	}

	return a
}

// Start brings up components that hold external resources.
func (a *App) Start(ctx context.Context) error {
	if a.Audit != nil {
		if err := a.Audit.Start(ctx); err != nil {
			return fmt.Errorf("starting audit store: %w", err)
		}
	}

	return nil
}

// Stop tears the container down.
func (a *App) Stop() error {
	if a.Audit != nil {
		if err := a.Audit.Stop(); err != nil {
			return fmt.Errorf("stopping audit store: %w", err)
		}
	}

	return nil
}

// Config returns the configuration the container was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// NewExporter builds a report exporter over the resource services.
func (a *App) NewExporter() *export.Exporter {
	return export.NewExporter(
		a.log, a.PlatformSvc, a.UserSvc, a.cfg.Export.Dir,
	)
}

// RecordAudit appends an entry to the audit trail when enabled. Failures
// are logged, not propagated; auditing never blocks the admin action that
// already succeeded.
func (a *App) RecordAudit(ctx context.Context, action, resource, resourceID, detail string) {
	if a.Audit == nil {
		return
	}

	actor := ""
	if u := a.Session.User(); u != nil {
		actor = u.Email
	}

	entry := &audit.Entry{
		Actor:      actor,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     detail,
	}

	if err := a.Audit.Record(ctx, entry); err != nil {
		a.log.WithError(err).Warn("Failed to record audit entry")
	}
}
