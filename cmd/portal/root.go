// The portal command is a terminal client for the MIS training-enrollment
// portal: it logs in, keeps the session on disk, and exercises the applicant,
// centre and master-data APIs with automatic token refresh.
package main

import (
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dhriti-exe/MIS-Portal-CDAC/api"
	"github.com/dhriti-exe/MIS-Portal-CDAC/gate"
	"github.com/dhriti-exe/MIS-Portal-CDAC/internal/config"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session/filerepo"
)

var (
	cfg       config.Config
	logger    zerolog.Logger
	appStore  *session.Store
	appClient *api.Client
	appGate   *gate.Gate
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Client for the MIS training-enrollment portal",
	Long: `portal talks to the MIS training-enrollment backend as an applicant,
training centre or administrator. Credentials are kept in a session file and
expired access tokens are refreshed transparently.

Configuration comes from the environment:
  PORTAL_BASE_URL        backend base URL (default http://localhost:8000)
  PORTAL_SESSION_FILE    session blob path (default ~/.mis-portal/auth-storage.json)
  PORTAL_HTTP_TIMEOUT    transport timeout (default 30s)
  PORTAL_REFRESH_BUFFER  proactive refresh buffer (default 0, disabled)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
	Run: func(cmd *cobra.Command, args []string) {
		displayAppname(cfg.GetAppName())
		_ = cmd.Help()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func initApp() error {
	cfg = config.New()

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	repo, err := filerepo.New(cfg.GetSessionFile())
	if err != nil {
		return errors.Wrap(err, "[initApp] session file repo")
	}
	appStore, err = session.NewStore(repo, session.WithLogger(logger))
	if err != nil {
		return errors.Wrap(err, "[initApp] session store")
	}

	appClient, err = api.New(cfg.GetBaseURL(), appStore,
		api.WithTransport(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		api.WithLogger(logger),
		api.WithRefreshBuffer(cfg.GetRefreshBuffer()),
		api.WithUnauthorizedHook(func() {
			warnf("Session expired, please log in again with 'portal login'.")
		}),
	)
	if err != nil {
		return errors.Wrap(err, "[initApp] api client")
	}

	appGate, err = gate.New(appStore, appClient, gate.WithLogger(logger))
	if err != nil {
		return errors.Wrap(err, "[initApp] auth gate")
	}
	return nil
}

// requireAccess runs the auth gate for a command standing in for a protected
// view and translates redirect decisions into actionable errors.
func requireAccess(cmd *cobra.Command, requiredRole session.Role, path string) error {
	decision := appGate.Evaluate(cmd.Context(), path, requiredRole)
	switch decision.Action {
	case gate.ActionRender:
		return nil
	case gate.ActionPending:
		return errors.New("could not verify your identity, try again")
	default:
		switch decision.Target {
		case gate.RouteLogin:
			return errors.New("not logged in, run 'portal login' first")
		case gate.RouteApplicantOnboarding:
			return errors.New("applicant onboarding incomplete, run 'portal applicant onboard'")
		case gate.RouteCenterOnboarding:
			return errors.New("centre onboarding incomplete, run 'portal centre onboard'")
		default:
			return errors.New("your account role has no access to this command")
		}
	}
}
