package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	nexerrors "github.com/qualitasnexus/nexctl/internal/errors"
	"github.com/qualitasnexus/nexctl/internal/identity"
	"github.com/qualitasnexus/nexctl/internal/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the identity backend",
	Long: `Sign in with email, password, and tenant. Missing values are collected
interactively when a terminal is attached. The session is persisted and
reused until it expires or 'nexctl logout' clears it.`,
	RunE: run(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  run(runLogout),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  run(runStatus),
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "List the permissions granted to the current session",
	RunE:  run(runPermissions),
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prefer the interactive prompt)")
	loginCmd.Flags().String("tenant", "", "tenant to sign in to")
	permissionsCmd.Flags().Bool("reload", false, "refetch permissions from the backend")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(permissionsCmd)
}

func runLogin(cmd *cobra.Command, app *app, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	tenant, _ := cmd.Flags().GetString("tenant")
	if tenant == "" {
		tenant = app.cfg.Tenant
	}

	input := tui.LoginInput{Email: email, Password: password, Tenant: tenant}
	if email == "" || password == "" {
		if !tui.ShouldPrompt() {
			return nexerrors.New(nexerrors.ErrCodeInvalidCredentials,
				"email and password are required").
				WithSuggestion("Pass --email and --password, or run in a terminal for the interactive prompt")
		}
		var err error
		input, err = tui.RunLoginForm(input)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	pair, err := app.client.Login(ctx, identity.Credentials{
		Email:    input.Email,
		Password: input.Password,
	}, input.Tenant)
	if err != nil {
		return loginError(err)
	}

	app.store.Login(pair.AccessToken, pair.RefreshToken)

	// The fresh token travels explicitly so the fetch cannot race the
	// store write.
	permissions := app.client.LoadPermissions(ctx, pair.AccessToken)

	name := input.Email
	if user := app.store.Snapshot().User; user != nil && user.FullName != "" {
		name = user.FullName
	}
	fmt.Fprintf(app.out, "Logged in as %s (tenant %s), %d permissions granted.\n",
		name, input.Tenant, len(permissions))
	return nil
}

// loginError collapses backend rejections into one generic message so the
// console never reveals which part of the credentials was wrong.
func loginError(err error) error {
	var coded *nexerrors.NexctlError
	if errors.As(err, &coded) {
		switch coded.Code {
		case nexerrors.ErrCodeSessionExpired,
			nexerrors.ErrCodeValidationFailed,
			nexerrors.ErrCodeForbidden:
			return nexerrors.NewInvalidCredentialsError(err)
		}
	}
	return err
}

func runLogout(cmd *cobra.Command, app *app, args []string) error {
	if !app.store.Snapshot().IsAuthenticated {
		fmt.Fprintln(app.out, "Not logged in.")
		return nil
	}
	app.logout.Logout()
	fmt.Fprintln(app.out, "Logged out.")
	return nil
}

// sessionStatus is the status command's output shape
type sessionStatus struct {
	LoggedIn    bool   `json:"loggedIn" yaml:"loggedIn"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`
	Tenant      string `json:"tenant,omitempty" yaml:"tenant,omitempty"`
	Permissions int    `json:"permissions" yaml:"permissions"`
	APIURL      string `json:"apiUrl" yaml:"apiUrl"`
}

func (s sessionStatus) String() string {
	if !s.LoggedIn {
		return "Not logged in."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Logged in as %s", s.Email)
	if s.Name != "" {
		fmt.Fprintf(&b, " (%s)", s.Name)
	}
	fmt.Fprintf(&b, "\nTenant:      %s", s.Tenant)
	if s.Role != "" {
		fmt.Fprintf(&b, "\nRole:        %s", s.Role)
	}
	fmt.Fprintf(&b, "\nPermissions: %d", s.Permissions)
	fmt.Fprintf(&b, "\nBackend:     %s", s.APIURL)
	return b.String()
}

func runStatus(cmd *cobra.Command, app *app, args []string) error {
	snap := app.store.Snapshot()

	status := sessionStatus{
		LoggedIn:    snap.IsAuthenticated,
		Permissions: len(snap.Permissions),
		APIURL:      app.cfg.APIURL,
	}
	if snap.User != nil {
		status.Email = snap.User.Email
		status.Name = snap.User.FullName
		status.Role = snap.User.Role
		status.Tenant = snap.User.Tenant
	}

	return app.print(status)
}

// permissionList renders the granted permission set
type permissionList []string

func (l permissionList) TableHeaders() []string { return []string{"PERMISSION"} }

func (l permissionList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{p})
	}
	return rows
}

func runPermissions(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requireSession(); err != nil {
		return err
	}

	reload, _ := cmd.Flags().GetBool("reload")
	if reload {
		app.client.LoadPermissions(cmd.Context(), "")
	} else {
		app.ensurePermissions(cmd.Context())
	}

	return app.print(permissionList(app.store.Permissions()))
}
