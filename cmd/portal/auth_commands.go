package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
	"github.com/dhriti-exe/MIS-Portal-CDAC/token"
)

var (
	loginEmail    string
	loginPassword string

	signupEmail    string
	signupPassword string
	signupRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := appClient.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		if identity != nil {
			successf("Logged in as %s (%s)", identity.Email, identity.Role)
		} else {
			successf("Logged in, identity will be verified on first use")
		}
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := appClient.Signup(cmd.Context(), signupEmail, signupPassword, session.Role(signupRole))
		if err != nil {
			return err
		}
		if identity != nil {
			successf("Account created for %s (%s)", identity.Email, identity.Role)
		} else {
			successf("Account created")
		}
		switch session.Role(signupRole) {
		case session.RoleApplicant:
			infof("Next: complete onboarding with 'portal applicant onboard'")
		case session.RoleCentre:
			infof("Next: complete onboarding with 'portal centre onboard'")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appClient.Logout(); err != nil {
			return err
		}
		successf("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		state := appStore.State()
		if !state.Authenticated() {
			return errors.New("not logged in")
		}

		if state.Identity == nil {
			// Token without cached identity, e.g. restored from an old
			// session file. Verify it the way the gate would.
			identity, err := appClient.Me(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "verify identity")
			}
			identity.IsActive = true
			if err := appStore.SetAuth(identity, state.AccessToken, state.RefreshToken); err != nil {
				return err
			}
			state = appStore.State()
		}

		identity := state.Identity
		rows := [][]string{
			{"Email", identity.Email},
			{"Role", string(identity.Role)},
		}
		switch identity.Role {
		case session.RoleApplicant:
			rows = append(rows, []string{"Onboarded", onboardedLabel(identity.ApplicantID)})
		case session.RoleCentre:
			rows = append(rows, []string{"Onboarded", onboardedLabel(identity.CenterID)})
		}
		if expiry, err := token.Expiry(state.AccessToken); err == nil {
			rows = append(rows, []string{"Token expires", expiry.Local().Format(time.RFC1123)})
		}
		renderTable([]string{"Field", "Value"}, rows)
		return nil
	},
}

func onboardedLabel(linkageID *int64) string {
	if linkageID == nil {
		return "no"
	}
	return "yes"
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVar(&signupEmail, "email", "", "account email")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "account password")
	signupCmd.Flags().StringVar(&signupRole, "role", "", "account role: applicant, centre or admin")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")
	_ = signupCmd.MarkFlagRequired("role")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}
