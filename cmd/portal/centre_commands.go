package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dhriti-exe/MIS-Portal-CDAC/api"
	"github.com/dhriti-exe/MIS-Portal-CDAC/gate"
	"github.com/dhriti-exe/MIS-Portal-CDAC/internal/utils"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

const centreDashboardPath = "/centre/dashboard"

var (
	centreOnboardFile string

	sessionName  string
	sessionDesc  string
	sessionStart string
	sessionEnd   string
)

var centreCmd = &cobra.Command{
	Use:   "centre",
	Short: "Training centre profile, sessions, applications and news",
}

var centreOnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Complete the one-time centre profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, gate.RouteCenterOnboarding); err != nil {
			return err
		}
		data, err := os.ReadFile(centreOnboardFile)
		if err != nil {
			return errors.Wrap(err, "read profile file")
		}
		var create api.CenterCreate
		if err := json.Unmarshal(data, &create); err != nil {
			return errors.Wrap(err, "decode profile file")
		}
		profile, err := appClient.CreateCenterProfile(cmd.Context(), create)
		if err != nil {
			return err
		}
		successf("Centre profile created (id %d)", profile.CenterID)
		return nil
	},
}

var centreProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the centre profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, centreDashboardPath); err != nil {
			return err
		}
		profile, err := appClient.CenterProfile(cmd.Context())
		if err != nil {
			return err
		}
		renderTable([]string{"Field", "Value"}, [][]string{
			{"Name", profile.CenterName},
			{"Code", orDash(profile.CenterCode)},
			{"Address", orDash(profile.CenterAddress)},
			{"Phone", orDash(profile.CenterPhone)},
			{"Email", orDash(profile.CenterMailID)},
			{"Venue", orDash(profile.CenterVenue)},
		})
		return nil
	},
}

var centreSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List training sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, centreDashboardPath); err != nil {
			return err
		}
		sessions, err := appClient.CenterSessions(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(sessions))
		for _, s := range sessions {
			rows = append(rows, []string{
				fmt.Sprintf("%d", s.SessionID),
				s.SessionName,
				s.StartDate,
				s.EndDate,
				statusDot(s.ActiveStatus),
			})
		}
		renderTable([]string{"ID", "Name", "Starts", "Ends", "Status"}, rows)
		return nil
	},
}

var centreSessionCreateCmd = &cobra.Command{
	Use:   "create-session",
	Short: "Create a training session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, centreDashboardPath); err != nil {
			return err
		}
		created, err := appClient.CreateCenterSession(cmd.Context(), api.TrainingSessionCreate{
			SessionName: sessionName,
			SessionDesc: sessionDesc,
			StartDate:   sessionStart,
			EndDate:     sessionEnd,
		})
		if err != nil {
			return err
		}
		successf("Session %q created (id %d)", created.SessionName, created.SessionID)
		return nil
	},
}

var centreSessionUpdateCmd = &cobra.Command{
	Use:   "update-session <session-id>",
	Short: "Update a training session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, centreDashboardPath); err != nil {
			return err
		}
		sessionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Errorf("invalid session id %q", args[0])
		}
		// Only flags the user set become part of the partial update.
		var update api.TrainingSessionUpdate
		if cmd.Flags().Changed("name") {
			update.SessionName = utils.Ptr(sessionName)
		}
		if cmd.Flags().Changed("desc") {
			update.SessionDesc = utils.Ptr(sessionDesc)
		}
		if cmd.Flags().Changed("start") {
			update.StartDate = utils.Ptr(sessionStart)
		}
		if cmd.Flags().Changed("end") {
			update.EndDate = utils.Ptr(sessionEnd)
		}
		updated, err := appClient.UpdateCenterSession(cmd.Context(), sessionID, update)
		if err != nil {
			return err
		}
		successf("Session %d updated", updated.SessionID)
		return nil
	},
}

var centreSessionDeleteCmd = &cobra.Command{
	Use:   "delete-session <session-id>",
	Short: "Delete a training session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, centreDashboardPath); err != nil {
			return err
		}
		sessionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Errorf("invalid session id %q", args[0])
		}
		if err := appClient.DeleteCenterSession(cmd.Context(), sessionID); err != nil {
			return err
		}
		successf("Session %d deleted", sessionID)
		return nil
	},
}

var centreApplicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "List applications to this centre",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, centreDashboardPath); err != nil {
			return err
		}
		applications, err := appClient.CenterApplications(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(applications))
		for _, a := range applications {
			rows = append(rows, []string{
				fmt.Sprintf("%d", a.ApplicationID),
				a.ApplicantName,
				a.ApplicantEmail,
				a.SessionName,
				statusDot(a.ApplicationStatus),
				statusDot(a.PaymentStatus),
			})
		}
		renderTable([]string{"ID", "Applicant", "Email", "Session", "Status", "Payment"}, rows)
		return nil
	},
}

var centreNewsCmd = &cobra.Command{
	Use:   "news",
	Short: "List centre news",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleCentre, centreDashboardPath); err != nil {
			return err
		}
		news, err := appClient.CenterNews(cmd.Context())
		if err != nil {
			return err
		}
		renderNews(news)
		return nil
	},
}

func init() {
	centreOnboardCmd.Flags().StringVarP(&centreOnboardFile, "file", "f", "", "JSON file with the centre profile")
	_ = centreOnboardCmd.MarkFlagRequired("file")

	centreSessionCreateCmd.Flags().StringVar(&sessionName, "name", "", "session name")
	centreSessionCreateCmd.Flags().StringVar(&sessionDesc, "desc", "", "session description")
	centreSessionCreateCmd.Flags().StringVar(&sessionStart, "start", "", "start date (YYYY-MM-DD)")
	centreSessionCreateCmd.Flags().StringVar(&sessionEnd, "end", "", "end date (YYYY-MM-DD)")
	_ = centreSessionCreateCmd.MarkFlagRequired("name")
	_ = centreSessionCreateCmd.MarkFlagRequired("start")
	_ = centreSessionCreateCmd.MarkFlagRequired("end")

	centreSessionUpdateCmd.Flags().StringVar(&sessionName, "name", "", "session name")
	centreSessionUpdateCmd.Flags().StringVar(&sessionDesc, "desc", "", "session description")
	centreSessionUpdateCmd.Flags().StringVar(&sessionStart, "start", "", "start date (YYYY-MM-DD)")
	centreSessionUpdateCmd.Flags().StringVar(&sessionEnd, "end", "", "end date (YYYY-MM-DD)")

	centreCmd.AddCommand(centreOnboardCmd, centreProfileCmd, centreSessionsCmd, centreSessionCreateCmd, centreSessionUpdateCmd, centreSessionDeleteCmd, centreApplicationsCmd, centreNewsCmd)
	rootCmd.AddCommand(centreCmd)
}
