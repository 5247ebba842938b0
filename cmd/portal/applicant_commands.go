package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dhriti-exe/MIS-Portal-CDAC/api"
	"github.com/dhriti-exe/MIS-Portal-CDAC/gate"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

// applicantDashboardPath is the navigation path applicant commands stand in
// for when the gate evaluates them.
const applicantDashboardPath = "/applicant/dashboard"

var applicantOnboardFile string

var applicantCmd = &cobra.Command{
	Use:   "applicant",
	Short: "Applicant profile, applications, enrollments and news",
}

var applicantOnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Complete the one-time applicant profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleApplicant, gate.RouteApplicantOnboarding); err != nil {
			return err
		}
		data, err := os.ReadFile(applicantOnboardFile)
		if err != nil {
			return errors.Wrap(err, "read profile file")
		}
		var create api.ApplicantCreate
		if err := json.Unmarshal(data, &create); err != nil {
			return errors.Wrap(err, "decode profile file")
		}
		profile, err := appClient.CreateApplicantProfile(cmd.Context(), create)
		if err != nil {
			return err
		}
		successf("Applicant profile created (id %d)", profile.ApplicantID)
		return nil
	},
}

var applicantProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the applicant profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleApplicant, applicantDashboardPath); err != nil {
			return err
		}
		profile, err := appClient.ApplicantProfile(cmd.Context())
		if err != nil {
			return err
		}
		renderTable([]string{"Field", "Value"}, [][]string{
			{"Name", fmt.Sprintf("%s %s %s", profile.FirstName, profile.MiddleName, profile.LastName)},
			{"Father's name", profile.FatherName},
			{"Gender", profile.Gender},
			{"Date of birth", profile.DOB},
			{"Address", profile.Address},
			{"PIN code", fmt.Sprintf("%d", profile.PinCode)},
			{"Email", profile.EmailID},
			{"Mobile", profile.MobileNo},
			{"Status", statusDot(profile.ActiveStatus)},
		})
		return nil
	},
}

var applicantApplicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "List training applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleApplicant, applicantDashboardPath); err != nil {
			return err
		}
		applications, err := appClient.ApplicantApplications(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(applications))
		for _, a := range applications {
			rows = append(rows, []string{
				fmt.Sprintf("%d", a.ApplicationID),
				a.EnrollmentTitle,
				a.CenterName,
				a.SessionName,
				statusDot(a.ApplicationStatus),
				statusDot(a.PaymentStatus),
				orDash(a.RegID),
			})
		}
		renderTable([]string{"ID", "Enrollment", "Centre", "Session", "Status", "Payment", "Reg ID"}, rows)
		return nil
	},
}

var applicantEnrollmentsCmd = &cobra.Command{
	Use:   "enrollments",
	Short: "List open enrollments",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleApplicant, applicantDashboardPath); err != nil {
			return err
		}
		enrollments, err := appClient.ApplicantEnrollments(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(enrollments))
		for _, e := range enrollments {
			rows = append(rows, []string{
				fmt.Sprintf("%d", e.EnrollID),
				e.EnrollTitle,
				e.CenterName,
				e.SessionName,
				e.EnrollStartDate,
				e.EnrollEndDate,
			})
		}
		renderTable([]string{"ID", "Title", "Centre", "Session", "Starts", "Ends"}, rows)
		return nil
	},
}

var applicantNewsCmd = &cobra.Command{
	Use:   "news",
	Short: "List applicant news",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, session.RoleApplicant, applicantDashboardPath); err != nil {
			return err
		}
		news, err := appClient.ApplicantNews(cmd.Context())
		if err != nil {
			return err
		}
		renderNews(news)
		return nil
	},
}

func renderNews(news []api.NewsItem) {
	rows := make([][]string, 0, len(news))
	for _, n := range news {
		rows = append(rows, []string{
			fmt.Sprintf("%d", n.NewsID),
			n.NewsTitle,
			n.CategoryName,
			n.StartDatetime,
			statusDot(n.Status),
		})
	}
	renderTable([]string{"ID", "Title", "Category", "Published", "Status"}, rows)
}

func init() {
	applicantOnboardCmd.Flags().StringVarP(&applicantOnboardFile, "file", "f", "", "JSON file with the applicant profile")
	_ = applicantOnboardCmd.MarkFlagRequired("file")

	applicantCmd.AddCommand(applicantOnboardCmd, applicantProfileCmd, applicantApplicationsCmd, applicantEnrollmentsCmd, applicantNewsCmd)
	rootCmd.AddCommand(applicantCmd)
}
