package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Master-data commands only need an authenticated session, not a specific
// role, so they pass an empty required role to the gate.
const masterDataPath = "/master"

var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Reference data: states, districts, colleges, castes, qualifications, streams",
}

var masterStatesCmd = &cobra.Command{
	Use:   "states",
	Short: "List states",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, "", masterDataPath); err != nil {
			return err
		}
		states, err := appClient.States(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(states))
		for _, s := range states {
			rows = append(rows, []string{fmt.Sprintf("%d", s.StateID), s.StateName, s.StateCode})
		}
		renderTable([]string{"ID", "Name", "Code"}, rows)
		return nil
	},
}

var masterDistrictsCmd = &cobra.Command{
	Use:   "districts <state-id>",
	Short: "List the districts of a state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, "", masterDataPath); err != nil {
			return err
		}
		stateID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Errorf("invalid state id %q", args[0])
		}
		districts, err := appClient.Districts(cmd.Context(), stateID)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(districts))
		for _, d := range districts {
			rows = append(rows, []string{fmt.Sprintf("%d", d.DistrictID), d.DistrictName, d.DistrictCode})
		}
		renderTable([]string{"ID", "Name", "Code"}, rows)
		return nil
	},
}

var masterCollegesCmd = &cobra.Command{
	Use:   "colleges <state-id>",
	Short: "List the colleges of a state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, "", masterDataPath); err != nil {
			return err
		}
		stateID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Errorf("invalid state id %q", args[0])
		}
		colleges, err := appClient.Colleges(cmd.Context(), stateID)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(colleges))
		for _, c := range colleges {
			rows = append(rows, []string{fmt.Sprintf("%d", c.CollegeID), c.CollegeName})
		}
		renderTable([]string{"ID", "Name"}, rows)
		return nil
	},
}

var masterCastesCmd = &cobra.Command{
	Use:   "castes",
	Short: "List caste categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, "", masterDataPath); err != nil {
			return err
		}
		castes, err := appClient.Castes(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(castes))
		for _, c := range castes {
			rows = append(rows, []string{fmt.Sprintf("%d", c.CasteID), c.CasteName})
		}
		renderTable([]string{"ID", "Name"}, rows)
		return nil
	},
}

var masterQualificationsCmd = &cobra.Command{
	Use:   "qualifications",
	Short: "List qualifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, "", masterDataPath); err != nil {
			return err
		}
		qualifications, err := appClient.Qualifications(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(qualifications))
		for _, q := range qualifications {
			rows = append(rows, []string{fmt.Sprintf("%d", q.QualificationID), q.QualificationName})
		}
		renderTable([]string{"ID", "Name"}, rows)
		return nil
	},
}

var masterStreamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(cmd, "", masterDataPath); err != nil {
			return err
		}
		streams, err := appClient.Streams(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(streams))
		for _, s := range streams {
			rows = append(rows, []string{fmt.Sprintf("%d", s.StreamID), s.StreamName})
		}
		renderTable([]string{"ID", "Name"}, rows)
		return nil
	},
}

func init() {
	masterCmd.AddCommand(masterStatesCmd, masterDistrictsCmd, masterCollegesCmd, masterCastesCmd, masterQualificationsCmd, masterStreamsCmd)
	rootCmd.AddCommand(masterCmd)
}
