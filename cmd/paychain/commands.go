package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systemstart/paychain/pkg/api"
	"github.com/systemstart/paychain/pkg/config"
	"github.com/systemstart/paychain/pkg/endpoints"
	"github.com/systemstart/paychain/pkg/processing"
	"github.com/systemstart/paychain/pkg/results"
)

func newSuitesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "suites",
		Short: "List the test suites found in the test suites directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			suites, err := config.DiscoverSuites(settings.TestSuitesDir)
			if err != nil {
				return &api.ConfigurationError{File: settings.TestSuitesDir, Err: err}
			}
			for _, s := range suites {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newTagsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags used by the selected tests file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			file, err := config.ResolveTestsFile(settings.TestSuitesDir, settings.Tests)
			if err != nil {
				return err
			}
			steps, err := api.LoadTestSteps(file)
			if err != nil {
				return err
			}

			names, counts := processing.Tags(steps)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, n := range names {
				fmt.Fprintf(w, "%s\t%d\n", n, counts[n])
			}
			return w.Flush()
		},
	}
}

func newCallTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call-types",
		Short: "List the supported call types with their dependency keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := endpoints.Default()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CALL TYPE\tREQUIRES\tPROVIDES\tDCC")
			for _, ct := range registry.CallTypes() {
				e, _ := registry.Lookup(ct)
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", ct, keys(e.RequiredKeys()), keys(e.ProvidedKeys()), e.SupportsDCC())
			}
			return w.Flush()
		},
	}
}

func keys(k []string) string {
	if len(k) == 0 {
		return "-"
	}
	return strings.Join(k, ",")
}

func newRunsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List the runs kept in the results database, or the records of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			if settings.Results.Database == "" {
				return &api.ConfigurationError{File: opts.settingsFile, Err: fmt.Errorf("no results database configured")}
			}
			store, err := results.OpenStore(settings.Results.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if len(args) == 1 {
				if err := printRun(w, store, args[0]); err != nil {
					return err
				}
				return w.Flush()
			}

			ids, err := store.Runs()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "RUN\tSTARTED\tSTEPS\tSUCCEEDED")
			for _, id := range ids {
				records, err := store.RunRecords(id)
				if err != nil {
					return err
				}
				succeeded := 0
				for _, r := range records {
					if r.Status == api.StepSucceeded {
						succeeded++
					}
				}
				started := "-"
				if len(records) > 0 {
					started = records[0].StartedAt.Local().Format(time.DateTime)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", id, started, len(records), succeeded)
			}
			return w.Flush()
		},
	}
}

func printRun(w io.Writer, store *results.Store, runID string) error {
	records, err := store.RunRecords(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %q not found", runID)
	}
	fmt.Fprintln(w, "CHAIN\tSTEP\tCALL TYPE\tTEST\tSTATUS\tHTTP")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\n", r.ChainID, r.StepOrder, r.CallType, r.TestID, r.Status, r.HTTPStatus)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
