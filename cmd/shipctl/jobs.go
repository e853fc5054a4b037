package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/shiprec/internal/core"
)

func newJobsCmd(sess *session) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recorded import and export runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := sess.service("").History(cmd.Context(), page, size)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPARAMETERS\tSTARTED\tDURATION\tERROR")
			for _, h := range history {
				duration := "running"
				if h.End != nil {
					duration = h.End.Sub(h.Start).Round(time.Millisecond).String()
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					h.ID, h.Name, h.Parameters, h.Start.Format(time.DateTime), duration, h.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Rows per page")
	return cmd
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the importable kinds in dependency order",
		Args:  cobra.NoArgs,
		// no store needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range core.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %2d columns\n", k.Key, len(k.Columns))
			}
			return nil
		},
	}
}
