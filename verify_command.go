package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dupfynd/backend"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var signal string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify <file> <file>...",
		Short: "Check whether a set of files still contains duplicates",
		Long: "Verify re-reads the given files, typically the members of a group from an earlier scan, " +
			"and reports the group that remains after some of them were removed or changed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := ctx.logger(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			app := ctx.newApp(cmd, log)

			group, err := app.CheckDuplicateGroup(args, backend.Signal(signal))
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Duplicates bool                    `json:"duplicates"`
					Group      *backend.DuplicateGroup `json:"group"`
				}{Duplicates: group != nil, Group: group})
			}

			out := cmd.OutOrStdout()
			if group == nil {
				fmt.Fprintln(out, "No duplicates remain")
				return nil
			}
			fmt.Fprintf(out, "%d files are still duplicates (%s)\n", len(group.Files), humanize.IBytes(uint64(max(group.TotalSize, 0))))
			rows := make([][]string, 0, len(group.Files))
			for _, f := range group.Files {
				rows = append(rows, []string{f.Path, humanize.IBytes(uint64(max(f.Size, 0)))})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{leftColumn("Path"), rightColumn("Size")}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&signal, "signal", string(backend.SignalContent), "Signal to compare by: content or metadata")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the result as JSON")
	return cmd
}
