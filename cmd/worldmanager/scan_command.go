package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"worldmanager/internal/worldrun"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Report broken references, duplicates and unused images without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			report, err := worldrun.Scan(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd, ctx.outputFormat(), report); ok {
				return err
			}
			renderScan(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func renderScan(out io.Writer, report *worldrun.Report) {
	fmt.Fprintln(out, renderTable(
		[]column{textCol("World"), numCol("Files"), numCol("Documents"), numCol("References"), numCol("Not webp")},
		[][]string{{
			report.World,
			formatCount(report.Files),
			formatCount(report.Documents),
			formatCount(report.References),
			formatCount(report.NotNormalized),
		}},
	))

	fmt.Fprintf(out, "\nBroken references: %s (%s images)\n", formatCount(len(report.Broken)), formatCount(report.BrokenImages))
	if len(report.Broken) > 0 {
		rows := make([][]string, 0, len(report.Broken))
		for _, b := range report.Broken {
			rows = append(rows, []string{b.Path, b.File, strconv.Itoa(b.Line), b.Address})
		}
		fmt.Fprintln(out, renderTable([]column{textCol("Path"), textCol("File"), numCol("Line"), textCol("Address")}, rows))
	}

	fmt.Fprintf(out, "\nDuplicate sets: %s\n", formatCount(len(report.Duplicates)))
	for _, d := range report.Duplicates {
		fmt.Fprintf(out, "  %s\n", d.Hash)
		for i, p := range d.Paths {
			marker := " "
			if i == 0 {
				marker = "*"
			}
			fmt.Fprintf(out, "    %s %s\n", marker, p)
		}
	}

	fmt.Fprintf(out, "\nWrong extensions: %s\n", formatCount(len(report.WrongExtensions)))
	for _, e := range report.WrongExtensions {
		fmt.Fprintf(out, "  %s (%s)\n", e.Path, e.Encoding)
	}

	fmt.Fprintf(out, "\nUnused images: %s\n", formatCount(len(report.Unused)))
	for _, p := range report.Unused {
		fmt.Fprintf(out, "  %s\n", p)
	}
}
