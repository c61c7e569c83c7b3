package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"worldmanager/internal/ledger"
)

type runView struct {
	ID         string     `json:"id" yaml:"id"`
	World      string     `json:"world" yaml:"world"`
	Status     string     `json:"status" yaml:"status"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Passes     []passView `json:"passes,omitempty" yaml:"passes,omitempty"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
}

type actionView struct {
	Pass   string `json:"pass" yaml:"pass"`
	Kind   string `json:"kind" yaml:"kind"`
	From   string `json:"from" yaml:"from"`
	To     string `json:"to,omitempty" yaml:"to,omitempty"`
	Refs   int    `json:"refs" yaml:"refs"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func newRunView(run ledger.Run) runView {
	view := runView{
		ID:        run.ID,
		World:     run.World,
		Status:    string(run.Status),
		StartedAt: run.StartedAt,
		Error:     run.Error,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	if run.Summary != nil {
		for _, p := range run.Summary.Passes {
			view.Passes = append(view.Passes, newPassView(p))
		}
	}
	return view
}

func openLedger(ctx *commandContext) (*ledger.Ledger, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	led, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return led, nil
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous compress runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer led.Close()

			runs, err := led.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			views := make([]runView, 0, len(runs))
			for _, run := range runs {
				views = append(views, newRunView(run))
			}
			if ok, err := writeStructured(cmd, ctx.outputFormat(), views); ok {
				return err
			}
			renderRuns(cmd.OutOrStdout(), views)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func renderRuns(out io.Writer, runs []runView) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			r.ID,
			r.World,
			r.Status,
			humanize.Time(r.StartedAt),
			duration,
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		textCol("ID"), textCol("World"), textCol("Status"), textCol("Started"), numCol("Duration"),
	}, rows))
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the repair actions of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer led.Close()

			run, err := led.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			records, err := led.Actions(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			actions := make([]actionView, 0, len(records))
			for _, rec := range records {
				actions = append(actions, actionView{
					Pass:   rec.Pass,
					Kind:   rec.Kind,
					From:   rec.From,
					To:     rec.To,
					Refs:   rec.Refs,
					Detail: rec.Detail,
				})
			}

			payload := struct {
				Run     runView      `json:"run" yaml:"run"`
				Actions []actionView `json:"actions" yaml:"actions"`
			}{newRunView(*run), actions}
			if ok, err := writeStructured(cmd, ctx.outputFormat(), payload); ok {
				return err
			}

			out := cmd.OutOrStdout()
			renderRuns(out, []runView{payload.Run})
			if payload.Run.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", payload.Run.Error)
			}
			if len(actions) == 0 {
				fmt.Fprintln(out, "No actions recorded")
				return nil
			}
			rows := make([][]string, 0, len(actions))
			for _, a := range actions {
				rows = append(rows, []string{a.Pass, a.Kind, a.From, a.To, strconv.Itoa(a.Refs), a.Detail})
			}
			fmt.Fprintln(out, renderTable([]column{
				textCol("Pass"), textCol("Action"), textCol("From"), textCol("To"), numCol("Refs"), textCol("Detail"),
			}, rows))
			return nil
		},
	}
}
