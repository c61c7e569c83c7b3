package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"worldmanager/internal/worldrun"
)

func newTrashCommand(ctx *commandContext) *cobra.Command {
	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Manage the world's _trash folder",
	}
	trashCmd.AddCommand(newTrashPurgeCommand(ctx))
	return trashCmd
}

func newTrashPurgeCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete the _trash folder permanently",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete the trash folder without --yes")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			purged, err := worldrun.PurgeTrash(cfg, true, logger)
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd, ctx.outputFormat(), map[string]bool{"purged": purged}); ok {
				return err
			}
			if purged {
				fmt.Fprintln(cmd.OutOrStdout(), "Trash folder deleted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Trash folder is already empty")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the permanent deletion")
	return cmd
}

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	restoreCmd := &cobra.Command{
		Use:   "restore",
		Short: "Undo a compress run",
	}
	restoreCmd.AddCommand(newRestoreTrashCommand(ctx))
	restoreCmd.AddCommand(newRestoreBackupsCommand(ctx))
	return restoreCmd
}

type restoreView struct {
	Restored []string     `json:"restored" yaml:"restored"`
	Skipped  []string     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Errors   []trashError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newRestoreTrashCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "Move the content of _trash back into the world folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			result, err := worldrun.RestoreTrash(cfg, logger)
			if err != nil {
				return err
			}
			view := restoreView{Restored: result.Moved, Skipped: result.Skipped}
			for _, e := range result.Errors {
				view.Errors = append(view.Errors, trashError{Path: e.Path, Error: e.Error.Error()})
			}
			if ok, err := writeStructured(cmd, ctx.outputFormat(), view); ok {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Restored %s files\n", formatCount(len(view.Restored)))
			for _, p := range view.Skipped {
				fmt.Fprintf(out, "  kept in trash, location occupied: %s\n", p)
			}
			for _, e := range view.Errors {
				fmt.Fprintf(out, "  failed: %s: %s\n", e.Path, e.Error)
			}
			return nil
		},
	}
}

func newRestoreBackupsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "Put the .bak copy of every record file back in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			restored, err := worldrun.RestoreBackups(cfg, logger)
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd, ctx.outputFormat(), restoreView{Restored: restored}); ok {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Restored %s record files\n", formatCount(len(restored)))
			for _, p := range restored {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}
}
