package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anpi-survey/backend/internal/webhooks"
)

var (
	webhooksCmd = &cobra.Command{
		Use:   "webhooks",
		Short: "Manage the bot's webhook subscriptions",
	}
	webhooksReconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "Delete every webhook and register the submission and message webhooks",
		RunE:  runWebhooks(false),
	}
	webhooksDeleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Delete every webhook without registering new ones",
		RunE:  runWebhooks(true),
	}
)

func init() {
	webhooksCmd.AddCommand(webhooksReconcileCmd, webhooksDeleteCmd)
}

func runWebhooks(deleteOnly bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		targets := webhooks.Targets{
			SubmissionURL: cfg.Server.SubmissionTargetURL(),
			MessageURL:    cfg.Server.MessageTargetURL(),
		}
		subs, err := webhookManager().Reconcile(cmd.Context(), targets, deleteOnly)
		if err != nil {
			return err
		}
		if deleteOnly {
			fmt.Fprintln(cmd.OutOrStdout(), "all webhooks deleted")
			return nil
		}
		for _, s := range subs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/%s\t%s\n", s.ID, s.Resource, s.Event, s.TargetURL)
		}
		return nil
	}
}
