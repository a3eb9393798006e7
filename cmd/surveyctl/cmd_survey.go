package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anpi-survey/backend/internal/notify"
	"github.com/anpi-survey/backend/pkg/queue"
)

var (
	rotateDate string
	useQueue   bool
	statusOrg  string
	rotateCmd  = &cobra.Command{
		Use:   "rotate",
		Short: "Archive the live responses to the bucket and purge them",
		RunE:  runRotate,
	}
	broadcastCmd = &cobra.Command{
		Use:   "broadcast",
		Short: "Send the survey card to every organization user",
		RunE:  runBroadcast,
	}
	resendCmd = &cobra.Command{
		Use:   "resend EMAIL",
		Short: "Send the survey card to one organization user",
		Args:  cobra.ExactArgs(1),
		RunE:  runResend,
	}
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print each organization's pending and anomaly digest",
		RunE:  runStatus,
	}
)

func init() {
	rotateCmd.Flags().StringVar(&rotateDate, "date", "", "archive date YYYY-MM-DD (default today)")
	broadcastCmd.Flags().BoolVar(&useQueue, "queue", false, "enqueue a daily_cycle job instead of sending now")
	resendCmd.Flags().BoolVar(&useQueue, "queue", false, "enqueue a resend job instead of sending now")
	statusCmd.Flags().StringVar(&statusOrg, "org", "", "only this organization")
}

func runRotate(cmd *cobra.Command, args []string) error {
	asOf, err := parseDate(rotateDate, cfg.Survey.Location())
	if err != nil {
		return err
	}
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rotator, err := a.Rotator(cmd.Context())
	if err != nil {
		return err
	}
	res, err := rotator.Rotate(cmd.Context(), asOf)
	if err != nil {
		return err
	}
	if res.Archived == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no survey response data")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "archived %d responses to s3://%s/%s\n", res.Archived, cfg.AWS.ArchiveBucket, res.Key)
	return nil
}

func runBroadcast(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if useQueue {
		id, err := a.Queue.Enqueue(cmd.Context(), queue.JobTypeDailyCycle, queue.SchedulePayload{At: time.Now()})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "queued", id)
		return nil
	}
	results, err := a.Sender.Broadcast(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	printResults(cmd, results)
	return nil
}

func runResend(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if useQueue {
		id, err := a.Queue.Enqueue(cmd.Context(), queue.JobTypeResend, queue.ResendPayload{Email: args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "queued", id)
		return nil
	}
	res, err := a.Sender.Resend(cmd.Context(), args[0], time.Now())
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("%s does not belong to any organization", args[0])
	}
	printResults(cmd, []notify.Result{*res})
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	orgs, err := a.Roster.LoadOrganizations()
	if err != nil {
		return err
	}
	snapshot, err := a.Store.Scan(cmd.Context())
	if err != nil {
		return err
	}
	for _, org := range orgs {
		if statusOrg != "" && org.Name != statusOrg {
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.Aggregator.CheckDigest(cmd.Context(), org, snapshot))
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func printResults(cmd *cobra.Command, results []notify.Result) {
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(cmd.OutOrStdout(), "sent\t%s\n", r.Recipient)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "failed\t%s\t%v\n", r.Recipient, r.Err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d sent, %d failed\n", len(notify.Succeeded(results)), len(notify.Failed(results)))
}
