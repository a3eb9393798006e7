package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anpi-survey/backend/internal/app"
	"github.com/anpi-survey/backend/internal/archive"
	"github.com/anpi-survey/backend/pkg/storage"
)

var (
	urlExpires time.Duration

	archiveCmd = &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived survey results",
	}
	archiveListCmd = &cobra.Command{
		Use:   "list",
		Short: "List archive objects",
		RunE:  runArchiveList,
	}
	archiveShowCmd = &cobra.Command{
		Use:   "show DATE",
		Short: "Print the respondents archived for DATE (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveShow,
	}
	archiveURLCmd = &cobra.Command{
		Use:   "url DATE",
		Short: "Print a presigned download URL for DATE's archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveURL,
	}
)

func init() {
	archiveURLCmd.Flags().DurationVar(&urlExpires, "expires", 15*time.Minute, "URL lifetime")
	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd, archiveURLCmd)
}

// archiveBucket connects to S3 without touching Redis or the live store.
func archiveBucket(cmd *cobra.Command) (*storage.S3, error) {
	a := &app.App{Config: cfg, Logger: logger}
	return a.Archive(cmd.Context())
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	s3, err := archiveBucket(cmd)
	if err != nil {
		return err
	}
	keys, err := s3.List(cmd.Context(), cfg.AWS.ArchivePrefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	day, err := parseDate(args[0], cfg.Survey.Location())
	if err != nil {
		return err
	}
	s3, err := archiveBucket(cmd)
	if err != nil {
		return err
	}
	raw, err := s3.Get(cmd.Context(), archive.ArchiveKey(cfg.AWS.ArchivePrefix, day))
	if err != nil {
		return err
	}
	items, err := archive.Decode(raw)
	if err != nil {
		return err
	}
	for _, r := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%v\n", r.RespondentEmail, r.CreatedTime, r.Answers)
	}
	return nil
}

func runArchiveURL(cmd *cobra.Command, args []string) error {
	day, err := parseDate(args[0], cfg.Survey.Location())
	if err != nil {
		return err
	}
	s3, err := archiveBucket(cmd)
	if err != nil {
		return err
	}
	u, err := s3.PresignedDownloadURL(cmd.Context(), archive.ArchiveKey(cfg.AWS.ArchivePrefix, day), urlExpires)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), u)
	return nil
}
