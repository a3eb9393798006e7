package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anpi-survey/backend/internal/auth"
)

var (
	tokenRole string

	tokenCmd = &cobra.Command{
		Use:   "token OPERATOR",
		Short: "Issue a bearer token for the /admin routes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours).Generate(args[0], tokenRole)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
)

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleOperator, "operator or viewer")
}
