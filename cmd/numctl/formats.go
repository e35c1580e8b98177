package main

import (
	"github.com/spf13/cobra"

	"numbering/internal/infrastructure/http/v1/dto"
)

func newFormatsCmd() *cobra.Command {
	var q dto.ListFormatsQuery

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List stored format settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			filter, err := q.ToFilter()
			if err != nil {
				return err
			}

			a, _, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.Service.ListFormats(e.ctx, filter)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), dto.NewListResponse(dto.FromFormats(items)))
		},
	}

	cmd.Flags().StringVarP(&q.Target, "target", "t", "", "Filter by target")
	cmd.Flags().StringVar(&q.Scope, "scope", "", "Filter by scope (GLOBAL|ORG)")
	cmd.Flags().StringVar(&q.OrgID, "org", "", "Filter by organization ID")
	return cmd
}
