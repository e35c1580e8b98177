package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
	"numbering/internal/infrastructure/http/v1/dto"
)

func newGenerateCmd() *cobra.Command {
	var (
		target  string
		orgID   string
		date    string
		count   int
		file    string
		orgCode string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue the next number(s) for a target",
		Long: `Issue numbers from the effective format of --target.

With --memory the format comes from --file and counters live only for the
duration of the command, which is handy for checking a sequence:

  numctl generate --memory --file draft.yaml --count 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}

			a, mem, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if mem != nil {
				if file == "" {
					return fmt.Errorf("--memory requires --file")
				}
				draft, err := readDraftFile(file)
				if err != nil {
					return err
				}
				if draft.Scope == string(numbering.ScopeOrg) && draft.OrgID == "" {
					draft.OrgID = orgID
					if draft.OrgID == "" {
						draft.OrgID = id.New().String()
					}
				}
				if target == "" {
					target = draft.Target
				}
				in, err := draft.ToInput()
				if err != nil {
					return err
				}
				if _, err := a.Service.CreateFormat(e.ctx, in); err != nil {
					return err
				}
				if orgID == "" && draft.OrgID != "" {
					orgID = draft.OrgID
				}
			}

			req := dto.GenerateRequest{Target: target, OrgID: orgID, Date: date}
			in, err := req.ToInput()
			if err != nil {
				return err
			}
			if mem != nil && in.OrgID != nil {
				code := orgCode
				if code == "" {
					code = "ORG"
				}
				mem.Orgs.Put(*in.OrgID, code)
			}

			out := make([]*numbering.GenerateResult, 0, count)
			for range count {
				res, err := a.Service.Generate(e.ctx, in)
				if err != nil {
					return err
				}
				out = append(out, res)
			}
			if count == 1 {
				return printResult(cmd.OutOrStdout(), out[0])
			}
			return printResult(cmd.OutOrStdout(), dto.NewListResponse(out))
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "CUSTOMER_NO or MANAGEMENT_NO")
	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID")
	cmd.Flags().StringVar(&date, "date", "", "Generation date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "How many numbers to issue")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML format for --memory runs")
	cmd.Flags().StringVar(&orgCode, "org-code", "", "Organization code for --memory runs (default ORG)")
	return cmd
}
