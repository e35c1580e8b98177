package main

import (
	"github.com/spf13/cobra"

	"numbering/internal/infrastructure/http/v1/dto"
)

func newPreviewCmd() *cobra.Command {
	var (
		file     string
		formatID string
		date     string
		orgID    string
		orgCode  string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a sample number without allocating",
		Long: `Render a sample from a stored format (--id) or a YAML draft (--file).
Serial parts show their first value; no counter is touched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}

			req := dto.PreviewRequest{
				FormatID: formatID,
				Sample:   &dto.SampleRequest{Date: date, OrgID: orgID},
			}
			if file != "" {
				draft, err := readDraftFile(file)
				if err != nil {
					return err
				}
				req.Format = previewDraft(draft)
			}
			in, err := req.ToInput()
			if err != nil {
				return err
			}

			a, mem, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if mem != nil && in.OrgID != nil && orgCode != "" {
				mem.Orgs.Put(*in.OrgID, orgCode)
			}

			res, err := a.Service.Preview(e.ctx, in)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML draft to preview")
	cmd.Flags().StringVar(&formatID, "id", "", "Stored format ID to preview")
	cmd.Flags().StringVar(&date, "date", "", "Sample date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&orgID, "org", "", "Sample organization ID")
	cmd.Flags().StringVar(&orgCode, "org-code", "", "Organization code for --memory previews")
	cmd.MarkFlagsMutuallyExclusive("file", "id")
	cmd.MarkFlagsOneRequired("file", "id")
	return cmd
}
