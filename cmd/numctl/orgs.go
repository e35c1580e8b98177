package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"numbering/internal/core/id"
	"numbering/internal/infrastructure/storage/postgres/numbering_repo"
)

// orgEntry is one row of an organization import file:
//
//	- code: TKY
//	  name: Tokyo branch
//	- id: 0190c7a4-...
//	  code: OSK
//	  name: Osaka branch
type orgEntry struct {
	ID   string `yaml:"id"`
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

func newOrgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Manage the organization catalog used by ORG_CODE parts",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-load organizations from a YAML list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if useMemory {
				return fmt.Errorf("orgs import needs PostgreSQL; drop --memory")
			}
			orgs, err := readOrgs(file)
			if err != nil {
				return err
			}

			e, err := setup(cmd)
			if err != nil {
				return err
			}
			a, _, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Organizations.Import(e.ctx, orgs)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), map[string]int64{"imported": n})
		},
	}
	importCmd.Flags().StringVarP(&file, "file", "f", "", "YAML list of organizations")
	_ = importCmd.MarkFlagRequired("file")

	cmd.AddCommand(importCmd)
	return cmd
}

func readOrgs(path string) ([]numbering_repo.Organization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []orgEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}

	orgs := make([]numbering_repo.Organization, 0, len(entries))
	for i, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("organizations[%d]: code is required", i)
		}
		org := numbering_repo.Organization{Code: e.Code, Name: e.Name}
		if e.ID != "" {
			if org.ID, err = id.Parse(e.ID); err != nil {
				return nil, fmt.Errorf("organizations[%d]: invalid id %q", i, e.ID)
			}
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}
