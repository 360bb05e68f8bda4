package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/store"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage exam reference data",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import exams from a YAML or JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		var sum catalog.ImportSummary
		err = st.InTx(cmd.Context(), func(r store.Repos) error {
			var err error
			sum, err = catalog.Import(cmd.Context(), r.CatalogRepo(), doc)
			return err
		})
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d exams, %d sections, %d questions.\n",
			sum.Exams, sum.Sections, sum.Questions)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exams and their sections",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		repo := st.CatalogRepo()
		exams, err := repo.Exams(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(exams) == 0 {
			fmt.Fprintln(out, "No exams. Import one with: kakomon catalog import FILE")
			return nil
		}
		for _, e := range exams {
			fmt.Fprintf(out, "[%d] %s\n", e.ID, e.Title)
			sections, err := repo.Sections(ctx, e.ID)
			if err != nil {
				return err
			}
			for _, s := range sections {
				qs, err := repo.SectionQuestions(ctx, s.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "    [%d] %s (%d questions)\n", s.ID, s.Title, len(qs))
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
}
