package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shem-sql/shem/internal/config"
	"github.com/shem-sql/shem/internal/parser"
)

var validateSchemaDir string

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Parse declarative SQL and check Schema Model invariants, without touching any database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateSchemaDir, "schema-dir", "", "Declarative schema directory (defaults to shem.toml/shem.yaml); ignored when a file argument is given")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		data, err := readFileOrStdin(args[0])
		if err != nil {
			return err
		}
		p := parser.New("public")
		if err := p.Parse(data); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if _, err := parser.LoadDir(firstNonEmpty(validateSchemaDir, cfg.SchemaDir), "public"); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
