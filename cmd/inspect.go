package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shem-sql/shem/internal/config"
	"github.com/shem-sql/shem/internal/parser"
	"github.com/shem-sql/shem/internal/schema"
)

var inspectSchemaDir string

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print a summary of the parsed declarative Schema Model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectSchemaDir, "schema-dir", "", "Declarative schema directory (defaults to shem.toml/shem.yaml); ignored when a file argument is given")
}

func runInspect(cmd *cobra.Command, args []string) error {
	var model *schema.Schema

	if len(args) == 1 {
		data, err := readFileOrStdin(args[0])
		if err != nil {
			return err
		}
		p := parser.New("public")
		if err := p.Parse(data); err != nil {
			return err
		}
		model = p.Result()
	} else {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		model, err = parser.LoadDir(firstNonEmpty(inspectSchemaDir, cfg.SchemaDir), "public")
		if err != nil {
			return err
		}
	}

	counts := make(map[schema.Kind]int)
	ids := make([]schema.Identity, 0, len(model.Objects))
	for id := range model.Objects {
		counts[id.Kind]++
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	for _, id := range ids {
		fmt.Println(id.String())
	}
	fmt.Println()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("%s: %d\n", k, counts[schema.Kind(k)])
	}
	return nil
}
