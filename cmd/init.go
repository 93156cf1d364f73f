package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a new shem project",
	Long: `Create a shem.toml, a schema/ directory for declarative SQL files, and a
migrations/ directory, under dir (default: the current directory).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing shem.toml")
}

const defaultConfigTemplate = `[database]
url = "postgresql://localhost:5432/postgres?sslmode=disable"

[declarative]
enabled = true
schema_paths = ["./schema/*.sql"]
shadow_port = 5432

[migration]
dir = "migrations"
table = "_shem_migrations"
`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	configPath := filepath.Join(dir, "shem.toml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists; pass --force to overwrite", configPath)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0o644); err != nil {
		return err
	}

	for _, sub := range []string{"schema", "migrations"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}

	seedPath := filepath.Join(dir, "schema", "01_schema.sql")
	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		if err := os.WriteFile(seedPath, []byte("-- declarative schema goes here\n"), 0o644); err != nil {
			return err
		}
	}

	fmt.Printf("initialized shem project in %s\n", dir)
	fmt.Printf("  %s\n  schema/\n  migrations/\n", configPath)
	return nil
}
