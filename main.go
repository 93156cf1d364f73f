// Command shem manages PostgreSQL schemas declaratively: introspect a live
// database, diff it against a directory of SQL files, and apply the result
// as an ordered, versioned migration.
package main

import "github.com/shem-sql/shem/cmd"

func main() {
	cmd.Execute()
}
