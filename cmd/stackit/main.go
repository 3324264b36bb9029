// Command stackit runs the StackIt statistics propagator: the diagnostics
// server, schema migrations, consistency checks and demo data seeding.
package main

import "github.com/chiragbiradar/StackIt-odoo/cmd/stackit/commands"

func main() {
	commands.Execute()
}
