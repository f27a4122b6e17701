// Command reaper parses a Python project and reports statically dead code:
// unused imports, unused functions and classes, unreachable statements, and
// dead branches.
package main

import "github.com/taradepan/reaper/cmd"

func main() {
	cmd.Execute()
}
