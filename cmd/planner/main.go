package main

import "taskPlanner/internal/cli"

// задаётся при сборке через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.Execute(version)
}
