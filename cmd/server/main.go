package main

import "github.com/eventforge/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
