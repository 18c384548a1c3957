package main

import "github.com/onionrsv/console-session/cmd/console/cmd"

func main() {
	cmd.Execute()
}
