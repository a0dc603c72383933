package main

import "github.com/timvw/agent-studio/cmd"

func main() {
	cmd.Execute()
}
