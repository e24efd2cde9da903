package main

import "github.com/sergev/dualmode/cmd"

func main() {
	cmd.Execute()
}
