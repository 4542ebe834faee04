package main

import "github.com/dotcommander/geriassess/cmd"

func main() {
	cmd.Execute()
}
