package main

import "github.com/trevor-scheer/gqlscope/cmd"

func main() {
	cmd.Execute()
}
