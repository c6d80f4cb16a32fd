package main

import "github.com/unframe/unframe/cmd"

func main() {
	cmd.Execute()
}
