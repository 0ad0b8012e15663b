package main

import "github.com/flier/gopq/cmd/pqdriver/cmd"

func main() {
	cmd.Execute()
}
