package main

import "github.com/prosodylab/prosolia/cmd"

func main() {
	cmd.Execute()
}
