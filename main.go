package main

import "github.com/phillip/evently-go/cmd"

func main() {
	cmd.Execute()
}
