package main

import "github.com/phillip/donation-hub-go/cmd"

func main() {
	cmd.Execute()
}
