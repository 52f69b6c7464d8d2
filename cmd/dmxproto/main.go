package main

import "github.com/jptrs93/dmxproto/internal/cmd"

func main() {
	cmd.Execute()
}
