package main

import "github.com/nrad-K/izu-radar/cmd"

func main() {
	cmd.Execute()
}
