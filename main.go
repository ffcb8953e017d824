package main

import "github.com/atikulmunna/logloom/internal/cmd"

func main() {
	cmd.Execute()
}
