package main

import "shorts/internal/cli"

func main() {
	cli.Execute()
}
