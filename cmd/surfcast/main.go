package main

import "surfcast/internal/cli"

func main() {
	cli.Execute()
}
