package main

import "github.com/leorami/signal-export/internal/cli"

func main() {
	cli.Execute()
}
