package main

import (
	"os"

	"jmssh/backend/cli"
)

var version = "0.0.0"

func main() {
	os.Exit(cli.Execute(version))
}
