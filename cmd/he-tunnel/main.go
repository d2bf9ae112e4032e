package main

import (
	"os"

	"github.com/zlobste/he-tunnel/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
