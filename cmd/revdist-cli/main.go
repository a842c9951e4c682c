package main

import (
	"os"

	"github.com/doublezerofoundation/doublezero-solana-sub000/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
