// Package main is the entry point for the readalong application.
package main

import (
	"github.com/readalong-cli/readalong/cmd"
	"github.com/readalong-cli/readalong/config"
	"github.com/readalong-cli/readalong/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
