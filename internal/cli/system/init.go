package system

import (
	"fmt"

	"github.com/julianstephens/daybook/internal/cli"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Provider().Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized daybook storage at: %s\n", ctx.Store.Provider().GetConfigPath())
	return nil
}
