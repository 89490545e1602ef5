package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/peak/remotecp/version"
)

var versionHelpTemplate = `Name:
	{{.HelpName}} - {{.Usage}}

Usage:
	{{.HelpName}}

Examples:
	1. Check the current version of remotecp
		 > remotecp {{.HelpName}}
`

func NewVersionCommand() *cli.Command {
	return &cli.Command{
		Name:               "version",
		HelpName:           "version",
		Usage:              "print version",
		CustomHelpTemplate: versionHelpTemplate,
		Action: func(c *cli.Context) error {
			fmt.Println(version.GetHumanVersion())
			return nil
		},
	}
}
