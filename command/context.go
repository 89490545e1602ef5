package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
)

// secretFlags are never echoed back in messages.
var secretFlags = map[string]bool{
	"password": true,
}

// commandFromContext returns the command as it was given, flags first,
// with secrets left out.
func commandFromContext(c *cli.Context) string {
	cmd := c.Command.FullName()

	for _, f := range c.Command.Flags {
		flagname := f.Names()[0]
		if secretFlags[flagname] {
			continue
		}
		for _, flagvalue := range contextValue(c, flagname) {
			cmd = fmt.Sprintf("%s --%s=%v", cmd, flagname, flagvalue)
		}
	}

	if c.Args().Len() > 0 {
		cmd = fmt.Sprintf("%v %v", cmd, strings.Join(c.Args().Slice(), " "))
	}

	return cmd
}

// givenCommand returns the command name and its arguments without flags.
func givenCommand(c *cli.Context) string {
	cmd := c.App.Name
	if c.Command != nil && c.Command.Name != "" {
		cmd = c.Command.FullName()
	}
	if c.Args().Len() > 0 {
		cmd = fmt.Sprintf("%v %v", cmd, strings.Join(c.Args().Slice(), " "))
	}
	return cmd
}

// contextValue traverses context and its ancestor contexts to find
// the flag value and returns string slice.
func contextValue(c *cli.Context, flagname string) []string {
	for _, c := range c.Lineage() {
		if !c.IsSet(flagname) {
			continue
		}

		val := c.Value(flagname)
		switch val.(type) {
		case string:
			return []string{c.String(flagname)}
		case bool:
			return []string{strconv.FormatBool(c.Bool(flagname))}
		case int:
			return []string{strconv.Itoa(c.Int(flagname))}
		default:
			return []string{fmt.Sprintf("%v", val)}
		}
	}

	return nil
}
