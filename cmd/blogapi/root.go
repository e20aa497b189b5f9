package main

import (
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const envFileFlag = "env-file"

// NewRootCommand assembles the blogapi command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "blogapi",
		Short: "Blogging REST API",
		Long: `blogapi serves the blogging REST API: user signup and login, posts and
comments, backed by a relational database and a shared cache.

Configuration is read from the environment. An optional dotenv file can be
given with --env-file; variables already set in the environment win.

Examples:
  blogapi serve --env-file .env
  blogapi migrate`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

func envFileFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		envFileFlag: &cobraflags.StringFlag{
			Name:  envFileFlag,
			Value: "",
			Usage: "Path to a dotenv file with configuration values",
		},
	}
}
