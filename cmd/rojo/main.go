// Command rojo is the live-sync engine's command-line entry point: init,
// serve, build, sourcemap, and upload.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rojo-rbx/rojo-sub001/cmd"
	"github.com/rojo-rbx/rojo-sub001/pkg/rojo"
)

func rootMain(command *cobra.Command, arguments []string) {
	if rootConfiguration.version {
		fmt.Println(rojo.Version)
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "rojo",
	Short: "Rojo syncs Roblox instances with a filesystem project",
	Run:   rootMain,
}

var rootConfiguration struct {
	help    bool
	version bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		initCommand,
		serveCommand,
		buildCommand,
		sourcemapCommand,
		uploadCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		cmd.Fatal(err)
	}
	os.Exit(0)
}
