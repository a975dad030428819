package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rojo-rbx/rojo-sub001/cmd"
)

const placeManifestTemplate = `{
  "name": "%s",
  "tree": {
    "$className": "DataModel",

    "ReplicatedStorage": {
      "$className": "ReplicatedStorage",
      "Shared": {
        "$path": "src/shared"
      }
    },

    "ServerScriptService": {
      "$className": "ServerScriptService",
      "Server": {
        "$path": "src/server"
      }
    },

    "StarterPlayer": {
      "$className": "StarterPlayer",
      "StarterPlayerScripts": {
        "$className": "StarterPlayerScripts",
        "Client": {
          "$path": "src/client"
        }
      }
    }
  }
}
`

const modelManifestTemplate = `{
  "name": "%s",
  "tree": {
    "$path": "src"
  }
}
`

func initMain(command *cobra.Command, arguments []string) error {
	target := "."
	if len(arguments) > 0 {
		target = arguments[0]
	}
	if len(arguments) > 1 {
		return fmt.Errorf("init accepts at most one argument")
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	name := filepath.Base(filepath.Clean(target))
	if name == "." || name == string(filepath.Separator) {
		if wd, err := os.Getwd(); err == nil {
			name = filepath.Base(wd)
		} else {
			name = "project"
		}
	}

	manifestPath := filepath.Join(target, "default.project.json")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("init: %s already exists", manifestPath)
	}

	var template, srcDir string
	switch initConfiguration.kind {
	case "place":
		template = placeManifestTemplate
		srcDir = "src"
	case "model":
		template = modelManifestTemplate
		srcDir = "src"
	default:
		return fmt.Errorf("init: unrecognized --kind %q (want \"place\" or \"model\")", initConfiguration.kind)
	}

	if err := os.WriteFile(manifestPath, []byte(fmt.Sprintf(template, name)), 0o644); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	for _, dir := range initSourceDirs(initConfiguration.kind, srcDir) {
		if err := os.MkdirAll(filepath.Join(target, dir), 0o755); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}

	fmt.Printf("Created %s\n", manifestPath)
	return nil
}

func initSourceDirs(kind, srcDir string) []string {
	if kind == "place" {
		return []string{
			filepath.Join(srcDir, "shared"),
			filepath.Join(srcDir, "server"),
			filepath.Join(srcDir, "client"),
		}
	}
	return []string{srcDir}
}

var initCommand = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new project",
	Args:  cobra.MaximumNArgs(1),
	Run:   cmd.Mainify(initMain),
}

var initConfiguration struct {
	kind string
}

func init() {
	flags := initCommand.Flags()
	flags.StringVar(&initConfiguration.kind, "kind", "place", "The kind of project to create (\"place\" or \"model\")")
}
