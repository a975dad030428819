package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rojo-rbx/rojo-sub001/cmd"
	"github.com/rojo-rbx/rojo-sub001/pkg/middleware"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/sourcemap"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

func sourcemapMain(command *cobra.Command, arguments []string) error {
	projectPath := "default.project.json"
	if len(arguments) > 0 {
		projectPath = arguments[0]
	}
	if len(arguments) > 1 {
		return fmt.Errorf("sourcemap accepts at most one project argument")
	}

	root := filepath.Dir(projectPath)
	relProject := filepath.Base(projectPath)

	backend, err := vfs.NewRealBackend(root)
	if err != nil {
		return fmt.Errorf("sourcemap: %w", err)
	}
	defer backend.Close()

	v := vfs.New(backend, nil)
	dispatcher := middleware.New(v, nil)

	snap, err := dispatcher.Snapshot(snapshot.Context{}, relProject)
	if err != nil {
		return fmt.Errorf("sourcemap: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("sourcemap: %s produced no instance", projectPath)
	}

	tree, rootID, err := instantiateSnapshot(snap)
	if err != nil {
		return fmt.Errorf("sourcemap: %w", err)
	}

	node := sourcemap.Build(tree, rootID, sourcemapConfiguration.includeNonScripts)

	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return fmt.Errorf("sourcemap: %w", err)
	}
	data = append(data, '\n')

	if sourcemapConfiguration.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(sourcemapConfiguration.output, data, 0o644)
}

var sourcemapCommand = &cobra.Command{
	Use:   "sourcemap [project]",
	Short: "Generate a JSON map from instances to the files that produced them",
	Args:  cobra.MaximumNArgs(1),
	Run:   cmd.Mainify(sourcemapMain),
}

var sourcemapConfiguration struct {
	output            string
	includeNonScripts bool
}

func init() {
	flags := sourcemapCommand.Flags()
	flags.StringVarP(&sourcemapConfiguration.output, "output", "o", "", "Write the sourcemap to a file instead of standard output")
	flags.BoolVar(&sourcemapConfiguration.includeNonScripts, "include-non-scripts", false, "Include instances that aren't scripts and have no script descendants")
}
