package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rojo-rbx/rojo-sub001/cmd"
	"github.com/rojo-rbx/rojo-sub001/pkg/middleware"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

func buildMain(command *cobra.Command, arguments []string) error {
	projectPath := "default.project.json"
	if len(arguments) > 0 {
		projectPath = arguments[0]
	}
	if len(arguments) > 1 {
		return fmt.Errorf("build accepts at most one project argument")
	}
	if buildConfiguration.output == "" {
		return fmt.Errorf("build: --output is required")
	}

	switch strings.ToLower(filepath.Ext(buildConfiguration.output)) {
	case ".rbxm", ".rbxmx", ".rbxl", ".rbxlx":
	default:
		return fmt.Errorf("build: unrecognized output extension %q (want .rbxm, .rbxmx, .rbxl, or .rbxlx)", filepath.Ext(buildConfiguration.output))
	}

	root := filepath.Dir(projectPath)
	relProject := filepath.Base(projectPath)

	backend, err := vfs.NewRealBackend(root)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	defer backend.Close()

	v := vfs.New(backend, nil)
	dispatcher := middleware.New(v, nil)
	// Model/place serialization is an external, opaque collaborator; until a
	// codec is wired in, building a binary or XML model fails with a clear,
	// explicit error rather than emitting a malformed file.

	snap, err := dispatcher.Snapshot(snapshot.Context{}, relProject)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("build: %s produced no instance", projectPath)
	}

	if dispatcher.Codec == nil {
		return fmt.Errorf("build: no model codec configured; .rbxm/.rbxmx/.rbxl/.rbxlx serialization is not implemented")
	}

	data, err := dispatcher.Codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if err := os.WriteFile(buildConfiguration.output, data, 0o644); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	fmt.Printf("Built %s (%s)\n", buildConfiguration.output, humanize.Bytes(uint64(len(data))))
	return nil
}

var buildCommand = &cobra.Command{
	Use:   "build [project]",
	Short: "Generate a model or place file from a project",
	Args:  cobra.MaximumNArgs(1),
	Run:   cmd.Mainify(buildMain),
}

var buildConfiguration struct {
	output string
}

func init() {
	flags := buildCommand.Flags()
	flags.StringVarP(&buildConfiguration.output, "output", "o", "", "Path to write the built file to")
}
