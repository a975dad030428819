package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rojo-rbx/rojo-sub001/cmd"
	"github.com/rojo-rbx/rojo-sub001/pkg/middleware"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

const uploadURL = "https://data.roblox.com/Data/Upload.ashx"

func uploadMain(command *cobra.Command, arguments []string) error {
	projectPath := "default.project.json"
	if len(arguments) > 0 {
		projectPath = arguments[0]
	}
	if len(arguments) > 1 {
		return fmt.Errorf("upload accepts at most one project argument")
	}
	if uploadConfiguration.assetID == 0 {
		return fmt.Errorf("upload: --asset-id is required")
	}

	cookie := uploadConfiguration.cookie
	if cookie == "" {
		cookie = os.Getenv("ROBLOSECURITY")
	}
	if cookie == "" {
		return fmt.Errorf("upload: could not find a Roblox auth cookie; pass one via --cookie or $ROBLOSECURITY")
	}

	root := filepath.Dir(projectPath)
	relProject := filepath.Base(projectPath)

	backend, err := vfs.NewRealBackend(root)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer backend.Close()

	v := vfs.New(backend, nil)
	dispatcher := middleware.New(v, nil)

	snap, err := dispatcher.Snapshot(snapshot.Context{}, relProject)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("upload: %s produced no instance", projectPath)
	}
	if dispatcher.Codec == nil {
		return fmt.Errorf("upload: no model codec configured; place serialization is not implemented")
	}

	body, err := dispatcher.Codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s?assetid=%d", uploadURL, uploadConfiguration.assetID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Cookie", ".ROBLOSECURITY="+cookie)
	req.Header.Set("User-Agent", "Roblox/WinInet")
	req.Header.Set("Requester", "Client")
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload: roblox api error: %s", message)
	}

	fmt.Printf("Uploaded to asset %d\n", uploadConfiguration.assetID)
	return nil
}

var uploadCommand = &cobra.Command{
	Use:   "upload [project]",
	Short: "Upload a project directly to Roblox as an existing asset",
	Args:  cobra.MaximumNArgs(1),
	Run:   cmd.Mainify(uploadMain),
}

var uploadConfiguration struct {
	assetID uint64
	cookie  string
}

func init() {
	flags := uploadCommand.Flags()
	flags.Uint64Var(&uploadConfiguration.assetID, "asset-id", 0, "Asset ID to upload to")
	flags.StringVar(&uploadConfiguration.cookie, "cookie", "", "Roblox auth cookie (.ROBLOSECURITY); defaults to $ROBLOSECURITY")
}
