package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rojo-rbx/rojo-sub001/cmd"
	"github.com/rojo-rbx/rojo-sub001/cmd/profile"
	"github.com/rojo-rbx/rojo-sub001/pkg/api"
	"github.com/rojo-rbx/rojo-sub001/pkg/livesession"
	"github.com/rojo-rbx/rojo-sub001/pkg/logging"
	"github.com/rojo-rbx/rojo-sub001/pkg/middleware"
	"github.com/rojo-rbx/rojo-sub001/pkg/project"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

const defaultServePort = 34872

func serveMain(command *cobra.Command, arguments []string) error {
	projectPath := "default.project.json"
	if len(arguments) > 0 {
		projectPath = arguments[0]
	}
	if len(arguments) > 1 {
		return fmt.Errorf("serve accepts at most one project argument")
	}

	root := filepath.Dir(projectPath)
	relProject := filepath.Base(projectPath)

	raw, err := os.ReadFile(projectPath)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	proj, err := project.Parse(raw)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	port := proj.ServePort
	if serveConfiguration.port != 0 {
		port = serveConfiguration.port
	}
	if port == 0 {
		port = defaultServePort
	}

	logger := logging.RootLogger.Sublogger("serve")

	if serveConfiguration.profile != "" {
		prof, err := profile.New(serveConfiguration.profile)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer prof.Finalize()
	}

	backend, err := vfs.NewRealBackend(root)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer backend.Close()

	v := vfs.New(backend, logger)
	if err := v.Watch(""); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	dispatcher := middleware.New(v, nil)

	rootCtx := snapshot.Context{EmitLegacyScripts: proj.EmitLegacyScripts}

	session, err := livesession.New(v, dispatcher, relProject, rootCtx, logger)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session.Start(ctx)
	defer session.Stop()

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     api.AddSecurityHeaders(sessionRouter(session)),
		ReadTimeout: api.ReadTimeout,
		IdleTimeout: api.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	fmt.Printf("Rojo server listening on port %d\n", port)
	fmt.Printf("Root instance ID: %s\n", session.Tree().RootID())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, cmd.TerminationSignals...)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
	case <-interrupt:
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), api.IdleTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	return nil
}

// sessionRouter builds the HTTP surface: the handshake, an instance read
// by ID, and the long-poll subscribe endpoint.
func sessionRouter(session *livesession.Session) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/rojo", func(w http.ResponseWriter, r *http.Request) {
		session.RLockTree()
		rootID := session.Tree().RootID()
		session.RUnlockTree()

		api.SetContentTypeJSON(w)
		resp := api.NewHandshakeResponse(session.ID(), rootID, nil)
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/api/read/", func(w http.ResponseWriter, r *http.Request) {
		idsParam := strings.TrimPrefix(r.URL.Path, "/api/read/")
		if idsParam == "" {
			http.Error(w, "missing instance ids", http.StatusBadRequest)
			return
		}

		session.RLockTree()
		defer session.RUnlockTree()

		tree := session.Tree()
		instances := make(map[string]api.Instance)
		for _, raw := range strings.Split(idsParam, ",") {
			id, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid instance id %q", raw), http.StatusBadRequest)
				return
			}
			if inst, ok := tree.Get(id); ok {
				instances[id.String()] = api.NewInstance(inst)
			}
		}

		api.SetContentTypeJSON(w)
		resp := api.ReadResponse{SessionID: session.ID(), Instances: instances}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/api/subscribe/", func(w http.ResponseWriter, r *http.Request) {
		cursorParam := strings.TrimPrefix(r.URL.Path, "/api/subscribe/")
		cursor, err := strconv.ParseUint(cursorParam, 10, 32)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid cursor %q", cursorParam), http.StatusBadRequest)
			return
		}

		newCursor, messages, err := session.Queue().WaitForSince(r.Context(), uint32(cursor))
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestTimeout)
			return
		}

		session.RLockTree()
		resp := api.NewSubscribeResponse(session.ID(), session.Tree(), newCursor, messages)
		session.RUnlockTree()

		api.SetContentTypeJSON(w)
		json.NewEncoder(w).Encode(resp)
	})

	return mux
}

var serveCommand = &cobra.Command{
	Use:   "serve [project]",
	Short: "Start a live-sync server for a project",
	Args:  cobra.MaximumNArgs(1),
	Run:   cmd.Mainify(serveMain),
}

var serveConfiguration struct {
	port    int
	profile string
}

func init() {
	flags := serveCommand.Flags()
	flags.IntVar(&serveConfiguration.port, "port", 0, "Port to serve on (defaults to the project's servePort, or 34872)")
	flags.StringVar(&serveConfiguration.profile, "profile", "", "Write CPU and heap profiles with this name prefix on exit")
}
