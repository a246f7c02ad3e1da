package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/fittracker/internal/fitness/client"
	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/tracker"
	"github.com/2beens/fittracker/internal/logging"
)

const defaultAPI = "http://localhost:9000/"

type rootOptions struct {
	api       string
	prefsPath string
	modality  string
	timeout   time.Duration
	logLevel  string
}

// app wires the tracker controllers to the service client for one invocation.
type app struct {
	out    io.Writer
	client *client.Client
	roster *tracker.Roster
	form   *tracker.EntryForm
}

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fittracker.toml"
	}
	return filepath.Join(home, ".fittracker.toml")
}

func defaultAPIURL() string {
	if api := os.Getenv("FITTRACKER_API"); api != "" {
		return api
	}
	return defaultAPI
}

func newApp(ctx context.Context, opts *rootOptions, out io.Writer) (*app, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(logging.GetLevel(opts.logLevel))

	modality, err := records.ParseModality(opts.modality)
	if err != nil {
		return nil, err
	}

	prefsStore := tracker.NewFilePreferencesStore(opts.prefsPath)
	prefs, err := prefsStore.Load()
	if err != nil {
		// a broken prefs file only costs the remembered selection
		log.Warnf("load preferences: %s", err)
		prefs = tracker.Preferences{}
	}

	c := newClient(opts)
	notifier := cliNotifier(out)
	roster := tracker.NewRoster(c, prefs, prefsStore, notifier)
	if err := roster.SetModality(ctx, modality); err != nil {
		return nil, err
	}
	if err := roster.Load(ctx); err != nil {
		return nil, err
	}

	return &app{
		out:    out,
		client: c,
		roster: roster,
		form:   tracker.NewEntryForm(roster, c, notifier),
	}, nil
}

func newClient(opts *rootOptions) *client.Client {
	return client.New(opts.api, opts.timeout)
}

func cliNotifier(out io.Writer) tracker.Notifier {
	return tracker.NotifierFunc(func(n tracker.Notification) {
		if n.Description != "" {
			_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", n.Severity, n.Message, n.Description)
			return
		}
		_, _ = fmt.Fprintf(out, "[%s] %s\n", n.Severity, n.Message)
	})
}

func (a *app) requireSelection() error {
	if _, ok := a.roster.Selected(); ok {
		return nil
	}
	_, _ = fmt.Fprintln(a.out, "no user selected, pick one with: fitctl select <userID>")
	renderUsers(a.out, a.roster.Users(), "")
	return tracker.ErrNoUserSelected
}

// withApp builds the app for the command and runs fn with it.
func withApp(opts *rootOptions, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return fn(cmd, args, a)
	}
}
