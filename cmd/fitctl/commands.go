package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/2beens/fittracker/internal/fitness/records"
)

const dateLayout = "2006-01-02"

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fitctl",
		Short:         "Log and review sit-up and push-up entries",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.api, "api", defaultAPIURL(), "fittracker service base URL")
	cmd.PersistentFlags().StringVar(&opts.prefsPath, "prefs", defaultPrefsPath(), "preferences file")
	cmd.PersistentFlags().StringVarP(&opts.modality, "modality", "m", records.ModalityCount.String(), "modality [count | timed]")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newUsersCmd(opts),
		newSelectCmd(opts),
		newModalityCmd(opts),
		newEntriesCmd(opts),
		newLogCmd(opts),
		newDeleteCmd(opts),
		newStatsCmd(opts),
		newOverviewCmd(opts),
	)

	return cmd
}

func newUsersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the roster",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(_ *cobra.Command, _ []string, a *app) error {
			selectedID := ""
			if u, ok := a.roster.Selected(); ok {
				selectedID = u.ID
			}
			renderUsers(a.out, a.roster.Users(), selectedID)
			return nil
		}),
	}
}

func newSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <userID>",
		Short: "Select the active user, remembered between runs",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.roster.Select(cmd.Context(), args[0]); err != nil {
				return err
			}
			u, _ := a.roster.Selected()
			_, _ = fmt.Fprintf(a.out, "selected %s (%s)\n", u.Name, u.ID)
			renderEntries(a.out, a.roster.Modality(), a.roster.Records())
			return nil
		}),
	}
}

func newModalityCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "modality <count|timed>",
		Short:     "Show the selected user's entries of a modality",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{records.ModalityCount.String(), records.ModalityTimed.String()},
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			modality, err := records.ParseModality(args[0])
			if err != nil {
				return err
			}
			if err := a.requireSelection(); err != nil {
				return err
			}
			if err := a.roster.SetModality(cmd.Context(), modality); err != nil {
				return err
			}
			renderEntries(a.out, a.roster.Modality(), a.roster.Records())
			return nil
		}),
	}
}

func newEntriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entries",
		Short: "List the selected user's entries, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(_ *cobra.Command, _ []string, a *app) error {
			if err := a.requireSelection(); err != nil {
				return err
			}
			renderEntries(a.out, a.roster.Modality(), a.roster.Records())
			return nil
		}),
	}
}

type logOptions struct {
	situps     string
	pushups    string
	situpTime  string
	pushupTime string
	date       string
}

func newLogCmd(opts *rootOptions) *cobra.Command {
	logOpts := &logOptions{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a new entry for the selected user",
		Example: "  fitctl log --situps 30 --pushups 25\n" +
			"  fitctl log --situp-time 1:35 --pushup-time 1:20 --date 2024-03-10",
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			// timed inputs imply the timed modality
			if logOpts.situpTime != "" || logOpts.pushupTime != "" {
				if logOpts.situps != "" || logOpts.pushups != "" {
					return fmt.Errorf("use either counts or times, not both")
				}
				opts.modality = records.ModalityTimed.String()
			}
			return nil
		},
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.requireSelection(); err != nil {
				return err
			}

			switch a.roster.Modality() {
			case records.ModalityTimed:
				mins, secs := splitMinSec(logOpts.situpTime)
				a.form.SetSitupTime(mins, secs)
				mins, secs = splitMinSec(logOpts.pushupTime)
				a.form.SetPushupTime(mins, secs)
			default:
				a.form.SetSitups(logOpts.situps)
				a.form.SetPushups(logOpts.pushups)
			}

			if logOpts.date != "" {
				date, err := time.ParseInLocation(dateLayout, logOpts.date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date [%s], expected %s", logOpts.date, dateLayout)
				}
				a.form.SetDate(date)
			}

			if err := a.form.Submit(cmd.Context()); err != nil {
				return err
			}
			renderEntries(a.out, a.roster.Modality(), a.roster.Records())
			return nil
		}),
	}

	cmd.Flags().StringVar(&logOpts.situps, "situps", "", "sit-up count")
	cmd.Flags().StringVar(&logOpts.pushups, "pushups", "", "push-up count")
	cmd.Flags().StringVar(&logOpts.situpTime, "situp-time", "", "sit-up time, mm:ss")
	cmd.Flags().StringVar(&logOpts.pushupTime, "pushup-time", "", "push-up time, mm:ss")
	cmd.Flags().StringVar(&logOpts.date, "date", "", "entry date, "+dateLayout+" (default now)")

	return cmd
}

// splitMinSec splits "mm:ss"; a bare number is read as minutes.
func splitMinSec(v string) (string, string) {
	if v == "" {
		return "", ""
	}
	mins, secs, found := strings.Cut(v, ":")
	if !found {
		return mins, "0"
	}
	return mins, secs
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <entryID>",
		Short: "Delete an entry of the selected user",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.requireSelection(); err != nil {
				return err
			}

			a.form.RequestDelete(args[0])
			if !yes && !confirm(cmd.InOrStdin(), a.out, fmt.Sprintf("delete entry %s? [y/N] ", args[0])) {
				a.form.CancelDelete()
				_, _ = fmt.Fprintln(a.out, "delete cancelled")
				return nil
			}

			if err := a.form.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}
			renderEntries(a.out, a.roster.Modality(), a.roster.Records())
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")

	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the chart series and rolling totals of the selected user",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.requireSelection(); err != nil {
				return err
			}
			ref := time.Now()
			if at != "" {
				var err error
				ref, err = time.ParseInLocation(dateLayout, at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date [%s], expected %s", at, dateLayout)
				}
				ref = ref.AddDate(0, 0, 1).Add(-time.Second)
			}

			u, _ := a.roster.Selected()
			userStats, err := a.client.UserStats(cmd.Context(), u.ID, a.roster.Modality(), ref)
			if err != nil {
				return err
			}
			renderUserStats(a.out, u.Name, a.roster.Modality(), userStats)
			return nil
		}),
	}
	cmd.Flags().StringVar(&at, "at", "", "compute totals as of the end of this day, "+dateLayout)

	return cmd
}

func newOverviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show every user's totals and today's summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modality, err := records.ParseModality(opts.modality)
			if err != nil {
				return err
			}
			c := newClient(opts)
			overview, err := c.Overview(cmd.Context(), modality)
			if err != nil {
				return err
			}
			renderOverview(cmd.OutOrStdout(), overview)
			return nil
		},
	}
}
