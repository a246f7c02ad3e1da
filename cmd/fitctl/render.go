package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/stats"
	"github.com/2beens/fittracker/internal/fitness/users"
)

const tableTimeLayout = "2006-01-02 15:04"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func renderUsers(out io.Writer, roster []users.User, selectedID string) {
	if len(roster) == 0 {
		_, _ = fmt.Fprintln(out, "no users")
		return
	}
	tw := newTable(out)
	_, _ = fmt.Fprintln(tw, "\tID\tNAME")
	for _, u := range roster {
		marker := ""
		if u.ID == selectedID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", marker, u.ID, u.Name)
	}
	_ = tw.Flush()
}

// formatValue renders a timed value as m:ss and a count as is.
func formatValue(modality records.Modality, v int) string {
	if modality == records.ModalityTimed {
		return fmt.Sprintf("%d:%02d", v/60, v%60)
	}
	return fmt.Sprintf("%d", v)
}

func renderEntries(out io.Writer, modality records.Modality, recs []records.Record) {
	if len(recs) == 0 {
		_, _ = fmt.Fprintf(out, "no %s entries\n", modality)
		return
	}
	first, second := modality.FieldNames()
	tw := newTable(out)
	_, _ = fmt.Fprintf(tw, "ID\tDATE\t%s\t%s\n", first, second)
	for _, r := range recs {
		a, b := r.Values()
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.ID,
			r.Timestamp.Local().Format(tableTimeLayout),
			formatValue(modality, a),
			formatValue(modality, b),
		)
	}
	_ = tw.Flush()
}

func renderTotals(out io.Writer, modality records.Modality, totals stats.Totals) {
	first, second := modality.FieldNames()
	tw := newTable(out)
	_, _ = fmt.Fprintln(tw, "\tLAST 7 DAYS\tPREVIOUS 7 DAYS\tCHANGE")
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%+.1f%%\n", first,
		formatValue(modality, totals.Current.First),
		formatValue(modality, totals.Previous.First),
		totals.FirstChange,
	)
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%+.1f%%\n", second,
		formatValue(modality, totals.Current.Second),
		formatValue(modality, totals.Previous.Second),
		totals.SecondChange,
	)
	_ = tw.Flush()
}

func renderUserStats(out io.Writer, userName string, modality records.Modality, userStats *stats.UserStats) {
	_, _ = fmt.Fprintf(out, "%s, %s\n\n", userName, modality)

	first, second := modality.FieldNames()
	if len(userStats.Series) == 0 {
		_, _ = fmt.Fprintln(out, "no chart data")
	} else {
		tw := newTable(out)
		_, _ = fmt.Fprintf(tw, "DATE\t%s\t%s\n", first, second)
		for _, p := range userStats.Series {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
				p.Date,
				formatValue(modality, p.First),
				formatValue(modality, p.Second),
			)
		}
		_ = tw.Flush()
	}

	_, _ = fmt.Fprintln(out)
	renderTotals(out, modality, userStats.Totals)
}

func formatBest(modality records.Modality, best *stats.Best) string {
	if best == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", formatValue(modality, best.Value), best.UserName)
}

func renderOverview(out io.Writer, overview *stats.Overview) {
	modality := overview.Modality
	first, second := modality.FieldNames()

	_, _ = fmt.Fprintf(out, "overview, %s\n\n", modality)
	tw := newTable(out)
	_, _ = fmt.Fprintf(tw, "USER\tENTRIES\t%s (7D)\t%s (7D)\tCHANGE\n", first, second)
	for _, u := range overview.Users {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%+.1f%% / %+.1f%%\n",
			u.User.Name,
			len(u.Series),
			formatValue(modality, u.Totals.Current.First),
			formatValue(modality, u.Totals.Current.Second),
			u.Totals.FirstChange,
			u.Totals.SecondChange,
		)
	}
	_ = tw.Flush()

	today := overview.Today
	_, _ = fmt.Fprintf(out, "\ntoday: %d active, %s %s total, %s %s total\n",
		today.ActiveUsers,
		formatValue(modality, today.TotalFirst), first,
		formatValue(modality, today.TotalSecond), second,
	)
	_, _ = fmt.Fprintf(out, "best %s: %s\n", first, formatBest(modality, today.BestFirst))
	_, _ = fmt.Fprintf(out, "best %s: %s\n", second, formatBest(modality, today.BestSecond))

	for _, e := range overview.Errors {
		_, _ = fmt.Fprintf(out, "[error] %s\n", e)
	}
}
