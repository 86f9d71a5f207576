package manage

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/gradual/internal/domain/alarm"
)

// WriteTable renders entries as an aligned table with relative next times.
func WriteTable(w io.Writer, entries []Entry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "ID\tWHEN\tDAYS\tFLAGS\tNEXT")

	for _, entry := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			entry.Alarm.ID.String()[:8],
			When(entry.Alarm),
			entry.Alarm.Days,
			Flags(entry.Alarm),
			formatNext(entry, now))
	}

	return tw.Flush()
}

// When renders the moment name or the fixed clock time.
func When(a *alarm.Alarm) string {
	if a.Moment != "" {
		return a.Moment
	}

	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// Flags renders the alarm switches and pending adjustments.
func Flags(a *alarm.Alarm) string {
	flags := make([]string, 0, 6)

	if !a.Enabled {
		flags = append(flags, "disabled")
	}

	if a.Recurrent {
		flags = append(flags, "recurrent")
	}

	if a.Temporary {
		flags = append(flags, "temporary")
	}

	if a.Skip {
		flags = append(flags, "skip")
	}

	if a.SnoozeMinutes != 0 {
		flags = append(flags, fmt.Sprintf("snooze%+dm", a.SnoozeMinutes))
	}

	if a.OffsetMinutes != 0 {
		flags = append(flags, fmt.Sprintf("offset%+dm", a.OffsetMinutes))
	}

	if len(flags) == 0 {
		return "-"
	}

	return strings.Join(flags, ",")
}

func formatNext(entry Entry, now time.Time) string {
	if entry.NextErr != nil {
		return "unknown: " + entry.NextErr.Error()
	}

	if !entry.Alarm.Enabled {
		return "-"
	}

	return fmt.Sprintf("%s (%s)",
		entry.Next.Format("Mon 2006-01-02 15:04"),
		humanize.RelTime(entry.Next, now, "ago", "from now"))
}
