package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/service/manage"
)

var (
	// database overrides the SQLite file from the configuration.
	database string

	// addFlags collects the add subcommand flags.
	addFlags struct {
		clock           string
		moment          string
		in              time.Duration
		days            string
		offset          int
		temporary       bool
		recurrent       bool
		disabled        bool
		fade            []string
		recommendations []string
	}

	// listFlags collects the list subcommand flags.
	listFlags listFlagValues

	// editFlags collects the edit subcommand flags.
	editFlags editFlagValues

	// clearDisabledOnly restricts clear to disabled alarms.
	clearDisabledOnly bool

	// undoSkip clears a pending skip instead of setting it.
	undoSkip bool

	// alarmCmd groups the alarm store subcommands.
	alarmCmd = &cobra.Command{
		Use:   "alarm",
		Short: "Create, list and adjust alarms.",
	}
)

// listFlagValues are the list filters as given on the command line.
type listFlagValues struct {
	// day is a weekday name or number.
	day string
	// moment is an exact moment name.
	moment string
	// hour matches fixed-time alarms.
	hour int
	// exactTime selects fixed-time or moment alarms.
	exactTime bool
	// recurrent selects by recurrence.
	recurrent bool
	// temporary selects by the temporary flag.
	temporary bool
	// enabledOnly drops disabled alarms.
	enabledOnly bool
}

// bindListFlags registers the list filters on fs.
func bindListFlags(fs *pflag.FlagSet, v *listFlagValues) {
	fs.StringVar(&v.day, "day", "", "only alarms on this weekday")
	fs.StringVar(&v.moment, "moment", "", "only alarms bound to this moment")
	fs.IntVar(&v.hour, "hour", 0, "only fixed-time alarms at this hour")
	fs.BoolVar(&v.exactTime, "exact-time", false, "only fixed-time alarms, or only moment alarms when false")
	fs.BoolVar(&v.recurrent, "recurrent", false, "only recurrent alarms, or only one-shot alarms when false")
	fs.BoolVar(&v.temporary, "temporary", false, "only temporary alarms, or only kept alarms when false")
	fs.BoolVar(&v.enabledOnly, "enabled", false, "only enabled alarms")
}

// listFilter turns the flags that were given into a filter.
func listFilter(fs *pflag.FlagSet, v *listFlagValues) (manage.Filter, error) {
	filter := manage.Filter{
		Moment:      v.moment,
		EnabledOnly: v.enabledOnly,
	}

	if v.day != "" {
		day, err := alarm.ParseWeekday(v.day)
		if err != nil {
			return manage.Filter{}, err
		}

		filter.Day = &day
	}

	if fs.Changed("hour") {
		filter.Hour = &v.hour
	}

	if fs.Changed("exact-time") {
		filter.ExactTime = &v.exactTime
	}

	if fs.Changed("recurrent") {
		filter.Recurrent = &v.recurrent
	}

	if fs.Changed("temporary") {
		filter.Temporary = &v.temporary
	}

	return filter, nil
}

// editFlagValues are the edit changes as given on the command line.
type editFlagValues struct {
	// clock is a new HH:MM time.
	clock string
	// moment is a new moment name.
	moment string
	// days is a new weekday list.
	days string
	// recurrent overrides recurrence.
	recurrent bool
	// enabled switches scheduling.
	enabled bool
	// temporary sets the temporary flag.
	temporary bool
	// fade are key=value fade arguments.
	fade []string
	// eraseFade drops stored fade arguments first.
	eraseFade bool
	// recommendations are key=value recommendation arguments.
	recommendations []string
	// eraseRecommendations drops stored recommendation arguments first.
	eraseRecommendations bool
}

// bindEditFlags registers the edit changes on fs.
func bindEditFlags(fs *pflag.FlagSet, v *editFlagValues) {
	fs.StringVar(&v.clock, "at", "", "new clock time, HH:MM; drops the moment")
	fs.StringVar(&v.moment, "moment", "", "new astronomical moment")
	fs.StringVar(&v.days, "days", "", "new comma separated weekdays")
	fs.BoolVar(&v.recurrent, "recurrent", false, "re-arm after firing, default follows --days")
	fs.BoolVar(&v.enabled, "enabled", false, "schedule the alarm")
	fs.BoolVar(&v.temporary, "temporary", false, "delete the alarm after it fires")
	fs.StringArrayVar(&v.fade, "fade", nil, "fade argument key=value merged over the stored ones, repeatable")
	fs.BoolVar(&v.eraseFade, "erase-fade", false, "drop stored fade arguments")
	fs.StringArrayVar(&v.recommendations, "rec", nil, "recommendation argument key=value merged over the stored ones, repeatable")
	fs.BoolVar(&v.eraseRecommendations, "erase-rec", false, "drop stored recommendation arguments")
}

// modifyRequest turns the flags that were given into a modify request.
func modifyRequest(fs *pflag.FlagSet, v *editFlagValues) (*manage.ModifyRequest, error) {
	fade, err := manage.ParseArgs(v.fade)
	if err != nil {
		return nil, fmt.Errorf("fade: %w", err)
	}

	recommendations, err := manage.ParseArgs(v.recommendations)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	req := &manage.ModifyRequest{
		FadeArgs:             fade,
		EraseFade:            v.eraseFade,
		RecommendationArgs:   recommendations,
		EraseRecommendations: v.eraseRecommendations,
	}

	if fs.Changed("at") {
		req.Clock = &v.clock
	}

	if fs.Changed("moment") {
		req.Moment = &v.moment
	}

	if fs.Changed("days") {
		req.Days = &v.days
	}

	if fs.Changed("recurrent") {
		req.Recurrent = &v.recurrent
	}

	if fs.Changed("enabled") {
		req.Enabled = &v.enabled
	}

	if fs.Changed("temporary") {
		req.Temporary = &v.temporary
	}

	return req, nil
}

// withManager opens the store for the duration of fn.
func withManager(fn func(ctx context.Context, m *manage.Manager) error) error {
	ctx, stop := signalContext()
	defer stop()

	ctx = logger.WithName(ctx, "gradual-alarm")

	m, closeStore, err := manage.Open(ctx, &manage.Options{
		ConfigPath: configPath,
		Database:   database,
	})
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close alarm storage", "error", closeErr)
		}
	}()

	return fn(ctx, m)
}

// printAlarm writes a one-line summary of a.
func printAlarm(w io.Writer, verb string, a *alarm.Alarm) {
	_, _ = fmt.Fprintf(w, "%s %s: %s on %s [%s]\n", verb, a.ID, manage.When(a), a.Days, manage.Flags(a))
}

// editCommand builds a subcommand that changes one alarm.
func editCommand(
	use, short string,
	args cobra.PositionalArgs,
	edit func(ctx context.Context, m *manage.Manager, args []string) (*alarm.Alarm, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(ctx context.Context, m *manage.Manager) error {
				a, err := edit(ctx, m, args)
				if err != nil {
					return err
				}

				printAlarm(cmd.OutOrStdout(), "updated", a)

				return nil
			})
		},
	}
}

// minutesArg parses the minutes positional argument.
func minutesArg(raw string) (int, error) {
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse minutes %q: %w", raw, err)
	}

	return minutes, nil
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an alarm at a clock time, a moment or after a delay.",
	Long: `Creates an alarm. Exactly one of --at, --moment and --in is required.

Without --days the alarm lands on the next matching day: today when the time
is still ahead, tomorrow otherwise. Alarms on more than one day recur unless
--recurrent=false is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fade, err := manage.ParseArgs(addFlags.fade)
		if err != nil {
			return fmt.Errorf("fade: %w", err)
		}

		recommendations, err := manage.ParseArgs(addFlags.recommendations)
		if err != nil {
			return fmt.Errorf("recommendations: %w", err)
		}

		req := &manage.AddRequest{
			Clock:              addFlags.clock,
			Moment:             addFlags.moment,
			In:                 addFlags.in,
			Days:               addFlags.days,
			Temporary:          addFlags.temporary,
			Disabled:           addFlags.disabled,
			OffsetMinutes:      addFlags.offset,
			FadeArgs:           fade,
			RecommendationArgs: recommendations,
		}

		if cmd.Flags().Changed("recurrent") {
			req.Recurrent = &addFlags.recurrent
		}

		return withManager(func(ctx context.Context, m *manage.Manager) error {
			a, err := m.Add(ctx, req)
			if err != nil {
				return err
			}

			printAlarm(cmd.OutOrStdout(), "created", a)

			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List alarms with their next occurrence.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := listFilter(cmd.Flags(), &listFlags)
		if err != nil {
			return err
		}

		return withManager(func(ctx context.Context, m *manage.Manager) error {
			entries, err := m.List(ctx, filter)
			if err != nil {
				return err
			}

			return manage.WriteTable(cmd.OutOrStdout(), entries, m.Now())
		})
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an alarm.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(func(ctx context.Context, m *manage.Manager) error {
			a, err := m.Remove(ctx, args[0])
			if err != nil {
				return err
			}

			printAlarm(cmd.OutOrStdout(), "removed", a)

			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the timing, days, flags or arguments of an alarm.",
	Long: `Changes only the fields whose flags are given. A new --days list resets
recurrence to "more than one day" unless --recurrent is given too. Fade and
recommendation arguments merge over the stored ones; --erase-fade and
--erase-rec start from an empty set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := modifyRequest(cmd.Flags(), &editFlags)
		if err != nil {
			return err
		}

		return withManager(func(ctx context.Context, m *manage.Manager) error {
			a, err := m.Modify(ctx, args[0], req)
			if err != nil {
				return err
			}

			printAlarm(cmd.OutOrStdout(), "updated", a)

			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every alarm, or only the disabled ones.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withManager(func(ctx context.Context, m *manage.Manager) error {
			removed, err := m.Clear(ctx, clearDisabledOnly)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d alarm(s)\n", removed)

			return nil
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	alarmCmd.PersistentFlags().StringVarP(&database, "database", "d", "", "path to the alarm database, overrides settings")

	addCmd.Flags().StringVar(&addFlags.clock, "at", "", "clock time, HH:MM")
	addCmd.Flags().StringVar(&addFlags.moment, "moment", "", "astronomical moment, e.g. sunrise or golden_hour_end")
	addCmd.Flags().DurationVar(&addFlags.in, "in", 0, "fire once after this delay, e.g. 25m")
	addCmd.Flags().StringVar(&addFlags.days, "days", "", "comma separated weekdays, names or 0..6 from Monday")
	addCmd.Flags().IntVar(&addFlags.offset, "offset", 0, "shift the first occurrence by minutes")
	addCmd.Flags().BoolVar(&addFlags.temporary, "temporary", false, "delete the alarm after it fires")
	addCmd.Flags().BoolVar(&addFlags.recurrent, "recurrent", false, "re-arm after firing, default: more than one day")
	addCmd.Flags().BoolVar(&addFlags.disabled, "disabled", false, "store the alarm without scheduling it")
	addCmd.Flags().StringArrayVar(&addFlags.fade, "fade", nil, "fade argument key=value, repeatable")
	addCmd.Flags().StringArrayVar(&addFlags.recommendations, "rec", nil, "recommendation argument key=value, repeatable")

	bindListFlags(listCmd.Flags(), &listFlags)
	bindEditFlags(editCmd.Flags(), &editFlags)
	clearCmd.Flags().BoolVar(&clearDisabledOnly, "disabled", false, "only delete disabled alarms")

	skipCmd := editCommand("skip <id>", "Suppress the next playback once.", cobra.ExactArgs(1),
		func(ctx context.Context, m *manage.Manager, args []string) (*alarm.Alarm, error) {
			return m.Skip(ctx, args[0], !undoSkip)
		})
	skipCmd.Flags().BoolVar(&undoSkip, "undo", false, "clear a pending skip")

	alarmCmd.AddCommand(
		addCmd,
		listCmd,
		editCmd,
		clearCmd,
		removeCmd,
		skipCmd,
		editCommand("snooze <id> <minutes>", "Delay the next occurrence.", cobra.ExactArgs(2),
			func(ctx context.Context, m *manage.Manager, args []string) (*alarm.Alarm, error) {
				minutes, err := minutesArg(args[1])
				if err != nil {
					return nil, err
				}

				return m.Snooze(ctx, args[0], minutes)
			}),
		editCommand("offset <id> <minutes>", "Shift the next occurrence, use -- before negative minutes.", cobra.ExactArgs(2),
			func(ctx context.Context, m *manage.Manager, args []string) (*alarm.Alarm, error) {
				minutes, err := minutesArg(args[1])
				if err != nil {
					return nil, err
				}

				return m.Offset(ctx, args[0], minutes)
			}),
		editCommand("enable <id>", "Schedule the alarm again.", cobra.ExactArgs(1),
			func(ctx context.Context, m *manage.Manager, args []string) (*alarm.Alarm, error) {
				return m.SetEnabled(ctx, args[0], true)
			}),
		editCommand("disable <id>", "Stop scheduling the alarm.", cobra.ExactArgs(1),
			func(ctx context.Context, m *manage.Manager, args []string) (*alarm.Alarm, error) {
				return m.SetEnabled(ctx, args[0], false)
			}),
	)

	rootCmd.AddCommand(alarmCmd)
}
