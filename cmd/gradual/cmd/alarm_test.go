package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/gradual/internal/domain/alarm"
)

// TestModifyRequest sets only the fields whose flags were given.
func TestModifyRequest(t *testing.T) {
	t.Parallel()

	var values editFlagValues

	fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	bindEditFlags(fs, &values)

	require.NoError(t, fs.Parse([]string{
		"--moment", "sunrise_end",
		"--days", "sat,sun",
		"--enabled=false",
		"--fade", "curve=linear",
		"--erase-rec",
	}))

	req, err := modifyRequest(fs, &values)
	require.NoError(t, err)

	require.Nil(t, req.Clock)
	require.Equal(t, "sunrise_end", *req.Moment)
	require.Equal(t, "sat,sun", *req.Days)
	require.Nil(t, req.Recurrent)
	require.False(t, *req.Enabled)
	require.Nil(t, req.Temporary)
	require.Equal(t, alarm.Args{"curve": "linear"}, req.FadeArgs)
	require.False(t, req.EraseFade)
	require.True(t, req.EraseRecommendations)
}

// TestModifyRequest_BadArgs rejects malformed key=value arguments.
func TestModifyRequest_BadArgs(t *testing.T) {
	t.Parallel()

	var values editFlagValues

	fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	bindEditFlags(fs, &values)

	require.NoError(t, fs.Parse([]string{"--rec", "novalue"}))

	_, err := modifyRequest(fs, &values)
	require.Error(t, err)
}

// TestListFilter maps explicit false values to filters and skips absent flags.
func TestListFilter(t *testing.T) {
	t.Parallel()

	var values listFlagValues

	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	bindListFlags(fs, &values)

	require.NoError(t, fs.Parse([]string{"--day", "fri", "--hour", "0", "--recurrent=false"}))

	filter, err := listFilter(fs, &values)
	require.NoError(t, err)
	require.Equal(t, alarm.Friday, *filter.Day)
	require.Equal(t, 0, *filter.Hour)
	require.False(t, *filter.Recurrent)
	require.Nil(t, filter.ExactTime)
	require.Nil(t, filter.Temporary)
	require.False(t, filter.EnabledOnly)

	var bad listFlagValues

	fs = pflag.NewFlagSet("list", pflag.ContinueOnError)
	bindListFlags(fs, &bad)

	require.NoError(t, fs.Parse([]string{"--day", "someday"}))

	_, err = listFilter(fs, &bad)
	require.Error(t, err)
}
