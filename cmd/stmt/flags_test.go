package main

import (
	"testing"
	"time"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addCriteriaFlags(cmd)
	addViewFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	for _, in := range []string{"2025-03-10", "10/03/2025", " 2025-03-10 "} {
		got, err := parseDate(in, loc)
		require.NoError(t, err, in)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), got)
	}

	_, err = parseDate("03/31/2025", loc)
	assert.Error(t, err)
	_, err = parseDate("yesterday", loc)
	assert.Error(t, err)
}

func TestCriteriaFromFlags(t *testing.T) {
	cmd := newFlagCmd(t,
		"--from", "2025-03-01", "--to", "31/03/2025",
		"--type", "credit", "--min", "0", "--max", "500",
		"--search", "pix", "--search-name", "acme", "--search-desc", "aluguel",
	)

	c, err := criteriaFromFlags(cmd, time.UTC)
	require.NoError(t, err)

	require.NotNil(t, c.From)
	require.NotNil(t, c.To)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *c.From)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), *c.To)
	assert.Equal(t, filter.TypeCredit, c.Type)
	require.NotNil(t, c.MinAmount, "an explicit zero minimum is still set")
	assert.InDelta(t, 0.0, *c.MinAmount, 0.0001)
	require.NotNil(t, c.MaxAmount)
	assert.InDelta(t, 500.0, *c.MaxAmount, 0.0001)
	assert.Nil(t, c.ExactAmount)
	assert.Equal(t, "pix", c.Search)
	assert.Equal(t, "acme", c.SearchName)
	assert.Equal(t, "aluguel", c.SearchDescription)
	assert.Equal(t, time.UTC, c.Location)
}

func TestCriteriaFromFlags_Unset(t *testing.T) {
	c, err := criteriaFromFlags(newFlagCmd(t), time.UTC)
	require.NoError(t, err)
	assert.Nil(t, c.From)
	assert.Nil(t, c.To)
	assert.Nil(t, c.MinAmount)
	assert.Nil(t, c.MaxAmount)
	assert.Equal(t, filter.TypeAny, c.Type)
}

func TestCriteriaFromFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad date", []string{"--from", "March"}},
		{"bad type", []string{"--type", "refund"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := criteriaFromFlags(newFlagCmd(t, tt.args...), time.UTC)
			require.Error(t, err)
			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
}

func TestSortFromFlags(t *testing.T) {
	by, order, err := sortFromFlags(newFlagCmd(t))
	require.NoError(t, err)
	assert.Equal(t, filter.SortDate, by)
	assert.Equal(t, filter.OrderDesc, order)

	by, order, err = sortFromFlags(newFlagCmd(t, "--sort", "value", "--order", "asc"))
	require.NoError(t, err)
	assert.Equal(t, filter.SortValue, by)
	assert.Equal(t, filter.OrderAsc, order)

	_, _, err = sortFromFlags(newFlagCmd(t, "--sort", "name"))
	assert.Error(t, err)
}
