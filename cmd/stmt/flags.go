package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/spf13/cobra"
)

// Date layouts accepted by --from and --to.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// addScopeFlags adds --provider and --account.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "statement provider: corpx, tcr or ofx (default from config)")
	cmd.Flags().String("account", "", "account id, name or CPF/CNPJ (default: all accounts)")
}

// addCriteriaFlags adds the filter flags.
func addCriteriaFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "first day to include (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().String("to", "", "last day to include (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().String("type", "", "only credit or debit transactions")
	cmd.Flags().Float64("min", 0, "minimum amount")
	cmd.Flags().Float64("max", 0, "maximum amount")
	cmd.Flags().Float64("exact", 0, "exact amount (overrides --min/--max)")
	cmd.Flags().String("search", "", "search name, document, description or end-to-end code")
	cmd.Flags().String("search-name", "", "search counterparty name or document")
	cmd.Flags().String("search-desc", "", "search description")
}

// addViewFlags adds sort and paging flags.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("sort", "date", "sort field: date, value or none")
	cmd.Flags().String("order", "desc", "sort order: asc, desc or none")
	cmd.Flags().Int("page", 1, "page to show")
	cmd.Flags().Int("page-size", 0, "rows per page (default from config)")
}

// addFetchFlags adds --limit, --cached and --quiet.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "visible transactions to fetch (default from config)")
	cmd.Flags().Bool("cached", false, "use the local cache only, never call the provider")
	cmd.Flags().BoolP("quiet", "q", false, "hide the fetch progress bar")
}

// parseDate reads a calendar day in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or DD/MM/YYYY", s)
}

// criteriaFromFlags builds filter criteria from the flags that were set.
func criteriaFromFlags(cmd *cobra.Command, loc *time.Location) (filter.Criteria, error) {
	flags := cmd.Flags()
	c := filter.Criteria{Location: loc}

	for _, d := range []struct {
		dst  **time.Time
		name string
	}{
		{&c.From, "from"},
		{&c.To, "to"},
	} {
		if !flags.Changed(d.name) {
			continue
		}
		v, _ := flags.GetString(d.name)
		t, err := parseDate(v, loc)
		if err != nil {
			return filter.Criteria{}, common.NewUserError("--"+d.name, err)
		}
		*d.dst = &t
	}

	for _, a := range []struct {
		dst  **float64
		name string
	}{
		{&c.MinAmount, "min"},
		{&c.MaxAmount, "max"},
		{&c.ExactAmount, "exact"},
	} {
		if !flags.Changed(a.name) {
			continue
		}
		v, _ := flags.GetFloat64(a.name)
		*a.dst = &v
	}

	typ, _ := flags.GetString("type")
	parsed, err := filter.ParseTypeFilter(typ)
	if err != nil {
		return filter.Criteria{}, common.NewUserError("--type", err)
	}
	c.Type = parsed

	c.Search, _ = flags.GetString("search")
	c.SearchName, _ = flags.GetString("search-name")
	c.SearchDescription, _ = flags.GetString("search-desc")

	if err := c.Validate(); err != nil {
		return filter.Criteria{}, common.NewUserError("invalid filters", err)
	}
	return c, nil
}

// sortFromFlags reads --sort and --order.
func sortFromFlags(cmd *cobra.Command) (filter.SortField, filter.SortOrder, error) {
	by, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")

	field, err := filter.ParseSortField(by)
	if err != nil {
		return "", "", common.NewUserError("--sort", err)
	}
	o, err := filter.ParseSortOrder(order)
	if err != nil {
		return "", "", common.NewUserError("--order", err)
	}
	return field, o, nil
}
