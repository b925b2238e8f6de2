package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/timeline"
	"github.com/alexanderramin/wbs/internal/treestate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// statusListValue is a repeatable, comma-separated --status flag.
type statusListValue struct {
	statuses []domain.Status
}

var _ pflag.Value = (*statusListValue)(nil)

func (v *statusListValue) String() string {
	parts := make([]string, len(v.statuses))
	for i, s := range v.statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func (v *statusListValue) Set(raw string) error {
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		s, err := domain.ParseStatus(part)
		if err != nil {
			return err
		}
		v.statuses = append(v.statuses, s)
	}
	return nil
}

func (v *statusListValue) Type() string { return "statuses" }

// outputFormat selects how a command writes its result.
type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

var _ pflag.Value = (*outputFormat)(nil)

func (o *outputFormat) String() string { return string(*o) }

func (o *outputFormat) Set(raw string) error {
	switch f := outputFormat(strings.ToLower(raw)); f {
	case outputText, outputJSON, outputYAML:
		*o = f
		return nil
	}
	return fmt.Errorf("unknown output format %q (text, json, yaml)", raw)
}

func (o *outputFormat) Type() string { return "format" }

func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q is not structured", format)
}

// filterFlags are shared by `tree` and `preset save`.
type filterFlags struct {
	statuses statusListValue
	assignee string
	due      string
	search   string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(&f.statuses, "status", "Only show these statuses (comma-separated or repeated)")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Only show items and tasks of this assignee (id or name)")
	cmd.Flags().StringVar(&f.due, "due", "", "Due bucket: overdue, this_week, this_month, later, no_date")
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive text in name, code or description")
}

// apply overlays the flags the user set onto base.
func (f *filterFlags) apply(cmd *cobra.Command, base treestate.Filter) (treestate.Filter, error) {
	flags := cmd.Flags()
	if flags.Changed("status") {
		base.Statuses = f.statuses.statuses
	}
	if flags.Changed("assignee") {
		base.Assignee = f.assignee
	}
	if flags.Changed("due") {
		bucket, err := timeline.ParseBucket(f.due)
		if err != nil {
			return base, err
		}
		base.Bucket = bucket
	}
	if flags.Changed("search") {
		base.Search = f.search
	}
	return base, nil
}

func parseDueFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := timeline.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: %w", raw, err)
	}
	return &d, nil
}
