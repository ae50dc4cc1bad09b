package httpdlog

import (
	"math"

	"github.com/basekick-labs/httpdlog/internal/confparse"
)

// SelectOptions mirrors read_httpd_log's named arguments (§6 Function 1).
type SelectOptions struct {
	FormatStr  string
	FormatType string
	ConfPath   string
	// Samples are non-empty sample lines used to validate conf-resolved
	// candidates and to drive autodetect; callers collect these from the
	// target file(s) before binding.
	Samples []string
}

// SelectResult is a resolved format plus the label it was resolved under
// ("custom", a conf nickname, "default", "inline", "common", "combined",
// or "unknown").
type SelectResult struct {
	Format          *CompiledFormat
	FormatTypeLabel string
}

// SelectFormat implements §6's format-selection precedence: format_str,
// then conf (+ optional format_type nickname), then format_type alone,
// then autodetect.
func SelectFormat(opts SelectOptions, rawMode bool) (*SelectResult, error) {
	if opts.FormatStr != "" {
		cf, err := Compile(opts.FormatStr, rawMode)
		if err != nil {
			return nil, err
		}
		label := opts.FormatType
		if label == "" {
			label = "custom"
		}
		return &SelectResult{Format: cf, FormatTypeLabel: label}, nil
	}

	if opts.ConfPath != "" {
		return selectFromConf(opts, rawMode)
	}

	if opts.FormatType != "" {
		switch opts.FormatType {
		case "common":
			cf, err := Compile(CommonFormat, rawMode)
			if err != nil {
				return nil, err
			}
			return &SelectResult{Format: cf, FormatTypeLabel: "common"}, nil
		case "combined":
			cf, err := Compile(CombinedFormat, rawMode)
			if err != nil {
				return nil, err
			}
			return &SelectResult{Format: cf, FormatTypeLabel: "combined"}, nil
		default:
			return nil, invalidFormat(opts.FormatType, "format_type %q is not a recognized built-in shortcut", opts.FormatType)
		}
	}

	res, err := Autodetect(opts.Samples)
	if err != nil {
		return nil, err
	}
	return &SelectResult{Format: res.Format, FormatTypeLabel: res.FormatName}, nil
}

type confCandidate struct {
	label  string
	format string
}

func selectFromConf(opts SelectOptions, rawMode bool) (*SelectResult, error) {
	entries, err := confparse.Parse(opts.ConfPath)
	if err != nil {
		return nil, err
	}

	var candidates []confCandidate
	if opts.FormatType != "" {
		for _, e := range entries {
			if e.LogType == "access" && e.FormatType == "named" && e.Nickname == opts.FormatType {
				candidates = append(candidates, confCandidate{label: e.Nickname, format: e.FormatString})
			}
		}
		if len(candidates) == 0 {
			return nil, invalidFormat(opts.FormatType, "no LogFormat nickname %q found in %s", opts.FormatType, opts.ConfPath)
		}
	} else {
		// default, then inline, then named — in that priority order.
		for _, kind := range []string{"default", "inline", "named"} {
			for _, e := range entries {
				if e.LogType == "access" && e.FormatType == kind {
					label := kind
					if kind == "named" {
						label = e.Nickname
					}
					candidates = append(candidates, confCandidate{label: label, format: e.FormatString})
				}
			}
		}
	}

	var nonEmpty []string
	for _, s := range opts.Samples {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	threshold := int(math.Ceil(float64(len(nonEmpty)) / 2))

	for _, c := range candidates {
		cf, err := Compile(c.format, rawMode)
		if err != nil {
			continue
		}
		matches := 0
		for _, s := range nonEmpty {
			if _, ok := Recognize(cf, s); ok {
				matches++
			}
		}
		if matches >= threshold {
			return &SelectResult{Format: cf, FormatTypeLabel: c.label}, nil
		}
	}
	return nil, invalidFormat(opts.ConfPath, "no candidate format in %s matched at least half of the sampled lines", opts.ConfPath)
}
