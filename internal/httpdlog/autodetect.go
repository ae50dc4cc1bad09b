package httpdlog

import "math"

// maxAutodetectSamples bounds how many lines Autodetect reads before
// deciding, per §4.6.
const maxAutodetectSamples = 10

// AutodetectResult reports which built-in format, if any, a scan should
// use when none was configured explicitly.
type AutodetectResult struct {
	FormatName string // "combined", "common", or "unknown"
	Format     *CompiledFormat
	RawMode    bool // forced true when FormatName is "unknown"
}

// Autodetect implements §4.6: try "combined" then "common" against up to
// maxAutodetectSamples lines, accepting the first one where at least half
// (rounded up) of the samples recognize. Falls back to raw mode with no
// schema beyond the metadata columns when neither fits, including when
// there are no samples at all.
func Autodetect(samples []string) (*AutodetectResult, error) {
	if len(samples) > maxAutodetectSamples {
		samples = samples[:maxAutodetectSamples]
	}
	threshold := int(math.Ceil(float64(len(samples)) / 2))
	if threshold < 1 {
		threshold = 1
	}

	candidates := []string{CombinedFormat, CommonFormat}
	names := []string{"combined", "common"}
	for i, format := range candidates {
		cf, err := Compile(format, false)
		if err != nil {
			return nil, err
		}
		matches := 0
		for _, line := range samples {
			if _, ok := Recognize(cf, line); ok {
				matches++
			}
		}
		if matches >= threshold {
			return &AutodetectResult{FormatName: names[i], Format: cf, RawMode: false}, nil
		}
	}

	unknownCf, err := Compile("", true)
	if err != nil {
		return nil, err
	}
	return &AutodetectResult{FormatName: "unknown", Format: unknownCf, RawMode: true}, nil
}
