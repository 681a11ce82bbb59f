package matcher

import (
	"strconv"
	"strings"
)

// ExpandTemplate substitutes every occurrence of $machine, $threshold and
// $window in a capability's query template with the stringified parameter
// values. Substitution is literal and single-pass: placeholders introduced
// by a parameter value are not expanded again, and no quoting or escaping
// is applied beyond the replacement itself.
func ExpandTemplate(template, machine string, threshold float64, window string) string {
	r := strings.NewReplacer(
		"$machine", machine,
		"$threshold", FormatThreshold(threshold),
		"$window", window,
	)
	return r.Replace(template)
}

// FormatThreshold renders a threshold without a trailing fraction when it
// is a whole number (80 -> "80", 80.5 -> "80.5").
func FormatThreshold(threshold float64) string {
	return strconv.FormatFloat(threshold, 'f', -1, 64)
}
