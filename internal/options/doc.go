// Package options defines the typed, validated option set that describes a
// transcode. CLI keywords are parsed into enums here and every range and
// exclusivity rule is enforced once by Validate; downstream packages treat
// the resulting OptionSet as an immutable value.
package options
