package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// normalizeArgs moves flags ahead of a "--" terminator so that negative
// coordinates such as -99.1 reach the command as positional arguments instead of
// being parsed as shorthand flags. Dash-prefixed arguments that are not known
// flags are positional too. A leading subcommand name stays in front.
func normalizeArgs(root *cobra.Command, args []string) []string {
	var flags, positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case isNumber(arg):
			positional = append(positional, arg)
		case lookupFlag(root, arg) != nil:
			flags = append(flags, arg)
			if flagTakesValue(root, arg) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		if sub, _, err := root.Find(positional[:1]); err == nil && sub != root {
			flags = append([]string{positional[0]}, flags...)
			positional = positional[1:]
		}
	}

	normalized := make([]string, 0, len(flags)+len(positional)+1)
	normalized = append(normalized, flags...)
	normalized = append(normalized, "--")
	return append(normalized, positional...)
}

func isNumber(arg string) bool {
	_, ok := geo.ParseFloat(arg)
	return ok
}

// lookupFlag returns the root flag named by arg, with or without an "=value"
// suffix, or nil when arg is not a known flag.
func lookupFlag(root *cobra.Command, arg string) *pflag.Flag {
	if !strings.HasPrefix(arg, "-") || len(arg) < 2 {
		return nil
	}
	name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
	if name == "" {
		return nil
	}
	for _, set := range []*pflag.FlagSet{root.PersistentFlags(), root.Flags()} {
		if flag := set.Lookup(name); flag != nil {
			return flag
		}
		if len(name) == 1 && !strings.HasPrefix(arg, "--") {
			if flag := set.ShorthandLookup(name); flag != nil {
				return flag
			}
		}
	}
	return nil
}

// flagTakesValue reports whether arg is a flag given without "=" whose value is
// the next argument.
func flagTakesValue(root *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	flag := lookupFlag(root, arg)
	return flag != nil && flag.NoOptDefVal == ""
}
