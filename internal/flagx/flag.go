// Package flagx helps several config sources share os.Args without
// tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// Anything else, including positional arguments such as a subcommand name,
// is dropped. Flags listed in boolFlags never take the following token as
// their value.
func FilterArgs(args []string, allowedFlags []string, boolFlags ...string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}
	isBool := make(map[string]struct{}, len(boolFlags))
	for _, f := range boolFlags {
		isBool[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if _, ok := isBool[arg]; ok {
				continue
			}
			// the next token is this flag's value unless it looks like a flag
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// lookupString parses only the given aliases out of os.Args and returns the
// last value seen, or "" if none of them was passed.
func lookupString(name, usage string, aliases ...string) string {
	var value string

	allowed := make([]string, 0, len(aliases))
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(discard{})
	for _, a := range aliases {
		fs.StringVar(&value, a, "", usage)
		allowed = append(allowed, "-"+a)
	}
	_ = fs.Parse(FilterArgs(os.Args[1:], allowed))

	return value
}

// JsonConfigFlags returns the config file path given via -c or -config.
func JsonConfigFlags() string {
	return lookupString("json", "Path to config file", "c", "config")
}

// EnvFileFlags returns the dotenv file path given via -env, or "" to use
// the default .env lookup.
func EnvFileFlags() string {
	return lookupString("env", "Path to .env file", "env")
}

// Positional returns the first argument that is neither a flag nor a flag
// value, e.g. the "migrate" in `mailtrack -d dsn migrate`. valueFlags lists
// the flags that consume the following token.
func Positional(args []string, valueFlags []string) string {
	takesValue := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = struct{}{}
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if _, ok := takesValue[arg]; ok && !strings.Contains(arg, "=") {
				i++
			}
			continue
		}
		return arg
	}
	return ""
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
