// Package flagx contains helpers for layered command-line configuration.
package flagx

import (
	"flag"
	"strconv"
	"strings"
	"time"
)

// FilterArgs keeps only the allowed flags of args, together with their values.
//
// A flag may carry its value inline (-c=conf.yaml, --config=conf.json) or in
// the next argument (-c conf.json). A following argument that starts with "-"
// is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, keep := allowed[name]; keep {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, keep := allowed[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag extracts the config file path given with -c or -config.
// Every other argument is ignored so the caller can parse its own flags later.
// An empty string means no config file was requested.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "Path to config file (JSON or YAML)")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}

// Millis is a flag.Value holding a duration written as whole milliseconds
// ("1200") or as a Go duration string ("1.2s").
type Millis struct {
	D *time.Duration
}

func (m Millis) String() string {
	if m.D == nil {
		return "0"
	}
	return strconv.FormatInt(m.D.Milliseconds(), 10)
}

func (m Millis) Set(s string) error {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*m.D = time.Duration(n) * time.Millisecond
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*m.D = d
	return nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
