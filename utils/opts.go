package utils

import (
	"flag"
	"fmt"
	"strings"
)

type options struct {
	noColorize bool
	verbose    bool
}

var opts = options{}

func init() {
	flag.BoolVar(&opts.noColorize, "no-colorize",
		false,
		"Do not colorize pretty-printed lattice elements.")
	flag.BoolVar(&opts.verbose, "verbose",
		false,
		"Print debug information.")
}

// Opts retrieves the current option configuration.
func Opts() options { return opts }

// NoColorize is true if colorized printing is disabled.
func (o options) NoColorize() bool { return o.noColorize }

// Verbose is true if verbose printing is enabled.
func (o options) Verbose() bool { return o.verbose }

// VerbosePrint prints the given format only when verbose printing is enabled.
func VerbosePrint(format string, a ...interface{}) (n int, err error) {
	if opts.verbose {
		return fmt.Printf(format, a...)
	}
	return 0, nil
}

// CanColorize wraps a colorizing sprint function such that it degrades to
// plain formatting when colorization is disabled.
func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}
