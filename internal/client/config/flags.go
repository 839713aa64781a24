package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/flagx"
)

// valueFlags are the flags that take a value; their values are never
// mistaken for the file argument.
var valueFlags = []string{"-s", "-e", "-d", "-c", "-config", "--config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   server base URL
//	-e string   admin email
//	-d int      reset delay in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-e", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "portfolio server base URL")
	fs.StringVar(&cfg.Email, "e", cfg.Email, "admin email")
	resetDelay := fs.Int("d", int(cfg.ResetDelay.Seconds()), "seconds a finished upload stays on screen")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "d" {
			cfg.ResetDelay = time.Duration(*resetDelay) * time.Second
		}
	})
	if file := positional(os.Args[1:]); file != "" {
		cfg.File = file
	}
}

// positional returns the first argument that is neither a flag nor the
// value of one.
func positional(args []string) string {
	takesValue := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = struct{}{}
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			return arg
		}
		if strings.Contains(arg, "=") {
			continue
		}
		if _, ok := takesValue[arg]; ok {
			i++
		}
	}
	return ""
}
