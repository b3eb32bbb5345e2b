package launcher

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// JVMArgPrefix marks a command line argument meant for the JVM.
const JVMArgPrefix = "-J"

// Launcher flags, in the order the help lists them.
const (
	flagJavaHome         = "javahome"
	flagTempDir          = "tempdir"
	flagExtract          = "extract"
	flagOutput           = "output"
	flagVerbose          = "verbose"
	flagClasspathAppend  = "classpath-append"
	flagClasspathPrepend = "classpath-prepend"
	flagNoSpaceCheck     = "nospacecheck"
	flagLocale           = "locale"
	flagSilent           = "silent"
	flagHelp             = "help"
)

type valueKind int

const (
	noValue valueKind = iota
	requiredValue
	optionalValue
)

var launcherFlags = map[string]valueKind{
	flagJavaHome:         requiredValue,
	flagTempDir:          requiredValue,
	flagExtract:          optionalValue,
	flagOutput:           requiredValue,
	flagVerbose:          noValue,
	flagClasspathAppend:  requiredValue,
	flagClasspathPrepend: requiredValue,
	flagNoSpaceCheck:     noValue,
	flagLocale:           requiredValue,
	flagSilent:           noValue,
	flagHelp:             noValue,
}

// Config is the parsed launcher command line.
type Config struct {
	JavaHome         string
	TempDir          string
	Extract          bool
	ExtractDir       string
	Output           string
	Verbose          bool
	Silent           bool
	NoSpaceCheck     bool
	Locale           string
	ClasspathPrepend []string
	ClasspathAppend  []string
	Help             bool

	// JVMArgs and AppArgs are the pass-through arguments, JVM arguments
	// with their prefix removed.
	JVMArgs []string
	AppArgs []string
}

// launcherFlag returns the flag name and inline value of arg when it is a
// launcher flag.
func launcherFlag(arg string) (name, value string, inline, ok bool) {
	if arg == "/?" {
		return flagHelp, "", false, true
	}
	if !strings.HasPrefix(arg, "--") {
		return "", "", false, false
	}
	name, value, inline = strings.Cut(arg[2:], "=")
	_, ok = launcherFlags[name]
	return name, value, inline, ok
}

// ParseArgs separates launcher flags from pass-through arguments and parses
// the former. Launcher flags may appear anywhere on the command line.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}
	var own []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, inline, ok := launcherFlag(arg)
		if !ok {
			if strings.HasPrefix(arg, JVMArgPrefix) {
				cfg.JVMArgs = append(cfg.JVMArgs, arg[len(JVMArgPrefix):])
			} else {
				cfg.AppArgs = append(cfg.AppArgs, arg)
			}
			continue
		}

		switch launcherFlags[name] {
		case noValue:
			own = append(own, "--"+name)
		case requiredValue:
			if !inline {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("flag --%s needs a value", name)
				}
				i++
				value = args[i]
			}
			own = append(own, "--"+name+"="+value)
		case optionalValue:
			// The next argument is the value unless it is a launcher flag.
			if !inline && i+1 < len(args) {
				if _, _, _, next := launcherFlag(args[i+1]); !next {
					i++
					value, inline = args[i], true
				}
			}
			if inline {
				own = append(own, "--"+name+"="+value)
			} else {
				own = append(own, "--"+name)
			}
		}
	}

	fs := pflag.NewFlagSet("jlaunch", pflag.ContinueOnError)
	fs.StringVar(&cfg.JavaHome, flagJavaHome, "", "Using specified JVM")
	fs.StringVar(&cfg.TempDir, flagTempDir, "", "Use specified temporary dir for extracting data")
	fs.StringVar(&cfg.ExtractDir, flagExtract, "", "Extract all data")
	fs.Lookup(flagExtract).NoOptDefVal = "."
	fs.StringVar(&cfg.Output, flagOutput, "", "Output all stdout/stderr to the file")
	fs.BoolVar(&cfg.Verbose, flagVerbose, false, "Use verbose output")
	fs.StringArrayVar(&cfg.ClasspathAppend, flagClasspathAppend, nil, "Append classpath")
	fs.StringArrayVar(&cfg.ClasspathPrepend, flagClasspathPrepend, nil, "Prepend classpath")
	fs.BoolVar(&cfg.NoSpaceCheck, flagNoSpaceCheck, false, "Disable free space check")
	fs.StringVar(&cfg.Locale, flagLocale, "", "Use specified locale for messages")
	fs.BoolVar(&cfg.Silent, flagSilent, false, "Run silently")
	fs.BoolVar(&cfg.Help, flagHelp, false, "Using this help")

	if err := fs.Parse(own); err != nil {
		return nil, err
	}
	cfg.Extract = fs.Changed(flagExtract)
	return cfg, nil
}
