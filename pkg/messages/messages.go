// Package messages holds the launcher's localizable texts: the keys a
// container may override, their built-in defaults and template formatting.
package messages

import (
	"sort"
	"strings"
)

// Message keys.
const (
	JvmNotFound             = "nlw.jvm.notfoundmessage"
	JvmUserError            = "nlw.jvm.usererror"
	JvmUnsupportedVersion   = "nlw.jvm.unsupportedversion"
	FreeSpace               = "nlw.freespace"
	TmpDir                  = "nlw.tmpdir"
	Integrity               = "nlw.integrity"
	OutputError             = "nlw.output.error"
	JavaProcessError        = "nlw.java.process.error"
	MissingExternalResource = "nlw.missing.external.resource"
	BundledJvmExtractError  = "nlw.bundled.jvm.extract.error"
	BundledJvmVerifyError   = "nlw.bundled.jvm.verify.error"
	StubOnly                = "nlw.stub.only"
	InvalidArguments        = "nlw.invalid.arguments"

	ArgOutput            = "nlw.arg.output"
	ArgJavaHome          = "nlw.arg.javahome"
	ArgVerbose           = "nlw.arg.verbose"
	ArgTempDir           = "nlw.arg.tempdir"
	ArgClasspathAppend   = "nlw.arg.classpatha"
	ArgClasspathPrepend  = "nlw.arg.classpathp"
	ArgExtract           = "nlw.arg.extract"
	ArgDisableSpaceCheck = "nlw.arg.disable.space.check"
	ArgLocale            = "nlw.arg.locale"
	ArgSilent            = "nlw.arg.silent"
	ArgHelp              = "nlw.arg.help"

	MsgCreateTmpDir = "nlw.msg.create.tmpdir"
	MsgExtract      = "nlw.msg.extract"
	MsgJvmSearch    = "nlw.msg.jvmsearch"
	MsgSetOptions   = "nlw.msg.setoptions"
	MsgRunning      = "nlw.msg.running"
	MsgTitle        = "nlw.msg.main.title"
)

var defaults = map[string]string{
	JvmNotFound:             "Can't find suitable JVM. Specify it with {arg} argument",
	JvmUserError:            "Can't find JVM at {path}",
	JvmUnsupportedVersion:   "Unsupported JVM at {path}",
	FreeSpace:               "Not enough free space at {path}",
	TmpDir:                  "Can't create temp directory {path}",
	Integrity:               "Integrity error. File {path} is corrupted",
	OutputError:             "Can't create file {path}.\nError: {error}",
	JavaProcessError:        "Java error:\n{output}",
	MissingExternalResource: "Can't run launcher\nThe following file is missing : {path}",
	BundledJvmExtractError:  "Can't prepare bundled JVM",
	BundledJvmVerifyError:   "Can't verify bundled JVM",
	StubOnly:                "{path} is only the launcher stub, no application data is attached",
	InvalidArguments:        "Invalid arguments: {error}",

	ArgOutput:            "{arg} Output all stdout/stderr to the file",
	ArgJavaHome:          "{arg} Using specified JVM",
	ArgVerbose:           "{arg} Use verbose output",
	ArgTempDir:           "{arg} Use specified temporary dir for extracting data",
	ArgClasspathAppend:   "{arg} Append classpath",
	ArgClasspathPrepend:  "{arg} Prepend classpath",
	ArgExtract:           "{arg} Extract all data",
	ArgDisableSpaceCheck: "{arg} Disable free space check",
	ArgLocale:            "{arg} Use specified locale for messages",
	ArgSilent:            "{arg} Run silently",
	ArgHelp:              "{arg} Using this help",

	MsgCreateTmpDir: "Creating tmp directory...",
	MsgExtract:      "Extracting data...",
	MsgJvmSearch:    "Finding JVM...",
	MsgSetOptions:   "Setting command options...",
	MsgRunning:      "Running JVM...",
	MsgTitle:        "Java Launcher",
}

// Default returns the built-in text for key.
func Default(key string) (string, bool) {
	s, ok := defaults[key]
	return s, ok
}

// Table is the message set selected from a container. Keys it lacks, or
// holds empty, fall back to the built-in defaults.
type Table struct {
	values map[string]string
}

// NewTable wraps the values read from a container; values may be nil.
func NewTable(values map[string]string) *Table {
	return &Table{values: values}
}

// Lookup returns the text for key.
func (t *Table) Lookup(key string) (string, bool) {
	if t != nil {
		if v := t.values[key]; v != "" {
			return v, true
		}
	}
	return Default(key)
}

// Get returns the text for key or key itself when nothing is known.
func (t *Table) Get(key string) string {
	if v, ok := t.Lookup(key); ok {
		return v
	}
	return key
}

// Format renders the message for key with args.
func (t *Table) Format(key string, args ...Arg) string {
	return Format(t.Get(key), args...)
}

// Arg is a named template argument.
type Arg struct {
	Name  string
	Value string
}

// A builds an Arg.
func A(name, value string) Arg {
	return Arg{Name: name, Value: value}
}

// Format substitutes {name} for each named argument, then fills any "%s"
// verbs left in the template with the arguments in order. Container supplied
// templates use the positional form.
func Format(template string, args ...Arg) string {
	out := template
	for _, a := range args {
		out = strings.ReplaceAll(out, "{"+a.Name+"}", a.Value)
	}
	for _, a := range args {
		i := strings.Index(out, "%s")
		if i < 0 {
			break
		}
		out = out[:i] + a.Value + out[i+2:]
	}
	return out
}

// Keys returns every key with a built-in text, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
