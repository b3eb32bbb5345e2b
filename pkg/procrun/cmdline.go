package procrun

import "strings"

// QuoteArgument quotes arg for a Windows style command line. Arguments
// containing a space or a tab are wrapped in double quotes; embedded quotes
// are escaped and backslashes preceding a quote, or the closing quote, are
// doubled.
func QuoteArgument(arg string) string {
	if arg == "" {
		return `""`
	}
	quoting := strings.ContainsAny(arg, " \t")

	var sb strings.Builder
	if quoting {
		sb.WriteByte('"')
	}
	backslashes := 0
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		switch c {
		case '\\':
			backslashes++
		case '"':
			sb.WriteString(strings.Repeat(`\`, backslashes+1))
			backslashes = 0
		default:
			backslashes = 0
		}
		sb.WriteByte(c)
	}
	if quoting {
		sb.WriteString(strings.Repeat(`\`, backslashes))
		sb.WriteByte('"')
	}
	return sb.String()
}

// CommandLine joins args into a single quoted command line.
func CommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = QuoteArgument(a)
	}
	return strings.Join(quoted, " ")
}
