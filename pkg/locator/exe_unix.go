//go:build !windows

package locator

const exeSuffix = ""
