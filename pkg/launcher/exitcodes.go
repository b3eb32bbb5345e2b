package launcher

// Exit codes for launcher failures. A child that ran reports its own code.
const (
	ExitPanic           = 101
	ExitContainerError  = 102
	ExitExtractionError = 103
	ExitExecutionError  = 104
	ExitInvalidArgs     = 105
	ExitIOError         = 106
	ExitJvmNotFound     = 107
	ExitJvmIncompatible = 108
	ExitFreeSpace       = 109
	ExitStubOnly        = 110
	ExitMissingResource = 111
	ExitCancelled       = 130
)
