package launcher

import (
	"errors"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/locator"
	"github.com/provide-io/jlaunch/pkg/messages"
)

var errTmpDir = errors.New("cannot create work directory")

// userJavaError is a failure of the runtime named with --javahome.
type userJavaError struct {
	home string
	err  error
}

func (e *userJavaError) Error() string {
	return "java at " + e.home + ": " + e.err.Error()
}

func (e *userJavaError) Unwrap() error { return e.err }

// fail reports err to the user and maps it to the launcher exit code.
func (r *run) fail(err error) (int, error) {
	var (
		userJava *userJavaError
		missing  *MissingResourceError
	)

	code := ExitContainerError
	switch {
	case errors.Is(err, container.ErrCancelled):
		r.logger.Info("🛑 Launch cancelled")
		return ExitCancelled, err

	case errors.As(err, &userJava):
		if errors.Is(err, locator.ErrJvmIncompatible) {
			r.out.Message(r.table.Format(messages.JvmUnsupportedVersion, messages.A("path", userJava.home)))
			code = ExitJvmIncompatible
		} else {
			r.out.Message(r.table.Format(messages.JvmUserError, messages.A("path", userJava.home)))
			code = ExitJvmNotFound
		}

	case errors.Is(err, locator.ErrBundledExtraction):
		r.out.Message(r.table.Get(messages.BundledJvmExtractError))
		code = ExitExtractionError

	case errors.Is(err, locator.ErrBundledVerification):
		r.out.Message(r.table.Get(messages.BundledJvmVerifyError))
		code = ExitJvmIncompatible

	case errors.Is(err, locator.ErrJvmNotFound), errors.Is(err, locator.ErrJvmIncompatible):
		r.out.Message(r.table.Format(messages.JvmNotFound, messages.A("arg", "--"+flagJavaHome)))
		code = ExitJvmNotFound

	case errors.Is(err, errTmpDir):
		r.out.Message(r.table.Format(messages.TmpDir, messages.A("path", r.workBase)))
		code = ExitIOError

	case errors.Is(err, container.ErrFreeSpace):
		r.out.Message(r.table.Format(messages.FreeSpace, messages.A("path", r.workBase)))
		code = ExitFreeSpace

	case errors.As(err, &missing):
		r.out.Message(r.table.Format(messages.MissingExternalResource, messages.A("path", missing.Path)))
		code = ExitMissingResource

	case errors.Is(err, container.ErrIntegrity):
		r.out.Message(r.table.Format(messages.Integrity, messages.A("path", r.opts.ExePath)))
		code = ExitContainerError

	case errors.Is(err, container.ErrIO):
		r.out.Message(err.Error())
		code = ExitExtractionError

	default:
		r.out.Message(err.Error())
	}

	r.logger.Error("❌ Launch failed", "error", err, "exit_code", code)
	return code, err
}
