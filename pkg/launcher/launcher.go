// Package launcher runs an application packed into a jlaunch executable:
// it reads the container appended to the launcher stub, extracts bundled
// files, finds a compatible Java runtime and runs the main class.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/jlaunch/internal/workenv"
	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/locator"
	"github.com/provide-io/jlaunch/pkg/logging"
	"github.com/provide-io/jlaunch/pkg/messages"
	"github.com/provide-io/jlaunch/pkg/procrun"
	"github.com/provide-io/jlaunch/pkg/resolve"
)

// stderrTail bounds how much child stderr is kept for error reporting.
const stderrTail = 64 * 1024

// Options configure one launcher run.
type Options struct {
	// ExePath is the executable carrying the container.
	ExePath string
	Args    []string
	// StubSize is the container offset; zero means DefaultStubSize.
	StubSize int64
	Output   *logging.Output
	// Stdin is forwarded to the application when set.
	Stdin io.Reader
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// run carries the state of one Launch call.
type run struct {
	opts     Options
	cfg      *Config
	out      *logging.Output
	logger   hclog.Logger
	// table is nil until the container messages are read; lookups then
	// use the built-in texts.
	table    *messages.Table
	resolver *resolve.Resolver
	workBase string
	work     *workenv.Workenv
}

// Launch runs the application and returns the process exit code. The error
// is the launcher failure behind a non-zero launcher exit code, if any; a
// failing application is not an error.
func Launch(ctx context.Context, opts Options) (int, error) {
	if opts.StubSize == 0 {
		opts.StubSize = container.DefaultStubSize
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Output == nil {
		opts.Output = logging.NewOutput(os.Stdout, os.Stderr, nil)
	}
	r := &run{opts: opts, out: opts.Output, logger: opts.Output.Logger}
	defer r.out.Close()

	cfg, err := ParseArgs(opts.Args)
	if err != nil {
		r.out.Message(r.table.Format(messages.InvalidArguments, messages.A("error", err.Error())))
		return ExitInvalidArgs, err
	}
	r.cfg = cfg
	if cfg.Verbose {
		r.logger.SetLevel(hclog.Debug)
	}
	r.out.Silent = cfg.Silent
	if cfg.Output != "" {
		if err := r.out.RedirectToFile(cfg.Output); err != nil {
			r.out.Message(r.table.Format(messages.OutputError,
				messages.A("path", cfg.Output), messages.A("error", err.Error())))
			return ExitIOError, err
		}
	}

	return r.launch(ctx)
}

func (r *run) launch(ctx context.Context) (int, error) {
	r.logger.Debug("📖 Reading container", "exe", r.opts.ExePath)
	f, err := container.OpenContainer(r.opts.ExePath, r.opts.StubSize)
	if err != nil {
		if errors.Is(err, container.ErrStubOnly) {
			r.out.Message(r.table.Format(messages.StubOnly, messages.A("path", r.opts.ExePath)))
			return ExitStubOnly, err
		}
		return r.fail(err)
	}
	defer f.Close()
	ext := container.NewExtractor(f, r.logger)

	locale := r.cfg.Locale
	if locale == "" {
		locale = DetectLocale(r.opts.Getenv)
	}
	values, err := ext.ReadMessages(locale)
	if err != nil {
		return r.fail(err)
	}
	r.table = messages.NewTable(values)

	if r.cfg.Help {
		r.printHelp()
		return 0, nil
	}

	props, err := ext.ReadProperties()
	if err != nil {
		return r.fail(err)
	}
	exeDir := filepath.Dir(r.opts.ExePath)
	r.resolver = resolve.New(r.table, r.logger)
	r.resolver.Set(resolve.VarUserHome, resolve.UserHome())
	r.resolver.Set(resolve.VarParentDir, exeDir)

	if err := r.createWorkenv(); err != nil {
		return r.fail(err)
	}
	if !r.cfg.Extract {
		defer r.work.Remove(r.logger)
	}
	r.resolver.Set(resolve.VarTmpDir, r.work.Dir)

	reader := &container.ResourceReader{Extractor: ext, Resolver: r.resolver}
	if !r.cfg.NoSpaceCheck {
		if err := workenv.CheckFreeSpace(r.work.Dir, props.BundledSize, r.logger); err != nil {
			return r.fail(err)
		}
		reader.CheckSpace = workenv.SpaceChecker(r.logger)
	}

	r.logger.Info("📦 " + r.table.Get(messages.MsgExtract))
	testJVM, err := reader.Read(ctx)
	if err != nil {
		return r.fail(err)
	}
	jvms, err := reader.ReadList(ctx)
	if err != nil {
		return r.fail(err)
	}

	runner := procrun.NewRunner(r.logger)
	var rt *locator.Runtime
	if !r.cfg.Extract {
		if rt, err = r.findJava(ctx, runner, props, testJVM, jvms); err != nil {
			return r.fail(err)
		}
		r.resolver.Set(resolve.VarJavaHome, rt.Home)
	}

	jars, err := reader.ReadList(ctx)
	if err != nil {
		return r.fail(err)
	}
	others, err := reader.ReadList(ctx)
	if err != nil {
		return r.fail(err)
	}
	r.logger.Debug("Container read", "jars", len(jars), "other", len(others))

	if r.cfg.Extract {
		marker := workenv.ValidationMarker{
			Launcher:    filepath.Base(r.opts.ExePath),
			MainClass:   props.MainClass,
			BundledSize: props.BundledSize,
		}
		if err := workenv.WriteMarker(r.work.Dir, marker); err != nil {
			r.logger.Warn("Could not write extraction marker", "error", err)
		}
		r.logger.Info("✅ Data extracted", "dir", r.work.Dir)
		return 0, nil
	}

	r.logger.Debug("🔧 " + r.table.Get(messages.MsgSetOptions))
	classpath, err := BuildClasspath(r.cfg.ClasspathPrepend, jars, r.cfg.ClasspathAppend, r.resolver)
	if err != nil {
		return r.fail(err)
	}
	jvmArgs, err := resolveAll(r.resolver, props.JVMArgs, r.cfg.JVMArgs)
	if err != nil {
		return r.fail(err)
	}
	appArgs, err := resolveAll(r.resolver, props.AppArgs, r.cfg.AppArgs)
	if err != nil {
		return r.fail(err)
	}

	command := BuildCommand(rt.Executable, r.work.Dir, jvmArgs, classpath, props.MainClass, appArgs)
	return r.execute(ctx, runner, command)
}

func (r *run) createWorkenv() error {
	r.logger.Debug("📁 " + r.table.Get(messages.MsgCreateTmpDir))
	var err error
	if r.cfg.Extract {
		r.workBase = r.cfg.ExtractDir
		if r.workBase == "" {
			r.workBase = "."
		}
		r.work, err = workenv.Create(r.workBase, false, r.logger)
	} else {
		r.workBase = workenv.TempRoot(r.cfg.TempDir)
		if err := workenv.CleanupStale(r.workBase, r.logger); err != nil {
			r.logger.Debug("Stale work directory cleanup failed", "error", err)
		}
		r.work, err = workenv.Create(r.workBase, true, r.logger)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errTmpDir, err)
	}
	return nil
}

func (r *run) findJava(ctx context.Context, runner *procrun.Runner, props *container.Properties, testJVM *container.Resource, jvms []*container.Resource) (*locator.Runtime, error) {
	r.logger.Info("🔍 " + r.table.Get(messages.MsgJvmSearch))

	testPath, err := testJVM.Resolve(r.resolver)
	if err != nil {
		return nil, err
	}
	// Without the test class every candidate would fail its version check.
	cp := TestClasspath(testPath)
	if _, err := os.Stat(cp); err != nil {
		return nil, fmt.Errorf("%w: test classpath %s missing", locator.ErrJvmNotFound, cp)
	}
	prober := locator.NewProcessProber(runner, cp, props.TestClass, r.logger)

	if r.cfg.JavaHome != "" {
		loc := locator.New(prober, props.Rules, nil, r.logger)
		rt, err := loc.FindAt(ctx, r.cfg.JavaHome)
		if err != nil {
			return nil, &userJavaError{home: r.cfg.JavaHome, err: err}
		}
		return rt, nil
	}

	cfg := locator.Config{
		InstallDir: filepath.Dir(r.opts.ExePath),
		WorkDir:    r.work.Dir,
		Getenv:     r.opts.Getenv,
		Stdout:     r.out.Stdout,
		Stderr:     r.out.Stderr,
	}
	for _, jvm := range jvms {
		path, err := jvm.Resolve(r.resolver)
		if err != nil {
			return nil, err
		}
		if jvm.Kind == container.Bundled {
			cfg.Installers = append(cfg.Installers, path)
		} else {
			cfg.Locations = append(cfg.Locations, path)
		}
	}

	loc := locator.New(prober, props.Rules, locator.DefaultStrategies(cfg, runner, r.logger), r.logger)
	return loc.Find(ctx)
}

func (r *run) execute(ctx context.Context, runner *procrun.Runner, command []string) (int, error) {
	r.logger.Info("🚀 "+r.table.Get(messages.MsgRunning), "command", procrun.CommandLine(command))

	tail := &tailBuffer{max: stderrTail}
	var stderr io.Writer = tail
	if r.out.Stderr != nil {
		stderr = io.MultiWriter(r.out.Stderr, tail)
	}
	res := runner.Run(ctx, procrun.Spec{
		Command: command,
		Stdin:   r.opts.Stdin,
		Stdout:  r.out.Stdout,
		Stderr:  stderr,
	})

	switch res.Outcome {
	case procrun.Cancelled:
		return r.fail(container.ErrCancelled)
	case procrun.SpawnFailed:
		r.logger.Error("❌ Failed to start java", "error", res.Err)
		r.out.Message(r.table.Format(messages.JavaProcessError, messages.A("output", res.Err.Error())))
		return ExitExecutionError, res.Err
	}

	r.logger.Debug("Main class finished", "exit_code", res.ExitCode)
	if res.ExitCode != 0 && meaningfulStderr(tail.String()) {
		r.out.Message(r.table.Format(messages.JavaProcessError, messages.A("output", tail.String())))
	}
	return res.ExitCode, nil
}

func (r *run) printHelp() {
	entries := []struct{ key, flag string }{
		{messages.ArgJavaHome, "--" + flagJavaHome},
		{messages.ArgTempDir, "--" + flagTempDir},
		{messages.ArgExtract, "--" + flagExtract},
		{messages.ArgOutput, "--" + flagOutput},
		{messages.ArgVerbose, "--" + flagVerbose},
		{messages.ArgClasspathAppend, "--" + flagClasspathAppend},
		{messages.ArgClasspathPrepend, "--" + flagClasspathPrepend},
		{messages.ArgDisableSpaceCheck, "--" + flagNoSpaceCheck},
		{messages.ArgLocale, "--" + flagLocale},
		{messages.ArgSilent, "--" + flagSilent},
		{messages.ArgHelp, "--" + flagHelp},
	}
	for _, e := range entries {
		r.out.Print(r.table.Format(e.key, messages.A("arg", e.flag)))
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
