package config

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
)

// CommandRunner executes a shell command in a directory.
type CommandRunner interface {
	Run(ctx context.Context, dir, command string) error
}

// ShellRunner runs commands through the platform shell.
type ShellRunner struct {
	logger zerolog.Logger
}

// NewShellRunner creates a ShellRunner.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{logger: logging.GetLogger("config")}
}

// Run executes command with sh -c (cmd /C on Windows) inside dir.
func (r *ShellRunner) Run(ctx context.Context, dir, command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	r.logger.Info().Str("dir", dir).Str("command", command).Msg("running hook command")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w: %s", command, err, bytes.TrimSpace(out.Bytes()))
	}
	r.logger.Debug().Str("command", command).Str("output", out.String()).Msg("hook command finished")
	return nil
}

// CompileHook turns a declarative hook into a HookFunc. Actions apply in the
// order doNotCopy, data, run; the first failing command stops the hook.
func CompileHook(spec HookSpec, runner CommandRunner) HookFunc {
	return func(ctx context.Context, s Session) error {
		if len(spec.DoNotCopy) > 0 {
			s.AddDoNotCopy(spec.DoNotCopy...)
		}
		for k, v := range spec.Data {
			s.SetData(k, v)
		}
		if len(spec.Run) > 0 && runner == nil {
			return fmt.Errorf("hook has %d command(s) but no command runner is configured", len(spec.Run))
		}
		for _, command := range spec.Run {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := runner.Run(ctx, s.TargetDir(), command); err != nil {
				return err
			}
		}
		return nil
	}
}
