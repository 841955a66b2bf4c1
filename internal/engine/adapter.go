package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"

	"subsyncarr/internal/logging"
	"subsyncarr/internal/media/ffprobe"
	"subsyncarr/internal/services"
)

// StreamResolver turns a language tag into an audio stream of a media file.
type StreamResolver interface {
	ResolveAudioStream(ctx context.Context, mediaPath, lang string) (ffprobe.AudioStream, error)
}

// Adapter runs one engine with the shared skip/resolve/execute policy.
type Adapter struct {
	engine  Engine
	binary  string
	exec    Executor
	streams StreamResolver
	logger  *slog.Logger
}

// AdapterOption customizes an Adapter.
type AdapterOption func(*Adapter)

// WithExecutor swaps the process runner, mainly for tests.
func WithExecutor(exec Executor) AdapterOption {
	return func(a *Adapter) {
		if exec != nil {
			a.exec = exec
		}
	}
}

// WithLogger sets the adapter's logging destination.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logging.NewComponentLogger(logger, "engine")
	}
}

// NewAdapter constructs the adapter for kind. streams may be nil when no
// language-based stream selection is ever configured.
func NewAdapter(kind Kind, binary string, streams StreamResolver, opts ...AdapterOption) (*Adapter, error) {
	impl, ok := For(kind)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "engine", "new adapter", fmt.Sprintf("unknown engine %q", kind), nil)
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = string(kind)
	}
	a := &Adapter{
		engine:  impl,
		binary:  binary,
		exec:    CommandExecutor{},
		streams: streams,
		logger:  logging.NewComponentLogger(nil, "engine"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Kind returns the engine this adapter drives.
func (a *Adapter) Kind() Kind {
	return a.engine.Kind()
}

// Run synchronizes subtitlePath against mediaPath. It never returns an error:
// every failure, including a panic inside the adapter, is folded into a
// failed Outcome so sibling engines and files keep running.
func (a *Adapter) Run(ctx context.Context, subtitlePath, mediaPath string, env Env) (outcome Outcome) {
	kind := a.engine.Kind()
	output := kind.OutputPath(subtitlePath)
	ctx = services.WithEngine(ctx, string(kind))
	logger := logging.WithContext(ctx, a.logger)

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "engine adapter panicked", "engine_panic",
				logging.String("output", output),
				logging.Any("panic", r),
			)
			outcome = Outcome{
				Success:    false,
				Message:    fmt.Sprintf("Error processing %s: Unknown error", output),
				OutputPath: output,
			}
		}
	}()

	if !env.OverwriteEnabled() && fileExists(output) {
		return Outcome{
			Success:    true,
			Skipped:    true,
			Message:    fmt.Sprintf("Skipping %s - already processed", output),
			OutputPath: output,
		}
	}

	req := Request{Subtitle: subtitlePath, Media: mediaPath, Output: output}

	if lang := strings.TrimSpace(env.AudioTrackLanguage); lang != "" && a.engine.NeedsAudioStream() {
		if a.streams == nil {
			return failure(output, errors.New("audio stream resolution unavailable"))
		}
		stream, err := a.streams.ResolveAudioStream(ctx, mediaPath, lang)
		if err != nil {
			return failure(output, err)
		}
		if !stream.Matched {
			logger.Debug("audio language not found; using first audio stream",
				logging.String("language", lang),
				logging.Int("absolute_index", stream.AbsoluteIndex),
			)
		}
		req.Audio = &stream
	}

	if extra := env.ExtraArgs[kind]; strings.TrimSpace(extra) != "" {
		args, err := shellwords.Parse(extra)
		if err != nil {
			return failure(output, fmt.Errorf("parse %s arguments %q: %w", kind, extra, err))
		}
		req.ExtraArgs = args
	}

	inv := a.engine.BuildCommand(a.binary, req)
	command := inv.String()
	logger.Info("processing", logging.String("command", command))

	result, err := a.exec.Run(ctx, inv)
	if err != nil {
		out := failure(output, err)
		code := result.ExitCode
		out.ExitCode = &code
		out.Stdout = result.Stdout
		out.Stderr = result.Stderr
		out.Command = command
		return out
	}
	if result.ExitCode != 0 || result.Signal != "" {
		code := result.ExitCode
		reason := fmt.Sprintf("Command failed with exit code %d", code)
		if result.Signal != "" {
			reason = "Command terminated by signal " + result.Signal
		}
		return Outcome{
			Success:    false,
			Message:    fmt.Sprintf("Error processing %s: %s", output, reason),
			OutputPath: output,
			ExitCode:   &code,
			Signal:     result.Signal,
			Stdout:     result.Stdout,
			Stderr:     result.Stderr,
			Command:    command,
		}
	}

	return Outcome{
		Success:    true,
		Message:    fmt.Sprintf("Successfully processed: %s", output),
		OutputPath: output,
		Command:    command,
	}
}

func failure(output string, err error) Outcome {
	return Outcome{
		Success:    false,
		Message:    fmt.Sprintf("Error processing %s: %v", output, err),
		OutputPath: output,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
