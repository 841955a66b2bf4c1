package syncrun

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"subsyncarr/internal/engine"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/scan"
)

// Runner executes one engine against one subtitle/media pair.
// *engine.Adapter satisfies it.
type Runner interface {
	Run(ctx context.Context, subtitlePath, mediaPath string, env engine.Env) engine.Outcome
}

// MatchFunc locates the media file paired with a subtitle.
type MatchFunc func(subtitlePath string) (mediaPath string, ok bool, err error)

// Scheduler runs subtitles through engines in fixed-size chunks.
type Scheduler struct {
	runners map[engine.Kind]Runner
	match   MatchFunc
	logger  *slog.Logger
}

// NewScheduler builds a scheduler. A nil match uses scan.FindMatchingVideo.
func NewScheduler(runners map[engine.Kind]Runner, match MatchFunc, logger *slog.Logger) *Scheduler {
	if match == nil {
		match = scan.FindMatchingVideo
	}
	return &Scheduler{
		runners: runners,
		match:   match,
		logger:  logging.NewComponentLogger(logger, "scheduler"),
	}
}

// ChunkFunc observes each settled chunk, in order.
type ChunkFunc func(index int, results []FileResult)

// RunAll splits files into consecutive chunks of maxConcurrent. Every
// file×engine invocation in a chunk runs concurrently and all of them settle
// before the next chunk starts. Results keep the order of files.
func (s *Scheduler) RunAll(ctx context.Context, files []string, kinds []engine.Kind, env engine.Env, maxConcurrent int, onChunk ChunkFunc) []FileResult {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	results := make([]FileResult, 0, len(files))
	for start, index := 0, 0; start < len(files); start, index = start+maxConcurrent, index+1 {
		end := min(start+maxConcurrent, len(files))
		chunk := s.runChunk(ctx, files[start:end], kinds, env, maxConcurrent)
		s.logger.Debug("chunk settled",
			logging.Int("chunk", index),
			logging.Int("files", len(chunk)),
			logging.Int("remaining", len(files)-end),
		)
		if onChunk != nil {
			onChunk(index, chunk)
		}
		results = append(results, chunk...)
	}
	return results
}

func (s *Scheduler) runChunk(ctx context.Context, files []string, kinds []engine.Kind, env engine.Env, maxConcurrent int) []FileResult {
	results := make([]FileResult, len(files))
	var g errgroup.Group
	g.SetLimit(maxConcurrent)
	for i, file := range files {
		g.Go(func() error {
			results[i] = s.processFile(ctx, file, kinds, env)
			return nil
		})
	}
	// Failures travel in each FileResult; Wait only joins the chunk.
	g.Wait()
	return results
}

func (s *Scheduler) processFile(ctx context.Context, subtitle string, kinds []engine.Kind, env engine.Env) (result FileResult) {
	result = FileResult{File: subtitle, Engines: map[engine.Kind]engine.Outcome{}}
	logger := logging.WithContext(ctx, s.logger)

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "file processing panicked", "scheduler_panic",
				logging.String("file", subtitle),
				logging.Any("panic", r),
			)
			for _, kind := range kinds {
				if _, done := result.Engines[kind]; !done {
					result.Engines[kind] = engine.Outcome{
						Message: fmt.Sprintf("Error processing %s: Unknown error", kind.OutputPath(subtitle)),
					}
				}
			}
		}
	}()

	media, ok, err := s.match(subtitle)
	if err != nil {
		logging.WarnWithContext(logger, "media lookup failed", "pairing_failed",
			logging.String("file", subtitle),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check directory permissions"),
		)
		for _, kind := range kinds {
			result.Engines[kind] = engine.Outcome{
				Message:    fmt.Sprintf("Error processing %s: %v", kind.OutputPath(subtitle), err),
				OutputPath: kind.OutputPath(subtitle),
			}
		}
		return result
	}
	if !ok {
		logger.Info("No matching video file found for: " + filepath.Base(subtitle))
		return result
	}
	result.Media = media

	outcomes := make([]engine.Outcome, len(kinds))
	var g errgroup.Group
	for i, kind := range kinds {
		runner, found := s.runners[kind]
		if !found {
			outcomes[i] = engine.Outcome{Message: fmt.Sprintf("Error processing %s: engine %s is not configured", kind.OutputPath(subtitle), kind)}
			continue
		}
		g.Go(func() error {
			outcomes[i] = s.runEngine(ctx, runner, kind, subtitle, media, env)
			return nil
		})
	}
	g.Wait()

	for i, kind := range kinds {
		result.Engines[kind] = outcomes[i]
		logger.Info(fmt.Sprintf("%s result: %s", kind, outcomes[i].Message))
	}
	return result
}

func (s *Scheduler) runEngine(ctx context.Context, runner Runner, kind engine.Kind, subtitle, media string, env engine.Env) (outcome engine.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(s.logger, "engine runner panicked", "engine_panic",
				logging.String("engine", string(kind)),
				logging.String("file", subtitle),
				logging.Any("panic", r),
			)
			outcome = engine.Outcome{
				Message:    fmt.Sprintf("Error processing %s: Unknown error", kind.OutputPath(subtitle)),
				OutputPath: kind.OutputPath(subtitle),
			}
		}
	}()
	return runner.Run(ctx, subtitle, media, env)
}
