package engine

import (
	"strconv"

	"subsyncarr/internal/media/ffprobe"
)

// Request carries the resolved inputs of one command line.
type Request struct {
	Subtitle string
	Media    string
	Output   string
	// Audio is set only when a language was configured and the engine asked
	// for stream resolution.
	Audio     *ffprobe.AudioStream
	ExtraArgs []string
}

// Engine describes how one external tool is invoked.
type Engine interface {
	Kind() Kind
	// NeedsAudioStream reports whether a configured language should be turned
	// into an audio stream selector before building the command.
	NeedsAudioStream() bool
	BuildCommand(binary string, req Request) Invocation
}

// ffsubsyncEngine selects the reference track by its position among audio
// streams ("a:N").
type ffsubsyncEngine struct{}

func (ffsubsyncEngine) Kind() Kind             { return FFsubsync }
func (ffsubsyncEngine) NeedsAudioStream() bool { return true }

func (ffsubsyncEngine) BuildCommand(binary string, req Request) Invocation {
	args := []string{req.Media, "-i", req.Subtitle, "-o", req.Output}
	if req.Audio != nil && req.Audio.RelativeIndex >= 0 {
		args = append(args, "--reference-stream", "a:"+strconv.Itoa(req.Audio.RelativeIndex))
	}
	args = append(args, req.ExtraArgs...)
	return Invocation{Name: binary, Args: args}
}

type autosubsyncEngine struct{}

func (autosubsyncEngine) Kind() Kind             { return Autosubsync }
func (autosubsyncEngine) NeedsAudioStream() bool { return false }

func (autosubsyncEngine) BuildCommand(binary string, req Request) Invocation {
	args := []string{req.Media, req.Subtitle, req.Output}
	args = append(args, req.ExtraArgs...)
	return Invocation{Name: binary, Args: args}
}

// alassEngine selects the reference track by its absolute container index.
type alassEngine struct{}

func (alassEngine) Kind() Kind             { return Alass }
func (alassEngine) NeedsAudioStream() bool { return true }

func (alassEngine) BuildCommand(binary string, req Request) Invocation {
	args := []string{req.Media, req.Subtitle, req.Output}
	if req.Audio != nil && req.Audio.AbsoluteIndex >= 0 {
		args = append(args, "--index", strconv.Itoa(req.Audio.AbsoluteIndex))
	}
	args = append(args, req.ExtraArgs...)
	return Invocation{Name: binary, Args: args}
}

// For returns the Engine implementation for kind.
func For(kind Kind) (Engine, bool) {
	switch kind {
	case FFsubsync:
		return ffsubsyncEngine{}, true
	case Autosubsync:
		return autosubsyncEngine{}, true
	case Alass:
		return alassEngine{}, true
	default:
		return nil, false
	}
}
