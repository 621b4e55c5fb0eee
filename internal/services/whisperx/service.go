package whisperx

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	langpkg "factcheck/internal/language"
	"factcheck/internal/services"
)

// CommandRunner executes an external program. Tests substitute it to avoid
// launching uvx.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service runs WhisperX through uvx and reads back its JSON transcript.
type Service struct {
	cfg    Config
	uvx    string
	runner CommandRunner
}

func NewService(cfg Config) *Service {
	s := &Service{cfg: cfg, uvx: UVXCommand}
	s.runner = s.exec
	return s
}

// WithCommandRunner replaces the process launcher.
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	if runner != nil {
		s.runner = runner
	}
}

func (s *Service) Name() string { return "whisperx" }

// Model is the configured model or DefaultModel.
func (s *Service) Model() string {
	return cmp.Or(s.cfg.Model, DefaultModel)
}

// Binary returns the launcher executable checked during preflight.
func (s *Service) Binary() string { return s.uvx }

// stderrTail bounds how much tool output is carried in an error.
const stderrTail = 2048

func (s *Service) exec(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// torch >= 2.6 loads checkpoints with weights_only=true, which pyannote
	// models do not support.
	if _, set := os.LookupEnv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD"); !set {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	tail := strings.TrimSpace(string(out))
	if len(tail) > stderrTail {
		tail = "..." + tail[len(tail)-stderrTail:]
	}
	return fmt.Errorf("%s exited: %w: %s", name, err, tail)
}

// Transcribe runs WhisperX over the audio file and returns the trimmed segment
// texts joined by single spaces. Output lands beside the audio so it is removed
// with the audio's scoped directory.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (string, error) {
	const stage, op = "transcribe", "whisperx"
	if strings.TrimSpace(audioPath) == "" {
		return "", services.Wrap(services.ErrValidation, stage, op, "source path required", nil)
	}
	outDir := filepath.Join(filepath.Dir(audioPath), OutputSubdir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrTranscription, stage, op, "create output dir", err)
	}
	if err := s.runner(ctx, s.uvx, s.buildArgs(audioPath, outDir)...); err != nil {
		return "", services.Wrap(services.ErrTranscription, stage, op, "run whisperx", err)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	segments, err := LoadSegments(filepath.Join(outDir, stem+".json"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", services.Wrap(services.ErrTranscription, stage, op, "no transcript produced", err)
	case err != nil:
		return "", services.Wrap(services.ErrTranscription, stage, op, "read transcript", err)
	}
	return JoinSegments(segments), nil
}

// buildArgs assembles the uvx invocation: package index selection, whisperx
// decoding flags, VAD, language and device.
func (s *Service) buildArgs(source, outputDir string) []string {
	var args []string
	if s.cfg.CUDAEnabled {
		args = []string{"--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL}
	} else {
		args = []string{"--index-url", PypiIndexURL}
	}

	args = append(args, "whisperx", source)
	for _, flag := range [][2]string{
		{"--model", s.Model()},
		{"--batch_size", BatchSize},
		{"--output_dir", outputDir},
		{"--output_format", OutputFormat},
		{"--segment_resolution", SegmentResolution},
		{"--chunk_size", ChunkSize},
		{"--beam_size", BeamSize},
		{"--temperature", Temperature},
	} {
		args = append(args, flag[0], flag[1])
	}

	vad := cmp.Or(s.cfg.VADMethod, VADMethodSilero)
	args = append(args, "--vad_method", vad)
	if vad == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if iso := langpkg.ToISO2(s.cfg.Language); iso != "" {
		args = append(args, "--language", iso)
	}
	if s.cfg.CUDAEnabled {
		return append(args, "--device", CUDADevice)
	}
	return append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
}

// Segment is one entry of the WhisperX JSON "segments" array.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// LoadSegments decodes a WhisperX JSON output file.
func LoadSegments(path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var doc struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return doc.Segments, nil
}

// JoinSegments concatenates non-blank segment texts with single spaces.
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String()
}
