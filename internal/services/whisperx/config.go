package whisperx

// Config selects the WhisperX model and runtime.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" (default) or "pyannote". Pyannote needs HFToken.
	VADMethod string
	HFToken   string
	// Language accepts names or codes; unrecognized values let WhisperX detect.
	Language string
}

const (
	DefaultModel = "small"
	// UVXCommand launches whisperx in an ephemeral environment.
	UVXCommand = "uvx"
	// OutputSubdir is created next to the input audio for WhisperX output.
	OutputSubdir = "whisperx"
)

// Package indexes for the uvx environment.
const (
	PypiIndexURL = "https://pypi.org/simple"
	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
)

// Decoding flags. Temperature and beam size favour repeatable output.
const (
	BatchSize         = "4"
	ChunkSize         = "30"
	BeamSize          = "5"
	Temperature       = "0.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
)

// Devices and VAD methods.
const (
	CPUDevice         = "cpu"
	CPUComputeType    = "float32"
	CUDADevice        = "cuda"
	VADMethodSilero   = "silero"
	VADMethodPyannote = "pyannote"
)
