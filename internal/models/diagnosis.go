package models

// DiagnosisResult is the structured bug report returned to callers.
// Every field is always populated; BugLocation is display text, not a parsed line reference.
type DiagnosisResult struct {
	BugLocation string `json:"bugLocation" yaml:"bugLocation"`
	Confidence  int    `json:"confidence" yaml:"confidence"`
	Suggestion  string `json:"suggestion" yaml:"suggestion"`
	Fix         string `json:"fix" yaml:"fix"`
	Before      string `json:"before" yaml:"before"`
	After       string `json:"after" yaml:"after"`
}

// AnalysisRequest is the inbound payload. All fields are optional.
type AnalysisRequest struct {
	ScreenshotName string `json:"screenshotName,omitempty"`
	CodeName       string `json:"codeName,omitempty"`
	CodeContent    string `json:"codeContent,omitempty"`
}

type AnalysisSource string

const (
	SourceLive     AnalysisSource = "live"
	SourceFallback AnalysisSource = "fallback"
)

// Analysis wraps a DiagnosisResult with its provenance.
type Analysis struct {
	Result   DiagnosisResult `json:"result"`
	Source   AnalysisSource  `json:"source"`
	Provider string          `json:"provider,omitempty"`
	Model    string          `json:"model,omitempty"`
	Usage    *TokenUsage     `json:"usage,omitempty"`
}

// IsLive reports whether the result came from the inference provider.
func (a *Analysis) IsLive() bool {
	return a.Source == SourceLive
}
