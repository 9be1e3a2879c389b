package services

// ConvertResult is the success envelope shared by every engine operation.
type ConvertResult struct {
	Success      bool     `json:"success"`
	OutputFiles  []string `json:"output_files"`
	OutputFolder string   `json:"output_folder"`
	Message      string   `json:"message"`
	// Warnings lists capability gaps the caller must know about, such as a
	// password that was accepted but not applied.
	Warnings []string `json:"warnings,omitempty"`
}

// NewResult returns a successful result for the given outputs.
func NewResult(folder, message string, files ...string) ConvertResult {
	out := make([]string, len(files))
	copy(out, files)
	return ConvertResult{
		Success:      true,
		OutputFiles:  out,
		OutputFolder: folder,
		Message:      message,
	}
}

// Warn appends a warning to the result.
func (r *ConvertResult) Warn(msg string) {
	if r == nil || msg == "" {
		return
	}
	r.Warnings = append(r.Warnings, msg)
}
