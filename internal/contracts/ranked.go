package contracts

// BatchEntry is one slot of a batch run, in original input order
// ⭐ SSOT: 배치 결과 → S3 랭킹 전달 (Index가 동점 정렬 기준)
type BatchEntry struct {
	Index  int          `json:"index"`
	Symbol string       `json:"ticker"`
	Result *ScoreResult `json:"result,omitempty"`
	Err    error        `json:"-"`
}

// Failed reports whether the entry represents a failed fetch
func (e *BatchEntry) Failed() bool {
	return e.Err != nil || e.Result == nil
}

// ErrorMessage returns the failure text ("" when successful)
func (e *BatchEntry) ErrorMessage() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Result == nil {
		return "no result"
	}
	return ""
}

// BatchReport is the outcome of a batch run
type BatchReport struct {
	RunID  string        `json:"run_id"`
	Total  int           `json:"total"`
	Failed int           `json:"failed"`
	Ranked []ScoreResult `json:"ranked"`
	Errors []BatchError  `json:"errors,omitempty"`
}

// BatchError describes one failed ticker
type BatchError struct {
	Symbol string `json:"ticker"`
	Error  string `json:"error"`
}
