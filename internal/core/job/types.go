package job

import "encoding/json"

// Stage is a discrete phase of an analysis job. The order of the
// non-terminal values is the forward order a job moves through.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageScraping   Stage = "scraping"
	StageResolving  Stage = "resolving"
	StageExtracting Stage = "extracting"
	StageAnalyzing  Stage = "analyzing"
	StageCompleted  Stage = "completed"
	StageError      Stage = "error"
)

var stageRank = map[Stage]int{
	StageIdle:       0,
	StageScraping:   1,
	StageResolving:  2,
	StageExtracting: 3,
	StageAnalyzing:  4,
	StageCompleted:  5,
}

// Terminal reports whether no further polling happens in this stage.
func (s Stage) Terminal() bool { return s == StageCompleted || s == StageError }

// Before reports whether s comes strictly before o in the forward order.
// StageError is not part of the order and is never before or after anything.
func (s Stage) Before(o Stage) bool {
	a, okA := stageRank[s]
	b, okB := stageRank[o]
	return okA && okB && a < b
}

// State is the read-only view of a tracked job handed to presentation code.
type State struct {
	JobID         string     `json:"job_id,omitempty"`
	Stage         Stage      `json:"stage"`
	Progress      int        `json:"progress"`
	StatusMessage string     `json:"status_message"`
	JobData       *JobResult `json:"job_data,omitempty"`
	Error         string     `json:"error,omitempty"`
	IsLoading     bool       `json:"is_loading"`
}

// Idle returns the zero state every tracker starts from and resets to.
func Idle() State { return State{Stage: StageIdle} }

// JobResult is the final payload returned by the job_data endpoint.
type JobResult struct {
	JobID    string    `json:"job_id"`
	Author   string    `json:"author"`
	Articles []Article `json:"results"`
}

type AILabel string

const (
	AILabelReal AILabel = "real"
	AILabelFake AILabel = "fake"
)

// Article is carried through untouched from the backend.
type Article struct {
	Title            string            `json:"title"`
	Year             *int              `json:"year"`
	Link             *string           `json:"link"`
	Citations        *int              `json:"citations"`
	DOI              *string           `json:"doi"`
	Verified         bool              `json:"verified"`
	OpenAccess       bool              `json:"open_access"`
	AILabel          *AILabel          `json:"ai_analyzer_label,omitempty"`
	AIScore          *float64          `json:"ai_analyzer_score,omitempty"`
	PlagiarismResult *PlagiarismResult `json:"plagiarism_checker_results,omitempty"`
}

type PlagiarismResult struct {
	Status          int                   `json:"status"`
	ScanInformation PlagiarismScanInfo    `json:"scanInformation"`
	Result          PlagiarismScore       `json:"result"`
	Sources         []json.RawMessage     `json:"sources"`
	SimilarWords    []json.RawMessage     `json:"similarWords"`
	Indexes         []json.RawMessage     `json:"indexes"`
	Citations       []json.RawMessage     `json:"citations"`
	AttackDetected  PlagiarismAttackFlags `json:"attackDetected"`
	Text            string                `json:"text"`
	CreditsUsed     int                   `json:"credits_used"`
	CreditsLeft     int                   `json:"credits_remaining"`
}

type PlagiarismScanInfo struct {
	Service   string `json:"service"`
	ScanTime  string `json:"scanTime"`
	InputType string `json:"inputType"`
}

type PlagiarismScore struct {
	Score                float64 `json:"score"`
	SourceCounts         int     `json:"sourceCounts"`
	TextWordCounts       int     `json:"textWordCounts"`
	TotalPlagiarismWords int     `json:"totalPlagiarismWords"`
	IdenticalWordCounts  int     `json:"identicalWordCounts"`
	SimilarWordCounts    int     `json:"similarWordCounts"`
}

type PlagiarismAttackFlags struct {
	ZeroWidthSpace  bool `json:"zero_width_space"`
	HomoglyphAttack bool `json:"homoglyph_attack"`
}
