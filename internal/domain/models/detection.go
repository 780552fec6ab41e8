package models

// ScamCategory classifies what kind of scam a message appears to be.
type ScamCategory string

const (
	CategoryLottery     ScamCategory = "lottery"
	CategoryPrize       ScamCategory = "prize"
	CategoryTechSupport ScamCategory = "tech_support"
	CategoryJob         ScamCategory = "job"
	CategoryRomance     ScamCategory = "romance"
	CategoryPhishing    ScamCategory = "phishing"
	CategoryBank        ScamCategory = "bank"
	CategoryOther       ScamCategory = "other"
)

// DetectionStage names the pipeline stage that produced a score.
type DetectionStage string

const (
	StageRules     DetectionStage = "rules"
	StageDataset   DetectionStage = "dataset"
	StageURL       DetectionStage = "url"
	StageModel     DetectionStage = "model"
	StageValidator DetectionStage = "validator"
)

// DetectionResult is the outcome of running a message through the
// detection cascade. Confidence is 0-100; IsScam is derived from it
// against the configured decision threshold.
type DetectionResult struct {
	IsScam          bool         `json:"is_scam"`
	Confidence      int          `json:"confidence"`
	Category        ScamCategory `json:"category"`
	Reasoning       []string     `json:"reasoning"`
	MatchedKeywords []string     `json:"matched_keywords,omitempty"`
	URLs            []URLIntel   `json:"urls,omitempty"`
	DetectionTimeMS int64        `json:"detection_time_ms"`
}

// URLIntel is the risk assessment of a single URL found in a message.
type URLIntel struct {
	URL           string   `json:"url"`
	FinalURL      string   `json:"final_url,omitempty"`
	Risk          int      `json:"risk"`
	Suspicious    bool     `json:"suspicious"`
	KnownPhishing bool     `json:"known_phishing"`
	Reasons       []string `json:"reasons,omitempty"`
}
