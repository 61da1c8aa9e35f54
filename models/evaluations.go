package models

import (
	"math"
	"time"
)

// Evaluation status constants
const (
	EvaluationDraft     = "draft"
	EvaluationCompleted = "completed"
)

// Criteria are the five scored aspects of an evaluation, each 0 to 10.
type Criteria struct {
	Courage        float64 `json:"courage_score"`
	Innovation     float64 `json:"innovation_score"`
	Implementation float64 `json:"implementation_score"`
	Relevance      float64 `json:"relevance_score"`
	Visibility     float64 `json:"visibility_score"`
}

// Scores returns the criteria in display order.
func (c Criteria) Scores() []float64 {
	return []float64{c.Courage, c.Innovation, c.Implementation, c.Relevance, c.Visibility}
}

// Total is the equally weighted mean of the criteria, rounded to two places.
func (c Criteria) Total() float64 {
	var sum float64
	scores := c.Scores()
	for _, s := range scores {
		sum += s
	}
	return math.Round(sum/float64(len(scores))*100) / 100
}

type Evaluation struct {
	ID           int64 `json:"id"`
	CandidateID  int64 `json:"candidate_id"`
	JuryMemberID int64 `json:"jury_member_id"`
	Round        int   `json:"round"`
	Criteria
	TotalScore float64   `json:"total_score"`
	Comments   string    `json:"comments"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type EvaluationBackup struct {
	ID                   int64 `json:"id"`
	OriginalEvaluationID int64 `json:"original_evaluation_id"`
	CandidateID          int64 `json:"candidate_id"`
	JuryMemberID         int64 `json:"jury_member_id"`
	Round                int   `json:"round"`
	Criteria
	TotalScore     float64    `json:"total_score"`
	Comments       string     `json:"comments"`
	Status         string     `json:"status"`
	EvaluatedAt    time.Time  `json:"evaluated_at"`
	BackedUpBy     int64      `json:"backed_up_by"`
	BackupReason   string     `json:"backup_reason"`
	BackedUpAt     time.Time  `json:"backed_up_at"`
	RestoredAt     *time.Time `json:"restored_at,omitempty"`
	RestoredBy     *int64     `json:"restored_by,omitempty"`
	CandidateName  string     `json:"candidate_name,omitempty"`
	JuryMemberName string     `json:"jury_member_name,omitempty"`
}

// SubmitEvaluationRequest scores a candidate. Omitted criteria count as 0
// for drafts; a completed evaluation needs all five.
type SubmitEvaluationRequest struct {
	CandidateID    int64    `json:"candidate_id"`
	JuryMemberID   int64    `json:"jury_member_id,omitempty"`
	Round          int      `json:"round,omitempty"`
	Courage        *float64 `json:"courage_score,omitempty"`
	Innovation     *float64 `json:"innovation_score,omitempty"`
	Implementation *float64 `json:"implementation_score,omitempty"`
	Relevance      *float64 `json:"relevance_score,omitempty"`
	Visibility     *float64 `json:"visibility_score,omitempty"`
	Comments       string   `json:"comments,omitempty"`
	Status         string   `json:"status,omitempty"`
}

type EvaluationBackupRequest struct {
	CandidateID  int64  `json:"candidate_id"`
	JuryMemberID int64  `json:"jury_member_id"`
	Reason       string `json:"reason,omitempty"`
}

type EvaluationRestoreResponse struct {
	Evaluation Evaluation `json:"evaluation"`
	Message    string     `json:"message"`
}

type EvaluationBackupHistoryResponse struct {
	Backups     []EvaluationBackup `json:"backups"`
	Total       int                `json:"total"`
	Pages       int                `json:"pages"`
	CurrentPage int                `json:"current_page"`
}
