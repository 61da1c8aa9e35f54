package models

import "time"

// Submission status constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Reset types recorded in the reset log
const (
	ResetIndividual     = "individual"
	ResetAllUserVotes   = "all_user_votes"
	ResetAllCandidate   = "all_candidate_votes"
	ResetFull           = "full_reset"
	ResetRestore        = "restore"
	DefaultBackupReason = "manual_backup"
)

// PreRestoreBackupReason marks votes set aside by a restore
const PreRestoreBackupReason = "pre_restore"

// Score bounds for a single vote
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Domain types

type User struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type Candidate struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Company        string     `json:"company"`
	Category       string     `json:"category"`
	AssignedJuryID *int64     `json:"assigned_jury_member_id,omitempty"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty"`
	VoteCount      int        `json:"vote_count"`
	AverageScore   float64    `json:"average_score"`
	CreatedAt      time.Time  `json:"created_at"`
}

type JuryMember struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	UserID         *int64    `json:"user_id,omitempty"`
	MaxAssignments int       `json:"max_assignments"`
	CreatedAt      time.Time `json:"created_at"`
}

type Submission struct {
	ID           int64     `json:"id"`
	CandidateID  *int64    `json:"candidate_id,omitempty"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	VoteCount    int       `json:"vote_count"`
	AverageScore float64   `json:"average_score"`
	CreatedAt    time.Time `json:"created_at"`
}

type Vote struct {
	ID           int64     `json:"id"`
	CandidateID  int64     `json:"candidate_id"`
	JuryMemberID int64     `json:"jury_member_id"`
	Round        int       `json:"round"`
	Score        float64   `json:"score"`
	Comments     string    `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type VoteBackup struct {
	ID             int64      `json:"id"`
	OriginalVoteID int64      `json:"original_vote_id"`
	CandidateID    int64      `json:"candidate_id"`
	JuryMemberID   int64      `json:"jury_member_id"`
	Round          int        `json:"round"`
	Score          float64    `json:"score"`
	Comments       string     `json:"comments"`
	VotedAt        time.Time  `json:"voted_at"`
	BackedUpBy     int64      `json:"backed_up_by"`
	BackupReason   string     `json:"backup_reason"`
	BackedUpAt     time.Time  `json:"backed_up_at"`
	RestoredAt     *time.Time `json:"restored_at,omitempty"`
	RestoredBy     *int64     `json:"restored_by,omitempty"`

	// Display names joined for history listings
	CandidateName  string `json:"candidate_name,omitempty"`
	JuryMemberName string `json:"jury_member_name,omitempty"`
	BackedUpByName string `json:"backed_up_by_name,omitempty"`
}

type ResetLog struct {
	ID                  int64     `json:"id"`
	ResetType           string    `json:"reset_type"`
	InitiatedBy         int64     `json:"initiated_by"`
	AffectedJuryMember  *int64    `json:"affected_jury_member_id,omitempty"`
	AffectedCandidateID *int64    `json:"affected_candidate_id,omitempty"`
	Reason              string    `json:"reset_reason"`
	VotesAffected       int       `json:"votes_affected"`
	BackupID            *int64    `json:"backup_id,omitempty"`
	ResetAt             time.Time `json:"reset_at"`

	InitiatedByName string `json:"initiated_by_name,omitempty"`
}

type AssignmentCount struct {
	JuryMemberID int64  `json:"jury_member_id"`
	Name         string `json:"name"`
	Assigned     int    `json:"assigned"`
}

// AssignmentRow is one candidate line of the assignments export
type AssignmentRow struct {
	CandidateName string
	Company       string
	Category      string
	JuryName      string
	AssignedAt    *time.Time
}

// PendingEvaluation counts assigned candidates a jury member has not scored
type PendingEvaluation struct {
	JuryMemberID int64  `json:"jury_member_id"`
	Name         string `json:"name"`
	Pending      int    `json:"pending"`
}

// Summary is the daily report snapshot
type Summary struct {
	Candidates  int `json:"candidates"`
	Assigned    int `json:"assigned"`
	JuryMembers int `json:"jury_members"`
	Votes       int `json:"votes"`
	Backups     int `json:"backups"`
	Submissions int `json:"submissions"`
}

// CandidateStats holds ranking statistics for a candidate's votes
type CandidateStats struct {
	CandidateID int64   `json:"candidate_id"`
	Name        string  `json:"name"`
	VoteCount   int     `json:"vote_count"`
	Median      float64 `json:"median"`
	P10         float64 `json:"p10"`
	P90         float64 `json:"p90"`
	Mean        float64 `json:"mean"`
	Rank        int     `json:"rank"` // 1-indexed ranking
}

// Request types

type CreateUserRequest struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type CreateCandidateRequest struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Category string `json:"category"`
}

type CreateJuryMemberRequest struct {
	Name           string `json:"name"`
	UserID         *int64 `json:"user_id,omitempty"`
	MaxAssignments int    `json:"max_assignments"`
}

type CreateSubmissionRequest struct {
	CandidateID *int64 `json:"candidate_id,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

type SetSubmissionStatusRequest struct {
	Status string `json:"status"`
}

type SubmitVoteRequest struct {
	CandidateID  int64   `json:"candidate_id"`
	JuryMemberID int64   `json:"jury_member_id,omitempty"` // admins only
	Round        int     `json:"round"`
	Score        float64 `json:"score"`
	Comments     string  `json:"comments"`
}

type BackupVoteRequest struct {
	CandidateID  int64  `json:"candidate_id"`
	JuryMemberID int64  `json:"jury_member_id"`
	Reason       string `json:"reason"`
}

type BulkBackupRequest struct {
	CandidateID  *int64 `json:"candidate_id,omitempty"`
	JuryMemberID *int64 `json:"jury_member_id,omitempty"`
	Round        *int   `json:"round,omitempty"`
	Reason       string `json:"reason"`
}

type CleanupRequest struct {
	Days int `json:"days"`
}

type ResetVoteRequest struct {
	CandidateID  int64  `json:"candidate_id"`
	JuryMemberID int64  `json:"jury_member_id"`
	Reason       string `json:"reason"`
}

type BulkResetRequest struct {
	Scope        string `json:"scope"`
	CandidateID  *int64 `json:"candidate_id,omitempty"`
	JuryMemberID *int64 `json:"jury_member_id,omitempty"`
	Confirm      bool   `json:"confirm"`
	Reason       string `json:"reason"`
}

type UpdateSettingsRequest struct {
	VotingEnabled *bool `json:"voting_enabled"`
}

// Response types

type CreateUserResponse struct {
	User    User   `json:"user"`
	UserKey string `json:"user_key"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}

type NonceResponse struct {
	Action string `json:"action"`
	Nonce  string `json:"nonce"`
}

type BackupResponse struct {
	BackupID int64  `json:"backup_id"`
	Message  string `json:"message"`
}

type BulkBackupResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

type RestoreResponse struct {
	Vote    Vote   `json:"vote"`
	Message string `json:"message"`
}

type ResetResponse struct {
	VotesReset int     `json:"votes_reset"`
	BackupIDs  []int64 `json:"backup_ids"`
	Message    string  `json:"message"`
}

type BackupHistoryResponse struct {
	Backups     []VoteBackup `json:"backups"`
	Total       int          `json:"total"`
	Pages       int          `json:"pages"`
	CurrentPage int          `json:"current_page"`
}

type ResetHistoryResponse struct {
	Resets      []ResetLog `json:"resets"`
	Total       int        `json:"total"`
	Pages       int        `json:"pages"`
	CurrentPage int        `json:"current_page"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type BackupStatsResponse struct {
	TotalBackups  int           `json:"total_backups"`
	ByReason      []ReasonCount `json:"by_reason"`
	RecentBackups int           `json:"recent_backups"`
	Restorations  int           `json:"restorations"`
	StorageBytes  int64         `json:"storage_bytes"`
	StorageSize   string        `json:"storage_size"`
}

type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
	Days    int   `json:"days"`
}

type SettingsResponse struct {
	Group         string `json:"group"`
	VotingEnabled bool   `json:"voting_enabled"`
}

type MenuItem struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Capability string     `json:"capability"`
	Children   []MenuItem `json:"children,omitempty"`
}

type DeactivateResponse struct {
	ClearedJobs       []string `json:"cleared_jobs"`
	ClearedTransients int      `json:"cleared_transients"`
}

type RankingsResponse struct {
	Round    int              `json:"round"`
	Rankings []CandidateStats `json:"rankings"`
}

// AJAX envelope, mirrors the success/data shape browser code expects

type AjaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type AjaxMessage struct {
	Message string `json:"message"`
}

type AutoAssignResult struct {
	Message       string        `json:"message"`
	Assignments   map[int64]int `json:"assignments"`
	TotalAssigned int           `json:"total_assigned"`
	Algorithm     string        `json:"algorithm"`
	Cleared       int64         `json:"cleared"`
}

type AssignmentCandidate struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Company      string `json:"company"`
	Category     string `json:"category"`
	Assigned     bool   `json:"assigned"`
	JuryMemberID *int64 `json:"jury_member_id"`
	DateCreated  string `json:"date_created"`
}

type AssignmentJuryMember struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Assignments    int    `json:"assignments"`
	MaxAssignments int    `json:"maxAssignments"`
}

type AssignmentStatistics struct {
	TotalCandidates int    `json:"totalCandidates"`
	TotalJury       int    `json:"totalJury"`
	AssignedCount   int    `json:"assignedCount"`
	CompletionRate  string `json:"completionRate"`
	AvgPerJury      string `json:"avgPerJury"`
}

type AssignmentData struct {
	Candidates  []AssignmentCandidate  `json:"candidates"`
	JuryMembers []AssignmentJuryMember `json:"jury_members"`
	Statistics  AssignmentStatistics   `json:"statistics"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
