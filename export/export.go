// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/trailblazers/i18n"
	"github.com/danielhkuo/trailblazers/models"
)

// FormatVersion is stamped into JSON backup exports.
const FormatVersion = "1"

// utf8BOM lets spreadsheet applications detect the encoding of backup CSVs.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Labeler translates column header keys.
type Labeler interface {
	T(key string) string
}

// AssignmentsFilename is the download name for an assignments export.
func AssignmentsFilename(now time.Time) string {
	return "assignments-" + now.Format("2006-01-02") + ".csv"
}

// BackupsFilename is the download name for a backup export in format.
func BackupsFilename(now time.Time, format string) string {
	return "vote-backups-" + now.Format("2006-01-02-150405") + "." + format
}

// WriteAssignmentsCSV writes one row per candidate: name, company, category,
// assigned jury member and assignment date (empty when unassigned).
func WriteAssignmentsCSV(w io.Writer, rows []models.AssignmentRow, labels Labeler) error {
	cw := csv.NewWriter(w)

	header := []string{
		labels.T(i18n.CandidateName),
		labels.T(i18n.Company),
		labels.T(i18n.Category),
		labels.T(i18n.AssignedTo),
		labels.T(i18n.AssignmentDate),
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		date := ""
		if r.AssignedAt != nil {
			date = r.AssignedAt.Format("2006-01-02")
		}
		record := []string{
			i18n.Normalize(r.CandidateName),
			i18n.Normalize(r.Company),
			i18n.Normalize(r.Category),
			i18n.Normalize(r.JuryName),
			date,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var backupColumns = []string{
	"id", "original_vote_id", "candidate_id", "candidate_name", "jury_member_id", "jury_member_name",
	"round", "score", "comments", "voted_at", "backed_up_by", "backup_reason", "backed_up_at",
	"restored_at", "restored_by",
}

// WriteBackupsCSV writes every backup with a UTF-8 BOM and a header row.
func WriteBackupsCSV(w io.Writer, backups []models.VoteBackup) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(backupColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, b := range backups {
		restoredAt, restoredBy := "", ""
		if b.RestoredAt != nil {
			restoredAt = b.RestoredAt.UTC().Format(time.RFC3339)
		}
		if b.RestoredBy != nil {
			restoredBy = strconv.FormatInt(*b.RestoredBy, 10)
		}
		record := []string{
			strconv.FormatInt(b.ID, 10),
			strconv.FormatInt(b.OriginalVoteID, 10),
			strconv.FormatInt(b.CandidateID, 10),
			b.CandidateName,
			strconv.FormatInt(b.JuryMemberID, 10),
			b.JuryMemberName,
			strconv.Itoa(b.Round),
			strconv.FormatFloat(b.Score, 'f', -1, 64),
			b.Comments,
			b.VotedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(b.BackedUpBy, 10),
			b.BackupReason,
			b.BackedUpAt.UTC().Format(time.RFC3339),
			restoredAt,
			restoredBy,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// BackupDocument is the JSON backup export envelope.
type BackupDocument struct {
	ExportID      string              `json:"export_id"`
	ExportDate    time.Time           `json:"export_date"`
	ExportVersion string              `json:"export_version"`
	Count         int                 `json:"count"`
	Backups       []models.VoteBackup `json:"backups"`
}

// WriteBackupsJSON writes an indented export document and returns its id.
func WriteBackupsJSON(w io.Writer, backups []models.VoteBackup, now time.Time) (string, error) {
	if backups == nil {
		backups = []models.VoteBackup{}
	}
	doc := BackupDocument{
		ExportID:      uuid.NewString(),
		ExportDate:    now.UTC(),
		ExportVersion: FormatVersion,
		Count:         len(backups),
		Backups:       backups,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode backups: %w", err)
	}
	return doc.ExportID, nil
}
