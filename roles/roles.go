// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roles

import "sort"

// Role names
const (
	Administrator = "administrator"
	AwardAdmin    = "mt_award_admin"
	JuryMember    = "mt_jury_member"
)

// Custom capabilities
const (
	CapManageAwards        = "mt_manage_awards"
	CapManageAssignments   = "mt_manage_assignments"
	CapViewAllEvaluations  = "mt_view_all_evaluations"
	CapManageVoting        = "mt_manage_voting"
	CapExportData          = "mt_export_data"
	CapManageJuryMembers   = "mt_manage_jury_members"
	CapSubmitEvaluations   = "mt_submit_evaluations"
	CapViewCandidates      = "mt_view_candidates"
	CapAccessJuryDashboard = "mt_access_jury_dashboard"
	CapExportOwn           = "mt_export_own_evaluations"
	CapResetVotes          = "mt_reset_votes"
	CapCreateBackups       = "mt_create_backups"
	CapRestoreBackups      = "mt_restore_backups"
	CapManageOptions       = "manage_options"
	CapRead                = "read"
)

// Role is a named set of granted capabilities.
type Role struct {
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Capabilities map[string]bool `json:"capabilities"`
}

// Has reports whether the role grants capability.
func (r Role) Has(capability string) bool {
	return r.Capabilities[capability]
}

// entityCaps expands the per-record capabilities of an entity type.
func entityCaps(singular, plural string) []string {
	return []string{
		"edit_" + singular,
		"read_" + singular,
		"delete_" + singular,
		"edit_" + plural,
		"edit_others_" + plural,
		"publish_" + plural,
		"read_private_" + plural,
		"delete_" + plural,
		"delete_private_" + plural,
		"delete_published_" + plural,
		"delete_others_" + plural,
		"edit_private_" + plural,
		"edit_published_" + plural,
	}
}

// juryLinkedCaps are granted to any user linked to a jury member record,
// whatever their role.
var juryLinkedCaps = []string{
	CapSubmitEvaluations,
	CapViewCandidates,
	CapAccessJuryDashboard,
	CapExportOwn,
}

// AllCapabilities lists every capability the application defines.
func AllCapabilities() []string {
	caps := []string{
		CapManageAwards,
		CapManageAssignments,
		CapViewAllEvaluations,
		CapManageVoting,
		CapExportData,
		CapManageJuryMembers,
		CapSubmitEvaluations,
		CapViewCandidates,
		CapAccessJuryDashboard,
		CapExportOwn,
		CapResetVotes,
		CapCreateBackups,
		CapRestoreBackups,
	}
	caps = append(caps, entityCaps("mt_candidate", "mt_candidates")...)
	caps = append(caps, entityCaps("mt_jury_member", "mt_jury_members")...)
	caps = append(caps, entityCaps("mt_jury", "mt_jurys")...)
	caps = append(caps, entityCaps("mt_backup", "mt_backups")...)
	return caps
}

func grant(caps ...[]string) map[string]bool {
	m := make(map[string]bool)
	for _, list := range caps {
		for _, c := range list {
			m[c] = true
		}
	}
	return m
}

var definitions = map[string]Role{
	Administrator: {
		Name:         Administrator,
		Label:        "Administrator",
		Capabilities: grant(AllCapabilities(), []string{CapManageOptions, CapRead}),
	},
	AwardAdmin: {
		Name:  AwardAdmin,
		Label: "MT Award Admin",
		Capabilities: grant(
			[]string{
				CapRead,
				"upload_files",
				CapManageAwards,
				CapManageAssignments,
				CapViewAllEvaluations,
				CapManageVoting,
				CapExportData,
				CapManageJuryMembers,
			},
			entityCaps("mt_candidate", "mt_candidates"),
			entityCaps("mt_jury", "mt_jurys"),
			entityCaps("mt_jury_member", "mt_jury_members"),
		),
	},
	JuryMember: {
		Name:  JuryMember,
		Label: "MT Jury Member",
		Capabilities: grant(
			[]string{CapRead},
			juryLinkedCaps,
			[]string{"read_mt_candidate", "read_private_mt_candidates"},
		),
	},
}

// Lookup returns the role definition with the given name.
func Lookup(name string) (Role, bool) {
	r, ok := definitions[name]
	return r, ok
}

// Names returns the defined role names sorted.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns every role sorted by name.
func Definitions() []Role {
	out := make([]Role, 0, len(definitions))
	for _, name := range Names() {
		out = append(out, definitions[name])
	}
	return out
}

// Can reports whether a user with role holds capability. linkedJury is true
// when the user is linked to a jury member record, which grants the jury
// evaluation capabilities regardless of role.
func Can(role string, linkedJury bool, capability string) bool {
	if r, ok := definitions[role]; ok && r.Has(capability) {
		return true
	}
	if linkedJury {
		for _, c := range juryLinkedCaps {
			if c == capability {
				return true
			}
		}
	}
	return false
}

// Valid reports whether name is a defined role.
func Valid(name string) bool {
	_, ok := definitions[name]
	return ok
}
