package models

// EntityType describes how a record kind is exposed, in the spirit of a
// registered content type: whether anonymous clients may read it, whether it
// gets a listing route, and which capability guards it otherwise.
type EntityType struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Public     bool   `json:"public"`
	ShowInREST bool   `json:"show_in_rest"`
	RESTBase   string `json:"rest_base"`
	Capability string `json:"capability"`
}

// Entity type names
const (
	EntityCandidate  = "mt_candidate"
	EntityJury       = "mt_jury"
	EntitySubmission = "mt_submission"
	EntityBackup     = "mt_backup"
)

// EntityTypes is the fixed registry of record kinds, in menu order.
var EntityTypes = []EntityType{
	{
		Name:       EntityCandidate,
		Label:      "Candidates",
		Public:     true,
		ShowInREST: true,
		RESTBase:   "candidates",
		Capability: "mt_view_candidates",
	},
	{
		Name:       EntityJury,
		Label:      "Jury Members",
		Public:     false,
		ShowInREST: true,
		RESTBase:   "jury",
		Capability: "mt_manage_assignments",
	},
	{
		Name:       EntitySubmission,
		Label:      "Submissions",
		Public:     false,
		ShowInREST: true,
		RESTBase:   "submissions",
		Capability: "mt_manage_awards",
	},
	{
		Name:       EntityBackup,
		Label:      "Vote Backups",
		Public:     false,
		ShowInREST: false,
		RESTBase:   "backups",
		Capability: "mt_manage_voting",
	},
}

// LookupEntityType returns the registered type with the given name.
func LookupEntityType(name string) (EntityType, bool) {
	for _, et := range EntityTypes {
		if et.Name == name {
			return et, true
		}
	}
	return EntityType{}, false
}
