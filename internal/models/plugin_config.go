package models

// Plugin identity in assign_plugin_config.
const (
	PluginName    = "forum"
	PluginSubtype = "assignsubmission"
)

// Plugin config names.
const (
	ConfigEnabled          = "enabled"
	ConfigForumID          = "forumid"
	ConfigWordLimit        = "wordlimit"
	ConfigWordLimitEnabled = "wordlimitenabled"
)

// PluginConfig represents one persisted plugin setting of an assignment.
type PluginConfig struct {
	ID         int64  `db:"id" json:"id"`
	Assignment int64  `db:"assignment" json:"assignment"`
	Plugin     string `db:"plugin" json:"plugin"`
	Subtype    string `db:"subtype" json:"subtype"`
	Name       string `db:"name" json:"name"`
	Value      string `db:"value" json:"value"`
}
