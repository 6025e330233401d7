package constants

// System table names. Fixed set - content and collection data live in JSON
// columns, so no tables are ever created at runtime.
const (
	TableSite               = "_Site"
	TablePage               = "_Page"
	TablePageRevision       = "_PageRevision"
	TableCollection         = "_Collection"
	TableCollectionItem     = "_CollectionItem"
	TableItemRevision       = "_CollectionItemRevision"
	TableValidationRule     = "_ValidationRule"
	TableScheduledPublish   = "_ScheduledPublish"
	TableUser               = "_User"
	TableSession            = "_Session"
)

// AllTables lists every system table, used by bootstrap and the wipe command.
var AllTables = []string{
	TableSite,
	TablePage,
	TablePageRevision,
	TableCollection,
	TableCollectionItem,
	TableItemRevision,
	TableValidationRule,
	TableScheduledPublish,
	TableUser,
	TableSession,
}
