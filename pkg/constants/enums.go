package constants

// DocumentStatus represents the publish state of a page or collection item
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusPublished DocumentStatus = "PUBLISHED"
)

// CollectionFieldType represents the type of a collection field
type CollectionFieldType string

const (
	FieldTypeText        CollectionFieldType = "text"
	FieldTypeRichText    CollectionFieldType = "richtext"
	FieldTypeNumber      CollectionFieldType = "number"
	FieldTypeBoolean     CollectionFieldType = "boolean"
	FieldTypeDate        CollectionFieldType = "date"
	FieldTypeSelect      CollectionFieldType = "select"
	FieldTypeMultiSelect CollectionFieldType = "multiselect"
)

// ValidCollectionFieldTypes is the closed set accepted by collection schema CRUD.
var ValidCollectionFieldTypes = map[CollectionFieldType]bool{
	FieldTypeText:        true,
	FieldTypeRichText:    true,
	FieldTypeNumber:      true,
	FieldTypeBoolean:     true,
	FieldTypeDate:        true,
	FieldTypeSelect:      true,
	FieldTypeMultiSelect: true,
}

// ComponentStatus represents the lifecycle status of a registry component type
type ComponentStatus string

const (
	ComponentStatusStable       ComponentStatus = "stable"
	ComponentStatusBeta         ComponentStatus = "beta"
	ComponentStatusExperimental ComponentStatus = "experimental"
	ComponentStatusDeprecated   ComponentStatus = "deprecated"
)

// UserRole represents the access level of an editor account
type UserRole string

const (
	RoleAdmin  UserRole = "Admin"
	RoleEditor UserRole = "Editor"
)

// Sort directions
const (
	SortASC  = "ASC"
	SortDESC = "DESC"
)
