package constants

// Common column / JSON field names
const (
	FieldID          = "id"
	FieldSiteID      = "site_id"
	FieldSlug        = "slug"
	FieldName        = "name"
	FieldStatus      = "status"
	FieldVersion     = "version"
	FieldDocumentID  = "document_id"
	FieldContentJSON = "content_json"
	FieldDataJSON    = "data_json"
	FieldNote        = "note"
	FieldCreatedBy   = "created_by"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
	FieldMessage     = "message"
)

// HTTP / context keys
const (
	HeaderAuthorization = "Authorization"
	ContextKeyUser      = "user"
	ResponseError       = "error"
)
