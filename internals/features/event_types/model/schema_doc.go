package model

// The MongoDB half of an event type: the flexible field definitions that
// parameterize per-event custom data. Joined to the canonical row by typeId.

// Field types an event type may declare.
const (
	FieldTypeText    = "text"
	FieldTypeNumber  = "number"
	FieldTypeBoolean = "boolean"
	FieldTypeDate    = "date"
)

type SchemaField struct {
	Name     string `bson:"name"     json:"name"     validate:"required"`
	Type     string `bson:"type"     json:"type"     validate:"required,oneof=text number boolean date"`
	Required bool   `bson:"required" json:"required"`
}

type EventTypeSchemaDoc struct {
	TypeId      string        `bson:"typeId"                json:"type_id"`
	Name        string        `bson:"name"                  json:"name"`
	Description *string       `bson:"description,omitempty" json:"description,omitempty"`
	Fields      []SchemaField `bson:"fields"                json:"fields"`
	CreatedAt   string        `bson:"createdAt"             json:"created_at"`
	UpdatedAt   string        `bson:"updatedAt"             json:"updated_at"`
}
