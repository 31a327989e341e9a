// file: internals/features/event_types/service/registry.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"youthgroup_backend/internals/features/event_types/model"
	"youthgroup_backend/internals/features/events/store"
)

// FlexSchemaStore is the MongoDB slice the registry needs.
type FlexSchemaStore interface {
	PutSchema(ctx context.Context, typeID uuid.UUID, name string, description *string, fields []model.SchemaField) error
	GetSchema(ctx context.Context, typeID uuid.UUID) (*model.EventTypeSchemaDoc, error)
}

// EventTypeView is the merged read of one event type: canonical name and
// description, plus the field list from MongoDB when it is reachable.
type EventTypeView struct {
	EventTypeId     uuid.UUID           `json:"event_type_id"`
	Name            string              `json:"name"`
	Description     *string             `json:"description,omitempty"`
	Fields          []model.SchemaField `json:"fields"`
	SchemaAvailable bool                `json:"schema_available"`
	SchemaError     string              `json:"schema_error,omitempty"`
	SchemaPending   bool                `json:"schema_pending"`
}

type DefineResult struct {
	EventTypeId  uuid.UUID `json:"event_type_id"`
	SchemaStored bool      `json:"schema_stored"`
}

// EventTypeRegistry owns the split event-type record: identity, name and
// description in Postgres, the field definitions in MongoDB, joined by the
// canonical id. The two writes are not transactional; when the Mongo half
// fails the canonical row is kept and flagged schema_pending instead of
// being rolled back, so a later update can repair it.
type EventTypeRegistry struct {
	DB   *gorm.DB
	Flex FlexSchemaStore
}

func NewEventTypeRegistry(db *gorm.DB, flex FlexSchemaStore) *EventTypeRegistry {
	return &EventTypeRegistry{DB: db, Flex: flex}
}

/* ===================== DEFINE ===================== */

func (r *EventTypeRegistry) Define(ctx context.Context, name string, description *string, fields []model.SchemaField) (*DefineResult, error) {
	row := model.EventTypeModel{
		EventTypeName:        name,
		EventTypeDescription: description,
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}

	result := &DefineResult{EventTypeId: row.EventTypeId, SchemaStored: true}

	if err := r.Flex.PutSchema(ctx, row.EventTypeId, name, description, fields); err != nil {
		log.Printf("[WARN] event type %s created in Postgres only, schema write failed: %v", row.EventTypeId, err)
		result.SchemaStored = false
		r.markSchemaPending(ctx, row.EventTypeId, true)
	}
	return result, nil
}

/* ===================== GET / LIST ===================== */

// Get merges both halves. A Mongo failure degrades to an empty field list
// with SchemaAvailable=false; only the canonical read can fail the call.
func (r *EventTypeRegistry) Get(ctx context.Context, typeID uuid.UUID) (*EventTypeView, error) {
	var row model.EventTypeModel
	err := r.DB.WithContext(ctx).
		Where("event_type_id = ?", typeID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	view := &EventTypeView{
		EventTypeId:   row.EventTypeId,
		Name:          row.EventTypeName,
		Description:   row.EventTypeDescription,
		Fields:        []model.SchemaField{},
		SchemaPending: row.EventTypeSchemaPending,
	}

	schema, err := r.Flex.GetSchema(ctx, typeID)
	switch {
	case err == nil:
		view.Fields = schema.Fields
		view.SchemaAvailable = true
	case err == store.ErrNotFound:
		// Canonical row exists but the schema half was never written.
	default:
		view.SchemaError = err.Error()
	}
	return view, nil
}

func (r *EventTypeRegistry) List(ctx context.Context) ([]model.EventTypeModel, error) {
	var rows []model.EventTypeModel
	err := r.DB.WithContext(ctx).
		Order("event_type_created_at ASC").
		Find(&rows).Error
	return rows, err
}

/* ===================== UPDATE ===================== */

// Update writes both halves. A successful schema write clears the pending
// flag; a failed one sets it.
func (r *EventTypeRegistry) Update(ctx context.Context, typeID uuid.UUID, name *string, description *string, fields []model.SchemaField) (*DefineResult, error) {
	updates := map[string]any{}
	if name != nil {
		updates["event_type_name"] = *name
	}
	if description != nil {
		updates["event_type_description"] = *description
	}

	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).
			Model(&model.EventTypeModel{}).
			Where("event_type_id = ?", typeID).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, store.ErrNotFound
		}
	}

	// The schema doc carries name/description too, so re-read the canonical
	// row for the final values.
	var row model.EventTypeModel
	err := r.DB.WithContext(ctx).
		Where("event_type_id = ?", typeID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	result := &DefineResult{EventTypeId: typeID, SchemaStored: true}
	if err := r.Flex.PutSchema(ctx, typeID, row.EventTypeName, row.EventTypeDescription, fields); err != nil {
		log.Printf("[WARN] event type %s updated in Postgres only, schema write failed: %v", typeID, err)
		result.SchemaStored = false
		r.markSchemaPending(ctx, typeID, true)
		return result, nil
	}
	if row.EventTypeSchemaPending {
		r.markSchemaPending(ctx, typeID, false)
	}
	return result, nil
}

func (r *EventTypeRegistry) markSchemaPending(ctx context.Context, typeID uuid.UUID, pending bool) {
	err := r.DB.WithContext(ctx).
		Model(&model.EventTypeModel{}).
		Where("event_type_id = ?", typeID).
		Update("event_type_schema_pending", pending).Error
	if err != nil {
		log.Printf("[ERROR] mark event type %s schema_pending=%v: %v", typeID, pending, err)
	}
}

/* ===================== CUSTOM DATA VALIDATION ===================== */

// ValidateCustomData checks a custom-data payload against declared fields.
// Only called when the strict policy is enabled; the default policy accepts
// anything, matching the legacy behavior.
func ValidateCustomData(fields []model.SchemaField, data map[string]any) error {
	byName := make(map[string]model.SchemaField, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
		if f.Required {
			if _, ok := data[f.Name]; !ok {
				return fmt.Errorf("missing required field %q", f.Name)
			}
		}
	}

	for name, value := range data {
		f, ok := byName[name]
		if !ok {
			return fmt.Errorf("field %q is not declared by the event type", name)
		}
		if value == nil {
			if f.Required {
				return fmt.Errorf("required field %q is null", name)
			}
			continue
		}
		if err := checkFieldType(f, value); err != nil {
			return err
		}
	}
	return nil
}

func checkFieldType(f model.SchemaField, value any) error {
	switch f.Type {
	case model.FieldTypeText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field %q must be text", f.Name)
		}
	case model.FieldTypeNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64:
		default:
			return fmt.Errorf("field %q must be a number", f.Name)
		}
	case model.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field %q must be a boolean", f.Name)
		}
	case model.FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q must be a date string", f.Name)
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return fmt.Errorf("field %q must be YYYY-MM-DD or RFC3339", f.Name)
			}
		}
	default:
		return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
	}
	return nil
}
