package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUser        = "user_id"
	FieldSession     = "session_id"
	FieldMutation    = "mutation"
	FieldAction      = "action"
	FieldKey         = "query_key"
	FieldPatterns    = "patterns"
	FieldInvalidated = "invalidated"
	FieldEntityType  = "entity_type"
	FieldEntityID    = "entity_id"
	FieldDuration    = "duration_ms"
	FieldExchange    = "exchange"
)

// Components
const (
	ComponentApp       = "app"
	ComponentLedger    = "ledger"
	ComponentBrowse    = "browse"
	ComponentSession   = "session"
	ComponentCache     = "cache"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentEffects   = "effects"
	ComponentCLI       = "cli"
	ComponentInvariant = "invariant"
)

// Operations
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpList       = "list"
	OpDispatch   = "dispatch"
	OpInvalidate = "invalidate"
	OpPublish    = "publish"
	OpConsume    = "consume"
)

// LogFields is a builder for structured log fields.
type LogFields map[string]any

// NewFields creates an empty LogFields.
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds the component field.
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error field when err is not nil.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds the operation field.
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEntity adds entity type and id fields.
func (f LogFields) WithEntity(entityType, entityID string) LogFields {
	f[FieldEntityType] = entityType
	f[FieldEntityID] = entityID
	return f
}

// WithMutation adds the mutation variant field.
func (f LogFields) WithMutation(variant string) LogFields {
	f[FieldMutation] = variant
	return f
}

// Merge copies every entry of other into f.
func (f LogFields) Merge(other map[string]any) LogFields {
	for k, v := range other {
		f[k] = v
	}
	return f
}

// ToSlice converts LogFields to key/value pairs for slog.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
