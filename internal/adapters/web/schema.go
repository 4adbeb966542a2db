package web

import (
	"encoding/json"
	"reflect"
	"sort"

	"facturatie/internal/app"
	"facturatie/internal/core"
	"facturatie/internal/reminder"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	numberType  = reflect.TypeOf(core.Number{})
	rawType     = reflect.TypeOf(json.RawMessage{})
)

// numericSchema accepts a JSON number or a numeric string.
func numericSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "string"},
		},
		Description: description,
	}
}

func newReflector() *jsonschema.Reflector {
	lineReflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    mapScalar,
	}
	line := lineReflector.Reflect(core.LineInput{})
	line.Version = ""

	return &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == rawType {
				return &jsonschema.Schema{Type: "array", Items: line}
			}
			return mapScalar(t)
		},
	}
}

func mapScalar(t reflect.Type) *jsonschema.Schema {
	switch t {
	case decimalType:
		return numericSchema("decimal amount")
	case numberType:
		return numericSchema("number; unparsable input counts as zero unless strict input is enabled")
	}
	return nil
}

// buildSchemas reflects every request body the API accepts.
func buildSchemas() map[string]*jsonschema.Schema {
	r := newReflector()
	types := map[string]any{
		"calculate-line":       app.CalculateLineRequest{},
		"calculate-invoice":    app.CalculateInvoiceRequest{},
		"count-cash":           app.CountCashRequest{},
		"reminder-stage":       app.ReminderStageRequest{},
		"plan-reminders":       app.PlanRemindersRequest{},
		"reminder-sent":        reminder.Action{},
		"create-sales-invoice": app.CreateSalesInvoiceRequest{},
		"add-payment":          app.AddPaymentRequest{},
		"preference":           app.SetPreferenceRequest{},
	}
	out := make(map[string]*jsonschema.Schema, len(types))
	for name, v := range types {
		out[name] = r.Reflect(v)
	}
	return out
}

func schemaNames(schemas map[string]*jsonschema.Schema) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
