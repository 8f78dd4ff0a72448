// Package actions defines the structured side-effect payloads the remote
// assistant may attach to a reply, together with their JSON schemas. The
// schemas are advertised to the endpoint so it only emits actions this
// client can apply.
package actions

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Descriptor names one action contract and its payload schema.
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Schema      *jsonschema.Schema `json:"schema"`
}

// Navigation asks the hosting application to move to another page.
type Navigation struct {
	Destination string `json:"destination" jsonschema:"title=Destination,description=Route or page identifier to navigate to"`
}

// ClearHistory asks the client to wipe the conversation log.
type ClearHistory struct{}

// NewDescriptor reflects a payload type into a named action descriptor.
func NewDescriptor(name, description string, payload any) Descriptor {
	reflector := jsonschema.Reflector{DoNotReference: true}

	var schema *jsonschema.Schema
	if reflect.TypeOf(payload).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(payload).Elem())
	} else {
		schema = reflector.Reflect(payload)
	}

	return Descriptor{Name: name, Description: description, Schema: schema}
}

// Defaults returns the action set every conversation client supports.
func Defaults() []Descriptor {
	return []Descriptor{
		NewDescriptor("navigate", "Move the hosting application to another page", Navigation{}),
		NewDescriptor("clear_history", "Wipe the conversation log", ClearHistory{}),
	}
}
