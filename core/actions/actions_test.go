package actions

import (
	"encoding/json"
	"testing"
)

func TestDefaultsDescribeSupportedActions(t *testing.T) {
	descriptors := Defaults()
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 default actions, got %d", len(descriptors))
	}

	names := map[string]bool{}
	for _, descriptor := range descriptors {
		names[descriptor.Name] = true
		if descriptor.Schema == nil {
			t.Fatalf("action %q has no schema", descriptor.Name)
		}
	}
	if !names["navigate"] || !names["clear_history"] {
		t.Fatalf("expected navigate and clear_history, got %v", names)
	}
}

func TestNavigationSchemaRequiresDestination(t *testing.T) {
	descriptor := NewDescriptor("navigate", "test", Navigation{})

	serialized, err := json.Marshal(descriptor.Schema)
	if err != nil {
		t.Fatalf("failed to serialize schema: %v", err)
	}

	var schema struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(serialized, &schema); err != nil {
		t.Fatalf("failed to parse schema: %v", err)
	}

	if _, ok := schema.Properties["destination"]; !ok {
		t.Fatalf("expected destination property, got %v", schema.Properties)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "destination" {
		t.Fatalf("expected destination required, got %v", schema.Required)
	}
}

func TestNewDescriptorAcceptsPointerPayloads(t *testing.T) {
	descriptor := NewDescriptor("navigate", "test", &Navigation{})
	if descriptor.Schema == nil {
		t.Fatalf("expected schema for pointer payload")
	}
}
