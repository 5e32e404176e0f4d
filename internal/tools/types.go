// Package tools declares the static catalog of callable tools: names,
// descriptions, and parameter schemas. The dispatcher and both transports
// derive from this one catalog so declarations and routing cannot drift
// apart.
package tools

// Param describes one named argument of a tool.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Definition describes a callable tool. Definitions are immutable for
// the process lifetime.
type Definition struct {
	Name        string
	Description string
	Params      []Param
}

// InputSchema renders the JSON-Schema object declaration for the tool's
// arguments.
func (d Definition) InputSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(d.Params))
	var required []string
	for _, p := range d.Params {
		props[p.Name] = map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// RequiredKeys returns the names of the tool's required parameters in
// declaration order.
func (d Definition) RequiredKeys() []string {
	var keys []string
	for _, p := range d.Params {
		if p.Required {
			keys = append(keys, p.Name)
		}
	}
	return keys
}
