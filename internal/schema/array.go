package schema

import (
	"encoding/json"
	"fmt"
)

// Array validates JSON arrays whose items share a single schema.
type Array struct {
	Items    Type
	MinItems int
	MaxItems int // 0 means unbounded
}

func (a *Array) Validate(v any) error {
	items, ok := v.([]any)
	if !ok {
		return errorf("", "expected array, got %T", v)
	}
	if len(items) < a.MinItems {
		return errorf("", "array shorter than %d", a.MinItems)
	}
	if a.MaxItems > 0 && len(items) > a.MaxItems {
		return errorf("", "array longer than %d", a.MaxItems)
	}
	for i, item := range items {
		if err := a.Items.Validate(item); err != nil {
			return errorf(fmt.Sprintf("[%d]", i), "%v", err)
		}
	}
	return nil
}

func (a *Array) MarshalValue(v any) ([]byte, error) {
	if err := a.Validate(v); err != nil {
		return nil, err
	}
	items := v.([]any)
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		enc, err := a.Items.MarshalValue(item)
		if err != nil {
			return nil, errorf(fmt.Sprintf("[%d]", i), "%v", err)
		}
		out[i] = enc
	}
	return json.Marshal(out)
}

func (a *Array) UnmarshalValue(data []byte) (any, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errorf("", "invalid JSON array: %v", err)
	}
	items := make([]any, len(raw))
	for i, rv := range raw {
		item, err := a.Items.UnmarshalValue(rv)
		if err != nil {
			return nil, errorf(fmt.Sprintf("[%d]", i), "%v", err)
		}
		items[i] = item
	}
	if err := a.Validate(items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *Array) DecodeString(s string) (any, error) {
	return a.UnmarshalValue([]byte(s))
}

func (a *Array) ContentType() string { return "application/json" }
