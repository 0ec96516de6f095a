package pulumitest

import "github.com/pulumi/pulumi/sdk/v3/go/common/resource"

// Convenience accessors over a record's resolved inputs. Missing or
// differently-typed properties yield zero values; assertions on the
// zero value then fail with a readable diff.

// String returns a top-level string property.
func (r Record) String(key string) string {
	return stringOf(r.Inputs[resource.PropertyKey(key)])
}

// Bool returns a top-level bool property.
func (r Record) Bool(key string) bool {
	v, ok := r.Inputs[resource.PropertyKey(key)]
	if !ok || !v.IsBool() {
		return false
	}
	return v.BoolValue()
}

// Number returns a top-level numeric property.
func (r Record) Number(key string) float64 {
	v, ok := r.Inputs[resource.PropertyKey(key)]
	if !ok || !v.IsNumber() {
		return 0
	}
	return v.NumberValue()
}

// Strings returns a top-level array-of-strings property.
func (r Record) Strings(key string) []string {
	v, ok := r.Inputs[resource.PropertyKey(key)]
	if !ok || !v.IsArray() {
		return nil
	}
	out := make([]string, 0, len(v.ArrayValue()))
	for _, item := range v.ArrayValue() {
		out = append(out, stringOf(item))
	}
	return out
}

// Object returns a top-level object property.
func (r Record) Object(key string) resource.PropertyMap {
	v, ok := r.Inputs[resource.PropertyKey(key)]
	if !ok || !v.IsObject() {
		return resource.PropertyMap{}
	}
	return v.ObjectValue()
}

// Objects returns a top-level array-of-objects property.
func (r Record) Objects(key string) []resource.PropertyMap {
	v, ok := r.Inputs[resource.PropertyKey(key)]
	if !ok || !v.IsArray() {
		return nil
	}
	var out []resource.PropertyMap
	for _, item := range v.ArrayValue() {
		if item.IsObject() {
			out = append(out, item.ObjectValue())
		}
	}
	return out
}

// Tag returns one value from the tags property.
func (r Record) Tag(key string) string {
	return stringOf(r.Object("tags")[resource.PropertyKey(key)])
}

func stringOf(v resource.PropertyValue) string {
	switch {
	case v.IsString():
		return v.StringValue()
	case v.IsSecret():
		return stringOf(v.SecretValue().Element)
	default:
		return ""
	}
}
