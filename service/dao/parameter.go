package dao

// Parameter filters List results; a []string value matches any of its
// entries.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates an equality parameter, or a one-of parameter when
// several values are given.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
