package textquery

// Result holds the values one query selected from a document.
type Result struct {
	Values []any    `json:"values"`
	Count  int      `json:"count"`
	Mode   string   `json:"mode"`
	Errors []string `json:"errors,omitempty"`
}

func newResult(mode string, values []any, errs []string) *Result {
	if values == nil {
		values = []any{}
	}
	return &Result{Values: values, Count: len(values), Mode: mode, Errors: errs}
}
