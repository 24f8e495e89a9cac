package app

// Field accessors for decoded JSON bodies. Decoded numbers arrive as
// float64; int is accepted for values built programmatically.

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func mapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func floatField(m map[string]any, key string) (float64, bool) {
	switch n := m[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func intField(m map[string]any, key string) *int {
	if f, ok := floatField(m, key); ok {
		n := int(f)
		return &n
	}
	return nil
}
