package helper

// GetTypedValueOf2 asserts the comma-ok result of getFn to T.
// A nil result from getFn is reported as not found.
func GetTypedValueOf2[T any](getFn func() (any, bool)) (res T, ok bool) {
	var raw any
	if raw, ok = getFn(); ok && raw != nil {
		res, ok = raw.(T)
		return
	}
	return res, false
}

// CollectTyped drains an iterator-style getter into a typed slice, skipping values of other types.
func CollectTyped[T any](next func() any) []T {
	var out []T
	for raw := next(); raw != nil; raw = next() {
		if v, ok := raw.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
