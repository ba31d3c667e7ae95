package util

// MoveItem returns a copy of items with the element at from removed and
// reinserted at to. Out-of-range indexes return an unchanged copy.
func MoveItem[T any](items []T, from int, to int) []T {
	out := append([]T(nil), items...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{moved}, out[to:]...)...)

	return out
}

// RemoveAt returns a copy of items without the element at index.
func RemoveAt[T any](items []T, index int) []T {
	out := append([]T(nil), items...)
	if index < 0 || index >= len(out) {
		return out
	}
	return append(out[:index], out[index+1:]...)
}
