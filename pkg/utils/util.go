package utils

// Deref はポインタを安全にデリファレンスします。
// nil の場合はゼロ値を返します。
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ValueOr は p が nil なら def を返します。ツール引数の既定値の適用に使います。
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Ptr は v のポインタを返します。
func Ptr[T any](v T) *T {
	return &v
}
