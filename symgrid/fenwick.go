package symgrid

type fenwickValue interface {
	~int | ~int32
}

// fenwickAdd 在 1-indexed 位置 i 加 delta，tree 长度为 n+1
func fenwickAdd[T fenwickValue](tree []T, n, i int, delta T) {
	for ; i <= n; i += i & -i {
		tree[i] += delta
	}
}

// fenwickPrefix 返回 [1, i] 的前缀和
func fenwickPrefix[T fenwickValue](tree []T, i int) T {
	var sum T
	for ; i > 0; i -= i & -i {
		sum += tree[i]
	}
	return sum
}
