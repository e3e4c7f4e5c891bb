package fixture

// ArrayNamespace is the namespace of the list and callback host.
const ArrayNamespace = "demo:fixture/array@1.0.0"

// ArrayHost demonstrates list crossings and host callback invocation.
type ArrayHost struct{}

func (h *ArrayHost) Namespace() string { return ArrayNamespace }

// DoubleArray returns a new list with every element doubled.
func (h *ArrayHost) DoubleArray(nums []int32) []int32 {
	out := make([]int32, len(nums))
	for i, n := range nums {
		out[i] = n * 2
	}
	return out
}

// ArrayLength returns the number of elements in items.
func (h *ArrayHost) ArrayLength(items []int32) uint32 {
	return uint32(len(items))
}

// MapAndSum applies fn to every element in order and sums the results.
// The first callback failure aborts the walk and propagates.
func (h *ArrayHost) MapAndSum(nums []int32, fn func(int32) (int32, error)) (int32, error) {
	var sum int32
	for _, n := range nums {
		mapped, err := fn(n)
		if err != nil {
			return 0, err
		}
		sum += mapped
	}
	return sum, nil
}

// CallWithValue invokes fn once with v and returns the result.
func (h *ArrayHost) CallWithValue(v int32, fn func(int32) (int32, error)) (int32, error) {
	return fn(v)
}
