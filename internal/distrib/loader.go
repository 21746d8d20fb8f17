package distrib

// Batches shards n dataset items across the runtime's world and groups this
// rank's share into batches of at most batchSize indices. Item i belongs to
// rank i mod world; within a rank, batches preserve enumeration order.
func Batches(rt Runtime, n, batchSize int) [][]int {
	if batchSize < 1 {
		batchSize = 1
	}
	var mine []int
	for i := rt.Rank(); i < n; i += rt.WorldSize() {
		mine = append(mine, i)
	}

	var batches [][]int
	for start := 0; start < len(mine); start += batchSize {
		end := start + batchSize
		if end > len(mine) {
			end = len(mine)
		}
		batches = append(batches, mine[start:end])
	}
	return batches
}
