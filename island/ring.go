package island

// RingNeighbors derives a worker's ring neighbors purely from its position in
// the ordered handle list: a single worker has no neighbors, two workers have
// each other, and three or more form a ring where each worker is adjacent to
// the handles at (index-1) mod len and (index+1) mod len.
func RingNeighbors(handles []*Handle, index int) []*Handle {
	n := len(handles)
	switch n {
	case 0, 1:
		return nil
	case 2:
		return []*Handle{handles[(index+1)%2]}
	default:
		return []*Handle{handles[(index-1+n)%n], handles[(index+1)%n]}
	}
}
