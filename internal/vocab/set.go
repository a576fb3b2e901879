package vocab

// SetSize is the number of consecutive ids in one study set.
const SetSize = 100

// IDRange is a half-open range of word ids [From, To).
type IDRange struct {
	From int
	To   int
}

// Contains reports whether id falls inside the range.
func (r IDRange) Contains(id int) bool {
	return id >= r.From && id < r.To
}

// SetIndex returns the set a word id belongs to.
func SetIndex(id int) int {
	return id / SetSize
}

// SetRange returns the id range covered by set index.
func SetRange(index int) IDRange {
	return IDRange{From: index * SetSize, To: (index + 1) * SetSize}
}

// NumSets returns how many sets are needed to cover ids 0..maxID.
func NumSets(maxID int) int {
	if maxID < 0 {
		return 0
	}
	return SetIndex(maxID) + 1
}

// SetLabel is the 1-based number shown to learners.
func SetLabel(index int) int {
	return index + 1
}
