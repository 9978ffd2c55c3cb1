package board

import "fmt"

// Direction is one of the four slide directions.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in a fixed order.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// ParseDirection accepts "up", "down", "left", "right" or their first letter.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "u", "U":
		return Up, nil
	case "down", "d", "D":
		return Down, nil
	case "left", "l", "L":
		return Left, nil
	case "right", "r", "R":
		return Right, nil
	}
	return 0, fmt.Errorf("invalid direction: %q", s)
}

// lineTable[size][direction] lists, for each row or column, the cell indices
// ordered from the edge the tiles slide towards.
var lineTable [5][4][][]int

func init() {
	for size := 2; size <= 4; size++ {
		for _, d := range Directions {
			lines := make([][]int, size)
			for k := 0; k < size; k++ {
				line := make([]int, size)
				for j := 0; j < size; j++ {
					switch d {
					case Left:
						line[j] = k*size + j
					case Right:
						line[j] = k*size + (size - 1 - j)
					case Up:
						line[j] = j*size + k
					case Down:
						line[j] = (size-1-j)*size + k
					}
				}
				lines[k] = line
			}
			lineTable[size][d] = lines
		}
	}
}

// slideLine packs the tiles of line towards index 0 and merges equal
// neighbours, each tile merging at most once.
func slideLine(line []int) {
	var packed [4]int
	k := 0
	for _, v := range line {
		if v != 0 {
			packed[k] = v
			k++
		}
	}
	j := 0
	for i := 0; i < k; i++ {
		if i+1 < k && packed[i] == packed[i+1] && packed[i] < MaxExponent {
			line[j] = packed[i] + 1
			i++
		} else {
			line[j] = packed[i]
		}
		j++
	}
	for ; j < len(line); j++ {
		line[j] = 0
	}
}

// slideLineUnknownZeros treats every empty cell as an unknown tile. Only the
// run of tiles touching the leading edge is certain to move, so it slides and
// merges within itself; a run behind an unknown cell could merge with whatever
// is hidden there and is left as it is.
func slideLineUnknownZeros(line []int) {
	end := 0
	for end < len(line) && line[end] != 0 {
		end++
	}
	slideLine(line[:end])
}

func (s State) slide(d Direction, slide func([]int)) State {
	result := s
	var buf [4]int
	for _, idx := range lineTable[s.size][d] {
		line := buf[:len(idx)]
		for j, i := range idx {
			line[j] = s.At(i)
		}
		slide(line)
		for j, i := range idx {
			result = result.with(i, line[j])
		}
	}
	return result
}

// Move applies a standard slide in direction d. The result is not canonicalized
// and equals s when the move is illegal.
func (s State) Move(d Direction) State {
	return s.slide(d, slideLine)
}

// MoveUnknownZeros applies the relaxed move used for win-distance pruning, in
// which empty cells stand for tiles that may or may not have been placed.
func (s State) MoveUnknownZeros(d Direction) State {
	return s.slide(d, slideLineUnknownZeros)
}

// HasAdjacentPair reports whether two tiles with exponent value would meet in a
// row or column. With zerosUnknown set only directly neighbouring tiles count;
// otherwise tiles separated by empty cells count too.
func (s State) HasAdjacentPair(value int, zerosUnknown bool) bool {
	for _, d := range [2]Direction{Left, Up} {
		for _, idx := range lineTable[s.size][d] {
			prev := 0
			for _, i := range idx {
				v := s.At(i)
				if v == 0 {
					if zerosUnknown {
						prev = 0
					}
					continue
				}
				if v == value && prev == value {
					return true
				}
				prev = v
			}
		}
	}
	return false
}
