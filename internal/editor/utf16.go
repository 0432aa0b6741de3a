package editor

import "unicode/utf16"

// unitLen is the number of UTF-16 code units that encode r. Invalid runes are
// written as U+FFFD, which takes one unit.
func unitLen(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// UTF16Col converts a rune column within line to UTF-16 code units. Columns
// past the end of line count one unit per missing rune.
func UTF16Col(line string, runeCol int) int {
	col, i := 0, 0
	for _, r := range line {
		if i >= runeCol {
			return col
		}
		col += unitLen(r)
		i++
	}
	return col + max(runeCol-i, 0)
}

// RuneCol converts a UTF-16 column within line to a rune column. A column that
// falls inside a surrogate pair resolves to the start of that character.
func RuneCol(line string, col int) int {
	units, i := 0, 0
	for _, r := range line {
		n := unitLen(r)
		if units+n > col {
			return i
		}
		units += n
		i++
	}
	return i + max(col-units, 0)
}
