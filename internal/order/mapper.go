package order

import "fmt"

// BuildName labels an order by its first line, e.g. "Apple and 2 more".
func BuildName(lines []OrderLine) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0].Name
	default:
		return fmt.Sprintf("%s and %d more", lines[0].Name, len(lines)-1)
	}
}

func sumLines(lines []OrderLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Amount()
	}
	return total
}
