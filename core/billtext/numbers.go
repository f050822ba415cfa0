// Package billtext renders the legal-amount spelling of a bill's sum, the
// kind of text a printed promissory note carries next to the numeral.
// Grounded on original_source/src/util/numbers_to_words.rs.
package billtext

import "fmt"

var ones = [20]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tens = [10]string{
	"zero", "ten", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

var orders = [7]string{
	"zero", "thousand", "million", "billion", "trillion", "quadrillion", "quintillion",
}

// NumberToWords spells num out in English, e.g. 1234 -> "one thousand two
// hundred thirty-four".
func NumberToWords(num uint64) string {
	switch {
	case num <= 19:
		return ones[num]
	case num <= 99:
		upper := num / 10
		if lower := num % 10; lower == 0 {
			return tens[upper]
		} else {
			return fmt.Sprintf("%s-%s", tens[upper], NumberToWords(lower))
		}
	case num <= 999:
		return formatWithOrder(num, 100, "hundred")
	default:
		div := uint64(1)
		order := orders[0]
		for i := 1; i < len(orders); i++ {
			next := div * 1000
			if next > num/1000 {
				div, order = next, orders[i]
				break
			}
			div = next
		}
		return formatWithOrder(num, div, order)
	}
}

func formatWithOrder(num, div uint64, order string) string {
	upper, lower := num/div, num%div
	if lower == 0 {
		return fmt.Sprintf("%s %s", NumberToWords(upper), order)
	}
	return fmt.Sprintf("%s %s %s", NumberToWords(upper), order, NumberToWords(lower))
}
