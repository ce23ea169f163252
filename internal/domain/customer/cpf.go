package customer

// ValidCPF reports whether cpf is a well formed CPF number, either as 11 bare
// digits or in the 000.000.000-00 layout, with both check digits correct.
func ValidCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for i, r := range cpf {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case (r == '.' && (i == 3 || i == 7)) || (r == '-' && i == 11):
			if len(cpf) != 14 {
				return false
			}
		default:
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}
	allSame := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
