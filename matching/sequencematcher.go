package matching

// sequenceRatio вычисляет коэффициент схожести двух строк как
// 2*M/T, где M — число совпавших символов по наибольшим общим блокам,
// T — суммарная длина строк. Симметричен; 1.0 для равных строк,
// 0.0 для строк без общих символов.
func sequenceRatio(s1, s2 string) float64 {
	r1 := []rune(s1)
	r2 := []rune(s2)

	total := len(r1) + len(r2)
	if total == 0 {
		return 1.0
	}

	matches := matchingRunes(r1, r2)
	return 2.0 * float64(matches) / float64(total)
}

// matchingRunes считает совпавшие символы: находит наибольший общий
// непрерывный блок и рекурсивно обрабатывает участки слева и справа от него
func matchingRunes(r1, r2 []rune) int {
	i, j, k := longestMatch(r1, r2)
	if k == 0 {
		return 0
	}

	return k + matchingRunes(r1[:i], r2[:j]) + matchingRunes(r1[i+k:], r2[j+k:])
}

// longestMatch ищет наибольший общий непрерывный блок двух срезов.
// Возвращает начало блока в каждом срезе и его длину. При равной длине
// выигрывает блок, начинающийся раньше в первом срезе.
func longestMatch(r1, r2 []rune) (bestI, bestJ, bestK int) {
	if len(r1) == 0 || len(r2) == 0 {
		return 0, 0, 0
	}

	// lengths[j] — длина общего суффикса, заканчивающегося на r1[i-1], r2[j-1]
	lengths := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		prevDiag := 0
		for j := 1; j <= len(r2); j++ {
			oldLen := lengths[j]
			if r1[i-1] == r2[j-1] {
				lengths[j] = prevDiag + 1
				if lengths[j] > bestK {
					bestK = lengths[j]
					bestI = i - bestK
					bestJ = j - bestK
				}
			} else {
				lengths[j] = 0
			}
			prevDiag = oldLen
		}
	}

	return bestI, bestJ, bestK
}
