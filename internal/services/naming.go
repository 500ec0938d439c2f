package services

// Letters maps a zero-based index to spreadsheet-style column letters:
// 0 -> A, 25 -> Z, 26 -> AA, 701 -> ZZ, 702 -> AAA.
// Negative indexes return the empty string.
func Letters(index int) string {
	if index < 0 {
		return ""
	}

	var buf [16]byte
	i := len(buf)
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// clusterSectorName names the index-th cluster: "Sector A", "Sector B", ...
func clusterSectorName(index int) string {
	return "Sector " + Letters(index)
}
