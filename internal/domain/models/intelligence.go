package models

// IntelligenceDelta holds the artifacts extracted from a single message.
type IntelligenceDelta struct {
	UPIIDs       []string   `json:"upi_ids,omitempty"`
	BankAccounts []string   `json:"bank_accounts,omitempty"`
	IFSCCodes    []string   `json:"ifsc_codes,omitempty"`
	PhoneNumbers []string   `json:"phone_numbers,omitempty"`
	URLs         []URLIntel `json:"urls,omitempty"`
}

// Empty reports whether the delta carries no artifacts at all.
func (d IntelligenceDelta) Empty() bool {
	return len(d.UPIIDs) == 0 &&
		len(d.BankAccounts) == 0 &&
		len(d.IFSCCodes) == 0 &&
		len(d.PhoneNumbers) == 0 &&
		len(d.URLs) == 0
}

// Intelligence accumulates extracted artifacts across a conversation.
// Each slice is kept deduplicated in first-seen order.
type Intelligence struct {
	UPIIDs       []string   `json:"upi_ids"`
	BankAccounts []string   `json:"bank_accounts"`
	IFSCCodes    []string   `json:"ifsc_codes"`
	PhoneNumbers []string   `json:"phone_numbers"`
	URLs         []URLIntel `json:"urls"`
}

// Merge folds a delta into the accumulated set, skipping artifacts that
// are already present. It returns the number of new artifacts added.
func (in *Intelligence) Merge(d IntelligenceDelta) int {
	added := 0
	in.UPIIDs, added = mergeStrings(in.UPIIDs, d.UPIIDs, added)
	in.BankAccounts, added = mergeStrings(in.BankAccounts, d.BankAccounts, added)
	in.IFSCCodes, added = mergeStrings(in.IFSCCodes, d.IFSCCodes, added)
	in.PhoneNumbers, added = mergeStrings(in.PhoneNumbers, d.PhoneNumbers, added)

	seen := make(map[string]bool, len(in.URLs))
	for _, u := range in.URLs {
		seen[u.URL] = true
	}
	for _, u := range d.URLs {
		if !seen[u.URL] {
			seen[u.URL] = true
			in.URLs = append(in.URLs, u)
			added++
		}
	}
	return added
}

func mergeStrings(dst, src []string, added int) ([]string, int) {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
			added++
		}
	}
	return dst, added
}

// Completeness scores how much actionable intelligence has been
// gathered: payment handles are worth the most, then accounts, phone
// numbers and URLs. Routing codes only qualify the accounts they
// belong to and carry no weight of their own.
func (in Intelligence) Completeness() int {
	score := 0
	if len(in.UPIIDs) > 0 {
		score += 40
	}
	if len(in.BankAccounts) > 0 {
		score += 30
	}
	if len(in.PhoneNumbers) > 0 {
		score += 20
	}
	if len(in.URLs) > 0 {
		score += 10
	}
	return score
}
