package lottery

import (
	"fmt"
	"strings"
)

// PrizeTier describes one winning combination
type PrizeTier struct {
	Tier         int    `json:"tier"`
	Name         string `json:"name"`
	MainMatches  int    `json:"main_matches"`
	SpecialMatch bool   `json:"special_match"`
}

// PrizeTiers is the prize table shared by Mega Millions and Powerball,
// best tier first
var PrizeTiers = []PrizeTier{
	{Tier: 1, Name: "Jackpot", MainMatches: 5, SpecialMatch: true},
	{Tier: 2, Name: "Match 5", MainMatches: 5},
	{Tier: 3, Name: "Match 4 + Special", MainMatches: 4, SpecialMatch: true},
	{Tier: 4, Name: "Match 4", MainMatches: 4},
	{Tier: 5, Name: "Match 3 + Special", MainMatches: 3, SpecialMatch: true},
	{Tier: 6, Name: "Match 3", MainMatches: 3},
	{Tier: 7, Name: "Match 2 + Special", MainMatches: 2, SpecialMatch: true},
	{Tier: 8, Name: "Match 1 + Special", MainMatches: 1, SpecialMatch: true},
	{Tier: 9, Name: "Special Only", MainMatches: 0, SpecialMatch: true},
}

// PrizePolicy decides which match combinations count as a win
type PrizePolicy string

const (
	// PolicyJackpot only counts all five main numbers plus the special ball
	PolicyJackpot PrizePolicy = "jackpot"
	// PolicyTiers counts any combination in PrizeTiers
	PolicyTiers PrizePolicy = "tiers"
)

// ParsePrizePolicy parses a policy name; empty means PolicyJackpot
func ParsePrizePolicy(s string) (PrizePolicy, error) {
	switch p := PrizePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyJackpot, nil
	case PolicyJackpot, PolicyTiers:
		return p, nil
	default:
		return "", fmt.Errorf("unknown prize policy %q (want %q or %q)", s, PolicyJackpot, PolicyTiers)
	}
}

// Award returns the tier won for the given match counts, if any
func (p PrizePolicy) Award(mainMatches int, specialMatch bool) (PrizeTier, bool) {
	if p == PolicyTiers {
		for _, tier := range PrizeTiers {
			if tier.MainMatches == mainMatches && tier.SpecialMatch == specialMatch {
				return tier, true
			}
		}
		return PrizeTier{}, false
	}
	if mainMatches == MainNumberCount && specialMatch {
		return PrizeTiers[0], true
	}
	return PrizeTier{}, false
}

// LookupTier returns the tier with the given number
func LookupTier(n int) (PrizeTier, bool) {
	for _, tier := range PrizeTiers {
		if tier.Tier == n {
			return tier, true
		}
	}
	return PrizeTier{}, false
}

// CountMatches returns how many of the ticket's main numbers were drawn
func CountMatches(picked, drawn []int) int {
	set := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		set[n] = true
	}
	matches := 0
	for _, n := range picked {
		if set[n] {
			matches++
		}
	}
	return matches
}
