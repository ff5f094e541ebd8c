package draft

// DefaultScript builds the bo1 script for a pool of n maps: two bans, two
// picks, then alternating bans until a single map is left for the decider.
// The roll winner always acts first within each pair. For the standard 7-map
// pool this yields ban/ban/pick/pick/ban/ban.
func DefaultScript(n int) Script {
	if n < 2 {
		return Script{}
	}
	script := make(Script, 0, n-1)
	add := func(k Kind) {
		script = append(script, Step{Kind: k, Slot: SlotFirst}, Step{Kind: k, Slot: SlotSecond})
	}

	actions := n - 1
	if actions >= 2 {
		add(KindBan)
		actions -= 2
	}
	if actions >= 2 {
		add(KindPick)
		actions -= 2
	}
	for actions >= 2 {
		add(KindBan)
		actions -= 2
	}
	if actions == 1 {
		// Odd pools: the roll winner takes the final ban alone.
		script = append(script, Step{Kind: KindBan, Slot: SlotFirst})
	}
	return script
}
