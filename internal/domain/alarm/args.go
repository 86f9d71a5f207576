package alarm

import "maps"

// Args is an opaque key-value bag forwarded to the player unmodified.
type Args map[string]any

// Clone returns a shallow copy; nil stays nil.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}

	return maps.Clone(a)
}

// MergeArgs layers overrides on top of defaults into a new bag.
func MergeArgs(defaults, overrides map[string]any) Args {
	merged := make(Args, len(defaults)+len(overrides))

	maps.Copy(merged, defaults)
	maps.Copy(merged, overrides)

	return merged
}
