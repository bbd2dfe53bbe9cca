package relationship

// RoleForAffinity maps an affinity score to its derived role.
// The baby role is operator-only and never produced here.
func RoleForAffinity(affinity int) Role {
	switch {
	case affinity >= 80:
		return RoleFavorite
	case affinity >= 40:
		return RoleFriend
	case affinity > -20:
		return RoleNeutral
	case affinity > -50:
		return RoleAnnoying
	default:
		return RoleEnemy
	}
}

// ApplyDeltas returns a copy of rel with d applied: scores clamped into
// range, counters incremented (negative counter deltas are ignored).
// When reclassify is set the role is re-derived from the new affinity,
// except that role baby is sticky and never auto-downgraded.
func ApplyDeltas(rel Relationship, d Deltas, reclassify bool) Relationship {
	out := rel
	out.Affinity = clamp(rel.Affinity+d.Affinity, AffinityMin, AffinityMax)
	out.Trust = clamp(rel.Trust+d.Trust, TrustMin, TrustMax)
	out.Jealousy = clamp(rel.Jealousy+d.Jealousy, JealousyMin, JealousyMax)
	if d.Insults > 0 {
		out.Insults = rel.Insults + d.Insults
	}
	if d.Compliments > 0 {
		out.Compliments = rel.Compliments + d.Compliments
	}
	if reclassify && rel.Role != RoleBaby {
		out.Role = RoleForAffinity(out.Affinity)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
