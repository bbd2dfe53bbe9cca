package relationship

// Action is the behavioral move Ruby takes this turn.
type Action string

// Tone colors how the action is voiced.
type Tone string

const (
	ActionNormalChat     Action = "NORMAL_CHAT"
	ActionJealousDefense Action = "JEALOUS_DEFENSE"
	ActionDefendTarget   Action = "DEFEND_TARGET"
	ActionAttackTarget   Action = "ATTACK_TARGET"
	ActionNeutralChaos   Action = "NEUTRAL_CHAOS"

	TonePlayful    Tone = "Playful"
	TonePossessive Tone = "Possessive"
	ToneHostile    Tone = "Hostile"
	ToneSassy      Tone = "Sassy"
)

// affinityGap is how far ahead one side's affinity must be before Ruby
// picks a side instead of staying chaotic-neutral.
const affinityGap = 20

// Decide picks the stance for a turn from the speaker's relationship and
// the relationship of whoever they mentioned (nil when nobody was).
// Rules are evaluated in order, first match wins. The role-pair check runs
// before the score comparison: a high-status target is defended even
// against a speaker with better raw numbers.
func Decide(speaker Relationship, target *Relationship) (Action, Tone) {
	if target == nil {
		return ActionNormalChat, TonePlayful
	}

	if (target.Role == RoleBaby || target.Role == RoleFavorite) &&
		(speaker.Role == RoleAnnoying || speaker.Role == RoleNeutral || speaker.Role == RoleEnemy) {
		return ActionJealousDefense, TonePossessive
	}

	if target.Affinity > speaker.Affinity+affinityGap {
		return ActionDefendTarget, ToneHostile
	}
	if speaker.Affinity > target.Affinity+affinityGap {
		return ActionAttackTarget, ToneSassy
	}

	return ActionNeutralChaos, TonePlayful
}
