package relationship

// Role is the coarse relationship category Ruby assigns to a user.
type Role string

const (
	RoleNeutral  Role = "neutral"
	RoleFriend   Role = "friend"
	RoleEnemy    Role = "enemy"
	RoleAnnoying Role = "annoying"
	RoleBaby     Role = "baby"
	RoleFavorite Role = "favorite"
)

// ValidRoles lists every assignable role, in the order shown to operators.
var ValidRoles = []Role{RoleNeutral, RoleFriend, RoleEnemy, RoleAnnoying, RoleBaby, RoleFavorite}

// IsValidRole reports whether s names a known role.
func IsValidRole(s string) bool {
	for _, r := range ValidRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// Score bounds. Affinity is signed; trust and jealousy are not.
const (
	AffinityMin = -100
	AffinityMax = 100
	TrustMin    = 0
	TrustMax    = 100
	JealousyMin = 0
	JealousyMax = 100
)

// Relationship is Ruby's emotional state toward one user.
// Scores are always clamped into range after every mutation.
type Relationship struct {
	Role        Role `json:"role"`
	Affinity    int  `json:"affinity_score"`
	Trust       int  `json:"trust_score"`
	Jealousy    int  `json:"jealousy_meter"`
	Insults     int  `json:"insults_count"`
	Compliments int  `json:"compliments_count"`
}

// NewRelationship returns the first-contact default state.
func NewRelationship() Relationship {
	return Relationship{Role: RoleNeutral}
}

// Personality holds per-user presentation preferences.
type Personality struct {
	NicknamePreference string `json:"nickname_preference,omitempty"`
	VibeSummary        string `json:"vibe_summary,omitempty"`
}

// Deltas is one batch of emotional changes, from either update path.
// Insults and Compliments are counts for the window, never decrements.
type Deltas struct {
	Affinity    int `json:"affinity_change"`
	Trust       int `json:"trust_change"`
	Jealousy    int `json:"jealousy_change"`
	Insults     int `json:"insults_count"`
	Compliments int `json:"compliments_count"`
}

// IsZero reports whether applying d would change nothing.
func (d Deltas) IsZero() bool {
	return d == Deltas{}
}
