package relationship

import "testing"

func TestParseDirectives_None(t *testing.T) {
	reply := "hey what's up"
	directives, cleaned := ParseDirectives(reply)
	if len(directives) != 0 {
		t.Errorf("Expected no directives, got %d", len(directives))
	}
	if cleaned != reply {
		t.Errorf("Expected reply unchanged, got %q", cleaned)
	}
}

func TestParseDirectives_StripsAndParses(t *testing.T) {
	directives, cleaned := ParseDirectives("aww thanks!! [AFFINITY: +5] [TRUST: -3]")

	if cleaned != "aww thanks!!" {
		t.Errorf("Expected cleaned reply %q, got %q", "aww thanks!!", cleaned)
	}
	if len(directives) != 2 {
		t.Fatalf("Expected 2 directives, got %d", len(directives))
	}
	if directives[0].Kind != DirectiveAffinity || directives[0].Delta != 5 {
		t.Errorf("Unexpected first directive: %+v", directives[0])
	}
	if directives[1].Kind != DirectiveTrust || directives[1].Delta != -3 {
		t.Errorf("Unexpected second directive: %+v", directives[1])
	}
}

func TestParseDirectives_SetName(t *testing.T) {
	directives, cleaned := ParseDirectives("Kat!! cute name [SET_NAME: Kat]")

	if cleaned != "Kat!! cute name" {
		t.Errorf("Expected cleaned reply, got %q", cleaned)
	}
	name, ok := NameFromDirectives(directives)
	if !ok || name != "Kat" {
		t.Errorf("Expected name Kat, got %q (ok=%v)", name, ok)
	}
}

func TestParseDirectives_MalformedLeftInPlace(t *testing.T) {
	reply := "sure [AFFINITY: lots] [TRUST: +2]"
	directives, cleaned := ParseDirectives(reply)

	if len(directives) != 1 {
		t.Fatalf("Expected 1 directive, got %d", len(directives))
	}
	if directives[0].Kind != DirectiveTrust || directives[0].Delta != 2 {
		t.Errorf("Unexpected directive: %+v", directives[0])
	}
	if cleaned != "sure [AFFINITY: lots]" {
		t.Errorf("Expected malformed span kept, got %q", cleaned)
	}
}

func TestParseDirectives_UnknownKeyIgnored(t *testing.T) {
	reply := "hm [MOOD: happy]"
	directives, cleaned := ParseDirectives(reply)
	if len(directives) != 0 {
		t.Errorf("Expected no directives, got %d", len(directives))
	}
	if cleaned != reply {
		t.Errorf("Expected reply unchanged, got %q", cleaned)
	}
}

func TestParseDirectives_DirectivesOnly(t *testing.T) {
	_, cleaned := ParseDirectives("[AFFINITY: +1]")
	if cleaned != "" {
		t.Errorf("Expected empty cleaned reply, got %q", cleaned)
	}
}

func TestDeltasFromDirectives_Sums(t *testing.T) {
	d := DeltasFromDirectives([]Directive{
		{Kind: DirectiveAffinity, Delta: 3},
		{Kind: DirectiveAffinity, Delta: -1},
		{Kind: DirectiveTrust, Delta: 2},
		{Kind: DirectiveSetName, Name: "Kat"},
	})

	if d.Affinity != 2 {
		t.Errorf("Expected affinity delta 2, got %d", d.Affinity)
	}
	if d.Trust != 2 {
		t.Errorf("Expected trust delta 2, got %d", d.Trust)
	}
	if d.Insults != 0 || d.Compliments != 0 {
		t.Errorf("Expected no counter changes, got %+v", d)
	}
}

func TestNameFromDirectives_LastWins(t *testing.T) {
	name, ok := NameFromDirectives([]Directive{
		{Kind: DirectiveSetName, Name: "Kat"},
		{Kind: DirectiveSetName, Name: "Katie"},
	})
	if !ok || name != "Katie" {
		t.Errorf("Expected last name Katie, got %q", name)
	}
}

func TestDirectiveRoundTrip(t *testing.T) {
	// A +5 affinity tag on a user at 10 lands them at 15.
	rel := Relationship{Role: RoleNeutral, Affinity: 10}
	directives, _ := ParseDirectives("you're actually so sweet [AFFINITY: +5]")
	out := ApplyDeltas(rel, DeltasFromDirectives(directives), true)
	if out.Affinity != 15 {
		t.Errorf("Expected affinity 15, got %d", out.Affinity)
	}
}
