package taxonomy

import "testing"

func TestResolve(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name string
		code Code
		want Descriptor
	}{
		{"alias taken", CodeAliasTaken, defaultTable[CodeAliasTaken]},
		{"not human", CodeNotHuman, defaultTable[CodeNotHuman]},
		{"unmapped code falls back", "X_UNKNOWN", Unknown},
		{"empty code falls back", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.code); got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.code, got, tt.want)
			}
		})
	}
}

func TestResolve_EveryCodeHasDescriptor(t *testing.T) {
	r := NewResolver(nil)
	codes := []Code{
		CodeUnauthorized, CodeAliasTaken, CodeNotHuman, CodeInvalidLongLink,
		CodeInvalidAlias, CodeMaliciousLink, CodeRateLimited, CodeInternal,
	}
	for _, c := range codes {
		if !r.Known(c) {
			t.Errorf("code %q has no descriptor", c)
		}
		d := r.Resolve(c)
		if d.Name == "" || d.Description == "" {
			t.Errorf("code %q resolved to incomplete descriptor %+v", c, d)
		}
	}
}

func TestResolve_Overrides(t *testing.T) {
	custom := Descriptor{Name: "Taken", Description: "pick another"}
	r := NewResolver(map[Code]Descriptor{
		CodeAliasTaken: custom,
		"quotaExceeded": {Name: "Quota", Description: "quota exceeded"},
	})

	if got := r.Resolve(CodeAliasTaken); got != custom {
		t.Errorf("override not applied: got %+v", got)
	}
	if got := r.Resolve("quotaExceeded"); got.Name != "Quota" {
		t.Errorf("extension not applied: got %+v", got)
	}
	if got := r.Resolve(CodeNotHuman); got != defaultTable[CodeNotHuman] {
		t.Errorf("default lost after override: got %+v", got)
	}
}

func TestResolve_NilResolver(t *testing.T) {
	var r *Resolver
	if got := r.Resolve(CodeAliasTaken); got != Unknown {
		t.Errorf("nil resolver: got %+v, want Unknown", got)
	}
}

func TestPrioritize(t *testing.T) {
	tests := []struct {
		name   string
		codes  []Code
		want   Code
		wantOK bool
	}{
		{"empty", nil, "", false},
		{"single", []Code{CodeAliasTaken}, CodeAliasTaken, true},
		{"first wins among business codes", []Code{CodeNotHuman, CodeAliasTaken}, CodeNotHuman, true},
		{"authorization first", []Code{CodeUnauthorized, CodeAliasTaken}, CodeUnauthorized, true},
		{"authorization later still wins", []Code{CodeAliasTaken, CodeUnauthorized}, CodeUnauthorized, true},
		{"unknown first", []Code{"X_UNKNOWN", CodeAliasTaken}, "X_UNKNOWN", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Prioritize(tt.codes)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Prioritize(%v) = (%q, %v), want (%q, %v)", tt.codes, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
