package slug

import "testing"

func TestIsStrictSlugValid(t *testing.T) {
	valid := []string{"valid-slug", "a", "a1-b2-c3", "simple-slug-123", "lowercase-letters", "12345", "1-2-3", "abc123", "abc-123"}
	for _, s := range valid {
		if !IsStrictSlug(s) {
			t.Errorf("expected %q to be a valid strict slug", s)
		}
	}
}

func TestIsStrictSlugInvalid(t *testing.T) {
	invalid := []string{
		"", "-invalid", "invalid-", "-", "-leading-and-trailing-",
		"consecutive--hyphens", "multiple---hyphens", "a--b",
		"Invalid-Caps", "invalid_slug", "invalid@slug!", "invalid slug",
		"invalid.slug", "invalid/slug", `invalid\slug`,
		"slugé", "slug中文", "slug-€", "1-2--3",
	}
	for _, s := range invalid {
		if IsStrictSlug(s) {
			t.Errorf("expected %q to be an invalid strict slug", s)
		}
	}
}

func TestStrictSlugIdempotence(t *testing.T) {
	cases := []string{"Hello World", "  leading", "trailing  ", "a---b", "MixedCase123", "é€中文", ""}
	for _, s := range cases {
		once := NewStrictSlug(s)
		twice := NewStrictSlug(once.String())
		if once.String() != twice.String() {
			t.Errorf("NewStrictSlug not idempotent for %q: %q != %q", s, once.String(), twice.String())
		}
	}
}

func TestLaxSlugIdempotence(t *testing.T) {
	cases := []string{"Hello World", "a/b/c", "MixedCase123", "é€中文", "already-ok_ok.ok+ok"}
	for _, s := range cases {
		once := NewLaxSlug(s)
		twice := NewLaxSlug(once.String())
		if once.String() != twice.String() {
			t.Errorf("NewLaxSlug not idempotent for %q: %q != %q", s, once.String(), twice.String())
		}
	}
}

func TestLaxSlugPreservesCaseAndLength(t *testing.T) {
	got := NewLaxSlug("Hello World!")
	want := "Hello-World-"
	if got.String() != want {
		t.Errorf("NewLaxSlug(%q) = %q, want %q", "Hello World!", got.String(), want)
	}
}

func TestNewStrictSlugTransliteratesDiacritics(t *testing.T) {
	cases := map[string]string{
		"Æúű--cool?":  "aeuu-cool",
		"Lörem Ipsum": "lorem-ipsum",
		"café":        "cafe",
		"Øresund":     "oresund",
		"Straße":      "strasse",
	}
	for in, want := range cases {
		if got := NewStrictSlug(in).String(); got != want {
			t.Errorf("NewStrictSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewLaxSlugTransliteratesDiacritics(t *testing.T) {
	got := NewLaxSlug("Lörem Ipsum")
	want := "Lorem-Ipsum"
	if got.String() != want {
		t.Errorf("NewLaxSlug(%q) = %q, want %q", "Lörem Ipsum", got.String(), want)
	}
}

func TestEitherSlugEqualityIgnoresFlavor(t *testing.T) {
	a := Strict(NewStrictSlug("dev-org"))
	b := Lax(NewLaxSlug("dev-org"))
	if !a.Equal(b) {
		t.Fatal("EitherSlug equality must be transparent to flavor")
	}
	if a.String() != b.String() {
		t.Fatal("EitherSlug string representations must match")
	}
}
