package identification

import "testing"

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"  Inception ":    "inception",
		"The  Matrix":     "the  matrix",
		"\tHeat\n":        "heat",
		"AMÉLIE":          "amélie",
		"":                "",
		"Alien: Romulus ": "alien: romulus",
	}
	for input, want := range cases {
		if got := normalizeTitle(input); got != want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractYear(t *testing.T) {
	cases := map[string]int{
		" 2010 ":             2010,
		"(1995) (TV Movie)":  1995,
		"2000TV Mini Series": 2000,
		"Video":              0,
		"tt12345678 (2001)":  2001,
		"I (2019) 2020-2021": 2019,
	}
	for input, want := range cases {
		if got := extractYear(input); got != want {
			t.Errorf("extractYear(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestIsTVAnnotation(t *testing.T) {
	if !isTVAnnotation("2019 TV Mini Series") {
		t.Error("expected TV Mini Series to be television")
	}
	if !isTVAnnotation("tv movie") {
		t.Error("expected lowercase tv movie to be television")
	}
	if isTVAnnotation("2010 Video") {
		t.Error("expected Video not to be television")
	}
}
