package tui

import (
	"testing"

	"goalplan/internal/store"
)

func TestResolveThemePreference_ConfigWins(t *testing.T) {
	cases := []struct {
		name string
		cfg  *store.GlobalConfig
		want themeID
	}{
		{"explicit dark", &store.GlobalConfig{UI: &store.UIConfig{Theme: "dark"}}, themeDark},
		{"explicit light", &store.GlobalConfig{UI: &store.UIConfig{Theme: "light"}}, themeLight},
		{"padded and cased", &store.GlobalConfig{UI: &store.UIConfig{Theme: "  Dark "}}, themeDark},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveThemePreference(tc.cfg); got != tc.want {
				t.Fatalf("resolveThemePreference = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestToggleTheme_FlipsAndSticks(t *testing.T) {
	setTheme(themeLight)
	t.Cleanup(func() { setTheme(themeLight) })

	if got := toggleTheme(); got != themeDark {
		t.Fatalf("toggle from light = %q, want dark", got)
	}
	if activeTheme() != themeDark {
		t.Fatal("toggle must persist in activeTheme")
	}
	if markdownStyle() != "dark" {
		t.Fatalf("markdownStyle = %q, want dark", markdownStyle())
	}
	if got := toggleTheme(); got != themeLight {
		t.Fatalf("toggle from dark = %q, want light", got)
	}
}
