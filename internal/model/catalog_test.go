package model

import "testing"

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Category
	}{
		{"定向", CategoryOrientation},
		{"生活", CategoryDailyLiving},
		{" 生活 ", CategoryDailyLiving},
		{"", CategoryOrientation},
		{"other", CategoryOrientation},
		{"Daily", CategoryOrientation},
	}
	for _, tc := range cases {
		if got := NormalizeCategory(tc.in); got != tc.want {
			t.Fatalf("NormalizeCategory(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestOptionsFor(t *testing.T) {
	t.Parallel()

	or := OptionsFor(CategoryOrientation)
	dl := OptionsFor(CategoryDailyLiving)
	if len(or) == 0 || len(dl) == 0 {
		t.Fatalf("catalog lists must be non-empty")
	}
	if or[0] != "感官知覺/動作能力" {
		t.Fatalf("first orientation label = %q", or[0])
	}
	if DefaultGoal(CategoryDailyLiving) != dl[0] {
		t.Fatalf("default goal must be the first label")
	}
	// Unknown categories fall back to the orientation list.
	fb := OptionsFor(Category("x"))
	if len(fb) != len(or) || fb[0] != or[0] {
		t.Fatalf("unknown category should fall back to orientation list")
	}
	// 手杖技巧 is orientation-only; the category-switch behavior depends on it.
	for _, l := range dl {
		if l == "手杖技巧" {
			t.Fatalf("手杖技巧 must not appear under 生活")
		}
	}
}
