package ui

import "testing"

func TestTruncateCells(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a long folder name", 10, "a long fo…"},
		{"anything", 0, ""},
		{"日本語のフォルダ", 8, "日本語…"},
	}
	for _, c := range cases {
		if got := truncateCells(c.in, c.width, "…"); got != c.want {
			t.Errorf("truncateCells(%q, %d) = %q, want %q", c.in, c.width, got, c.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not truncate, got %q", got)
	}
}

func TestThemeNodeColorPrecedence(t *testing.T) {
	th := TestTheme()

	if th.NodeColor(true, true, "Confidential") != th.SelectedNode {
		t.Error("selection must win over every other color")
	}
	if th.NodeColor(true, false, "") != th.Root {
		t.Error("root color expected")
	}
	if th.NodeColor(false, false, "Confidential") != th.Confidential {
		t.Error("Confidential classification color expected")
	}
	if th.NodeColor(false, false, "Restricted") != th.Public {
		t.Error("unrecognized classification should use the catch-all color")
	}
	if th.NodeColor(false, false, "") != th.Folder {
		t.Error("unclassified folders use the default color")
	}
}
