package domain

import "testing"

func TestParseTitleID(t *testing.T) {
	ok := []string{"tt0944947", " tt0000001 ", "nm_1-2"}
	for _, s := range ok {
		if _, valid := ParseTitleID(s); !valid {
			t.Fatalf("期望合法：%q", s)
		}
	}
	bad := []string{"", "  ", "tt/123", "tt 1", "tt?x=1", "../etc"}
	for _, s := range bad {
		if _, valid := ParseTitleID(s); valid {
			t.Fatalf("期望非法：%q", s)
		}
	}
}
