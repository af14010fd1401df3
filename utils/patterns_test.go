package utils

import "testing"

func TestPathMatcherDefaultsToInclude(t *testing.T) {
	m := NewPathMatcher(nil, nil)
	if !m.Match("/repo/src/a.ts") {
		t.Fatal("empty matcher should include everything")
	}
	var nilMatcher *PathMatcher
	if !nilMatcher.Match("/repo/src/a.ts") {
		t.Fatal("nil matcher should include everything")
	}
}

func TestPathMatcherGlobInclude(t *testing.T) {
	m := NewPathMatcher([]string{"*.ts"}, nil)
	if !m.Match("/repo/src/a.ts") {
		t.Fatal("expected glob include to match")
	}
	if m.Match("/repo/src/a.js") {
		t.Fatal("expected non-matching file to be excluded")
	}
}

func TestPathMatcherRegexExclude(t *testing.T) {
	m := NewPathMatcher(nil, []string{`node_modules/`})
	if m.Match("/repo/node_modules/x/index.js") {
		t.Fatal("expected regex exclude to reject path")
	}
	if !m.Match("/repo/src/index.js") {
		t.Fatal("expected other path to pass")
	}
}

func TestPathMatcherExcludeWinsOverInclude(t *testing.T) {
	m := NewPathMatcher([]string{`\.ts$`}, []string{`\.d\.ts$`})
	if m.Match("/repo/types/a.d.ts") {
		t.Fatal("exclude should win")
	}
	if !m.Match("/repo/src/a.ts") {
		t.Fatal("include should still pass")
	}
}

func TestPathMatcherIgnoresInvalidRegex(t *testing.T) {
	m := NewPathMatcher([]string{"["}, nil)
	if m.Match("/repo/src/a.ts") {
		t.Fatal("broken include rule should not match everything")
	}
}
