package utils

import (
	"path/filepath"
	"regexp"
)

// PathMatcher filters paths with include/exclude rules. Each rule is tried
// first as a glob against the base name, then as a regular expression
// against the full path. Invalid regex rules are ignored.
type PathMatcher struct {
	include []pathRule
	exclude []pathRule
}

type pathRule struct {
	glob string
	re   *regexp.Regexp
}

func NewPathMatcher(include, exclude []string) *PathMatcher {
	return &PathMatcher{
		include: compileRules(include),
		exclude: compileRules(exclude),
	}
}

func (m *PathMatcher) Match(path string) bool {
	if m == nil {
		return true
	}
	if len(m.include) > 0 && !anyRuleMatches(path, m.include) {
		return false
	}
	if len(m.exclude) > 0 && anyRuleMatches(path, m.exclude) {
		return false
	}
	return true
}

func anyRuleMatches(path string, rules []pathRule) bool {
	base := filepath.Base(path)
	for _, rule := range rules {
		if ok, _ := filepath.Match(rule.glob, base); ok {
			return true
		}
		if rule.re != nil && rule.re.MatchString(path) {
			return true
		}
	}
	return false
}

func compileRules(patterns []string) []pathRule {
	rules := make([]pathRule, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		rule := pathRule{glob: pattern}
		if re, err := regexp.Compile(pattern); err == nil {
			rule.re = re
		}
		rules = append(rules, rule)
	}
	return rules
}
