package controllers

import (
	"reflect"
	"testing"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"0", 1},
		{"-3", 1},
		{"abc", 1},
		{"1", 1},
		{"12", 12},
	}
	for _, c := range cases {
		if got := parsePage(c.raw); got != c.want {
			t.Errorf("parsePage(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"a,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{"a,a,b", []string{"a", "b"}},
	}
	for _, c := range cases {
		if got := splitTags(c.raw); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitTags(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}
