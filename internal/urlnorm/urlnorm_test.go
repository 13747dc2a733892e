package urlnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips utm and click ids", "https://a.com/x?utm_source=y&id=5&fbclid=z", "https://a.com/x?id=5"},
		{"strips gclid and ref", "https://a.com/x?gclid=1&ref=home&yclid=2&referrer=b", "https://a.com/x"},
		{"keeps query order", "https://a.com/x?b=2&a=1&c=3", "https://a.com/x?b=2&a=1&c=3"},
		{"drops fragment", "https://a.com/x#section", "https://a.com/x"},
		{"strips trailing slash", "https://a.com/x/", "https://a.com/x"},
		{"keeps root slash", "https://a.com/", "https://a.com/"},
		{"empty path becomes root", "https://a.com", "https://a.com/"},
		{"collapses duplicate slashes", "https://a.com//x///y/", "https://a.com/x/y"},
		{"trims surrounding whitespace", "  https://a.com/x  ", "https://a.com/x"},
		{"keeps encoded slash in segment", "https://a.com/a%2Fb/c", "https://a.com/a%2Fb/c"},
		{"strips trailing slash after encoded segment", "https://a.com/a%2Fb/", "https://a.com/a%2Fb"},
		{"empty input", "", ""},
		{"keeps blank query values", "https://a.com/x?a=&b=1", "https://a.com/x?a=&b=1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://a.com/x?utm_source=y&id=5",
		"https://a.com/path//to/page/?b=2&a=1#frag",
		"https://a.com",
		"https://a.com/x?q=hello%20world",
		"https://a.com/a%2Fb/c?utm_source=y",
		"not a url at all",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
