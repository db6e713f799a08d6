package usecase

import "testing"

func strPtr(s string) *string { return &s }

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		name string
		raw  *string
		want int
		ok   bool
	}{
		{"absent", nil, 1, true},
		{"one", strPtr("1"), 1, true},
		{"ten", strPtr("10"), 10, true},
		{"integral float", strPtr("2.0"), 2, true},
		{"exponent", strPtr("1e1"), 10, true},
		{"padded", strPtr(" 3 "), 3, true},
		{"zero", strPtr("0"), 0, false},
		{"eleven", strPtr("11"), 0, false},
		{"negative", strPtr("-1"), 0, false},
		{"fraction", strPtr("2.5"), 0, false},
		{"word", strPtr("abc"), 0, false},
		{"empty", strPtr(""), 0, false},
		{"nan", strPtr("NaN"), 0, false},
		{"inf", strPtr("Inf"), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseQuantity(tc.raw)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ParseQuantity = (%d, %v), want (%d, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestParseMetadataQuantity(t *testing.T) {
	cases := map[string]struct {
		want int
		ok   bool
	}{
		"":    {1, true},
		"2":   {2, true},
		"12":  {12, true},
		"0":   {0, false},
		"-3":  {0, false},
		"1.5": {0, false},
		"two": {0, false},
	}
	for raw, tc := range cases {
		got, ok := ParseMetadataQuantity(raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseMetadataQuantity(%q) = (%d, %v), want (%d, %v)", raw, got, ok, tc.want, tc.ok)
		}
	}
}
