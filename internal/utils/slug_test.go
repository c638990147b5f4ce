package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Maquillage jour", "maquillage-jour"},
		{"  Cours d'auto-maquillage  ", "cours-dauto-maquillage"},
		{"Teint & Contour", "teint-and-contour"},
		{"Avant/Après", "avant-apr-s"},
		{"---", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
