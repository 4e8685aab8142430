package service

import "testing"

func TestConvertVolume(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"150", 150},
		{"12k", 12000},
		{"1.5M", 1500000},
		{"2.25k", 2250},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := ConvertVolume(c.in); got != c.want {
			t.Errorf("ConvertVolume(%q) = %f, want %f", c.in, got, c.want)
		}
	}
}
