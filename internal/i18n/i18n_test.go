package i18n

import (
	"reflect"
	"testing"
)

func TestBundlesFullyPopulated(t *testing.T) {
	for _, l := range Locales {
		b, ok := bundles[l]
		if !ok {
			t.Fatalf("no bundle for %q", l)
		}
		v := reflect.ValueOf(b)
		for i := 0; i < v.NumField(); i++ {
			name := v.Type().Field(i).Name
			f := v.Field(i)
			switch f.Kind() {
			case reflect.String:
				if f.String() == "" {
					t.Errorf("%s: %s is empty", l, name)
				}
			case reflect.Slice:
				if f.Len() == 0 {
					t.Errorf("%s: %s is empty", l, name)
				}
				for j := 0; j < f.Len(); j++ {
					if f.Index(j).String() == "" {
						t.Errorf("%s: %s[%d] is empty", l, name, j)
					}
				}
			}
		}
	}
}

func TestForReturnsLocaleBundle(t *testing.T) {
	if got := For(JA).SubmitCTA; got != "フィードバックを送信" {
		t.Errorf("For(JA).SubmitCTA = %q", got)
	}
	if got := For(EN).SubmitCTA; got != "Send feedback" {
		t.Errorf("For(EN).SubmitCTA = %q", got)
	}
	if got := For("").SubmitCTA; got != For(Default).SubmitCTA {
		t.Errorf("For(\"\") should fall back to the default bundle, got %q", got)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Locale
		ok   bool
	}{
		{"en", EN, true},
		{"ja", JA, true},
		{" JA ", JA, true},
		{"ja-JP", JA, true},
		{"en_US", EN, true},
		{"fr", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		header string
		want   Locale
	}{
		{"", JA},
		{"ja-JP,ja;q=0.9,en;q=0.8", JA},
		{"en-US,en;q=0.9", EN},
		{"fr-FR,ja;q=0.5", JA},
		{"de", JA},
	}
	for _, tc := range cases {
		if got := Match(tc.header, JA); got != tc.want {
			t.Errorf("Match(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestOptions(t *testing.T) {
	opts := Options(JA)
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
	if opts[0].Locale != EN || opts[0].Active {
		t.Errorf("unexpected first option %+v", opts[0])
	}
	if opts[1].Locale != JA || !opts[1].Active || opts[1].Label != "日本語" {
		t.Errorf("unexpected second option %+v", opts[1])
	}
}
