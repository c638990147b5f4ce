package httpx

import (
	"net/url"
	"strings"
	"testing"
)

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := DecodeJSON(strings.NewReader(`{"name":"a","extra":true}`), &out)
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := DecodeJSON(strings.NewReader(`{"name":"a"}{"name":"b"}`), &out)
	if err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestDecodeJSONOK(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(strings.NewReader(`{"name":"a"}`), &out); err != nil {
		t.Fatalf("DecodeJSON error: %v", err)
	}
	if out.Name != "a" {
		t.Fatalf("unexpected value: %q", out.Name)
	}
}

func TestParseLimitOffsetDefaults(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{}, 20, 100)
	if err != nil {
		t.Fatalf("ParseLimitOffset error: %v", err)
	}
	if limit != 20 || offset != 0 {
		t.Fatalf("unexpected defaults: limit=%d offset=%d", limit, offset)
	}
}

func TestParseLimitOffsetClampsMax(t *testing.T) {
	values := url.Values{"limit": {"500"}, "offset": {"10"}}
	limit, offset, err := ParseLimitOffset(values, 20, 100)
	if err != nil {
		t.Fatalf("ParseLimitOffset error: %v", err)
	}
	if limit != 100 || offset != 10 {
		t.Fatalf("unexpected values: limit=%d offset=%d", limit, offset)
	}
}

func TestParseLimitOffsetRejectsInvalid(t *testing.T) {
	for _, values := range []url.Values{
		{"limit": {"abc"}},
		{"limit": {"0"}},
		{"limit": {"-1"}},
		{"offset": {"-5"}},
	} {
		if _, _, err := ParseLimitOffset(values, 20, 100); err == nil {
			t.Fatalf("expected error for %v", values)
		}
	}
}
