package decode_test

import (
	"testing"

	"github.com/JaimeStill/webcarros/pkg/decode"
)

type record struct {
	Name   string   `json:"name"`
	Year   string   `json:"year"`
	Images []string `json:"images"`
}

func TestFromMap(t *testing.T) {
	data := map[string]any{
		"name":   "ONIX",
		"year":   "2015",
		"images": []any{"a", "b"},
		"extra":  true,
	}

	got, err := decode.FromMap[record](data)
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}

	if got.Name != "ONIX" || got.Year != "2015" {
		t.Errorf("FromMap() = %+v", got)
	}
	if len(got.Images) != 2 {
		t.Errorf("len(Images) = %d, want 2", len(got.Images))
	}
}

func TestFromMap_TypeMismatch(t *testing.T) {
	_, err := decode.FromMap[record](map[string]any{"name": 42})
	if err == nil {
		t.Error("FromMap() succeeded with mismatched type, want error")
	}
}

func TestToMap(t *testing.T) {
	got, err := decode.ToMap(record{Name: "ONIX", Images: []string{"a"}})
	if err != nil {
		t.Fatalf("ToMap() error = %v", err)
	}

	if got["name"] != "ONIX" {
		t.Errorf("name = %v, want ONIX", got["name"])
	}
	images, ok := got["images"].([]any)
	if !ok || len(images) != 1 {
		t.Errorf("images = %#v, want one element", got["images"])
	}
}

func TestToMap_NotObject(t *testing.T) {
	if _, err := decode.ToMap([]string{"a"}); err == nil {
		t.Error("ToMap() succeeded for slice, want error")
	}
}
