package model

import "testing"

func TestDocumentID(t *testing.T) {
	tests := []struct {
		name   string
		doc    Document
		wantID string
		wantOK bool
	}{
		{"present", Document{"_id": "42"}, "42", true},
		{"missing", Document{"title": "x"}, "", false},
		{"wrong type", Document{"_id": 42}, "", false},
		{"empty string", Document{"_id": ""}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.doc.ID()
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("ID() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	doc := Document{
		"title":   "Hello World",
		"tags":    []interface{}{"red", "blue", 5},
		"meta":    map[string]interface{}{"subtitle": "A Tale"},
		"missing": nil,
		"ignored": 123,
	}

	got := ExtractText(doc, []string{"title", "tags", "meta", "absent"})
	want := "Hello World red blue A Tale"

	if got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}
}

func TestExtractTextEmptyFields(t *testing.T) {
	doc := Document{"title": "Hello"}
	if got := ExtractText(doc, nil); got != "" {
		t.Errorf("ExtractText(nil fields) = %q, want empty", got)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	doc := Document{"_id": "1", "title": "Hello"}

	s, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	v, err := Deserialize(s)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("Deserialize result type = %T, want map[string]interface{}", v)
	}
	if m["_id"] != "1" || m["title"] != "Hello" {
		t.Errorf("round-tripped document = %v, want _id=1 title=Hello", m)
	}
}
