package wp2mdx

// Notes:
// - MetaValue decoding covers the shapes post meta takes in exports: single
//   values, repeated keys merged into arrays, serialized objects and null.

import (
	"slices"
	"testing"

	"github.com/goccy/go-json"
)

// ---------------------------------------------------------------------------
// TestMetaValue - Post meta decoding
// ---------------------------------------------------------------------------

func TestMetaValue_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected MetaValue
	}{
		{"string", `"SEO text"`, MetaValue{"SEO text"}},
		{"number", `42`, MetaValue{"42"}},
		{"float", `1.5`, MetaValue{"1.5"}},
		{"boolean", `true`, MetaValue{"true"}},
		{"null", `null`, nil},
		{"array", `["a", 2, null]`, MetaValue{"a", "2", ""}},
		{"object kept as text", `{"k":"v"}`, MetaValue{`{"k":"v"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got MetaValue
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal(%s) unexpected error: %v", tt.input, err)
			}
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMetaValue_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    MetaValue
		expected string
	}{
		{"single value is a string", MetaValue{"x"}, `"x"`},
		{"several values are an array", MetaValue{"x", "y"}, `["x","y"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tt.input)
			if err != nil {
				t.Fatalf("Marshal() unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("Marshal() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestMetaValue_First(t *testing.T) {
	t.Parallel()

	if got := (MetaValue{"a", "b"}).First(); got != "a" {
		t.Errorf("First() = %q, want a", got)
	}
	if got := MetaValue(nil).First(); got != "" {
		t.Errorf("First() on nil = %q, want empty", got)
	}
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	in := `{
		"id": 7, "title": "Hi", "type": "post", "parentId": 0,
		"categories": [{"id": 1, "name": "News", "slug": "news"}],
		"featuredImage": {"url": "/wp-content/uploads/a.jpg", "alt": "A"},
		"meta": {"_yoast_wpseo_metadesc": "Desc", "multi": ["x", "y"]},
		"taxonomies": {"genre": [{"slug": "jazz"}]}
	}`

	var rec Record
	if err := json.Unmarshal([]byte(in), &rec); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	if rec.ID != 7 || rec.Title != "Hi" || rec.Type != TypePost {
		t.Errorf("scalar fields = %+v", rec)
	}
	if got := termSlugs(rec.Categories); !slices.Equal(got, []string{"news"}) {
		t.Errorf("category slugs = %v", got)
	}
	if rec.FeaturedImage == nil || rec.FeaturedImage.Alt != "A" {
		t.Errorf("FeaturedImage = %+v", rec.FeaturedImage)
	}
	if got := rec.Meta["multi"]; !slices.Equal(got, MetaValue{"x", "y"}) {
		t.Errorf("meta multi = %v", got)
	}
	if got := termSlugs(rec.Taxonomies["genre"]); !slices.Equal(got, []string{"jazz"}) {
		t.Errorf("genre slugs = %v", got)
	}
}

func TestTermSlugs(t *testing.T) {
	t.Parallel()

	if got := termSlugs(nil); got != nil {
		t.Errorf("termSlugs(nil) = %v, want nil", got)
	}
	got := termSlugs([]Term{{Slug: "a"}, {Name: "no slug"}, {Slug: "b"}})
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("termSlugs() = %v, want [a b]", got)
	}
}
