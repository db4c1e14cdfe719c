package blocks_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/pkg/testsupport"
)

func TestDefaultRegistryCoversEveryType(t *testing.T) {
	registry := blocks.DefaultRegistry()
	for _, blockType := range blocks.AllTypes() {
		descriptor, ok := registry.Descriptor(blockType)
		if !ok {
			t.Fatalf("missing descriptor for %s", blockType)
		}
		if descriptor.DisplayName == "" || descriptor.Render == nil {
			t.Fatalf("incomplete descriptor for %s: %+v", blockType, descriptor)
		}
	}
}

func TestNewRegistryRejectsIncompleteOrDuplicate(t *testing.T) {
	if _, err := blocks.NewRegistry(blocks.Descriptor{Type: blocks.TypeAmount}); !errors.Is(err, blocks.ErrDescriptorMissing) {
		t.Fatalf("expected ErrDescriptorMissing, got %v", err)
	}

	var descriptors []blocks.Descriptor
	for _, blockType := range blocks.AllTypes() {
		descriptors = append(descriptors, blocks.Descriptor{Type: blockType})
	}
	descriptors = append(descriptors, blocks.Descriptor{Type: blocks.TypeSwag})
	if _, err := blocks.NewRegistry(descriptors...); !errors.Is(err, blocks.ErrDuplicateDescriptor) {
		t.Fatalf("expected ErrDuplicateDescriptor, got %v", err)
	}

	if _, err := blocks.NewRegistry(blocks.Descriptor{Type: "carousel"}); !errors.Is(err, blocks.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestValidateContentUsesSchemas(t *testing.T) {
	registry := blocks.DefaultRegistry()

	valid := blocks.Block{
		UUID: "amount-1",
		Type: blocks.TypeAmount,
		Content: blocks.AmountContent{
			Options:  map[domain.Interval][]float64{domain.IntervalOneTime: {10, 25}},
			Defaults: map[domain.Interval]float64{domain.IntervalOneTime: 25},
		},
	}
	if err := registry.ValidateContent(valid); err != nil {
		t.Fatalf("expected valid amount content, got %v", err)
	}

	invalid := valid.Clone()
	invalid.Content = blocks.AmountContent{Options: map[domain.Interval][]float64{"weekly": {5}}}
	if err := registry.ValidateContent(invalid); err == nil {
		t.Fatal("expected unknown interval key to fail")
	}

	frequency := blocks.Block{UUID: "f", Type: blocks.TypeFrequency, Content: blocks.FrequencyContent{{Value: "fortnight"}}}
	if err := registry.ValidateContent(frequency); err == nil {
		t.Fatal("expected unknown frequency value to fail")
	}
}

func TestBlockJSONDispatchesContentByType(t *testing.T) {
	raw := `[
		{"uuid":"f1","type":"frequency","content":[{"value":"one_time","isDefault":true},{"value":"month","isDefault":false}],"requiredFields":[]},
		{"uuid":"i1","type":"image","content":"https://cdn.example.org/a.png","requiredFields":[]},
		{"uuid":"i2","type":"image","content":{},"requiredFields":[]},
		{"uuid":"r1","type":"rich-text","content":"**hi**","requiredFields":[]},
		{"uuid":"d1","type":"donor-info","content":{"askPhone":true},"requiredFields":["phone"]},
		{"uuid":"p1","type":"payment","content":null}
	]`
	var list []blocks.Block
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	frequency, ok := list[0].Content.(blocks.FrequencyContent)
	if !ok {
		t.Fatalf("expected FrequencyContent, got %T", list[0].Content)
	}
	if option, ok := frequency.Default(); !ok || option.Value != domain.IntervalOneTime {
		t.Fatalf("expected one_time default, got %+v", option)
	}
	if image := list[1].Content.(blocks.ImageContent); !image.Persisted() || image.Ref != "https://cdn.example.org/a.png" {
		t.Fatalf("expected persisted reference, got %+v", image)
	}
	if image := list[2].Content.(blocks.ImageContent); image.Persisted() {
		t.Fatalf("expected placeholder image, got %+v", image)
	}
	if text := list[3].Content.(blocks.TextContent); text != "**hi**" {
		t.Fatalf("unexpected text %q", text)
	}
	if fields := list[4].Content.(blocks.FieldsContent); fields["askPhone"] != true {
		t.Fatalf("unexpected fields %v", fields)
	}
	if list[5].Content != nil {
		t.Fatalf("expected nil content for null payload, got %#v", list[5].Content)
	}

	encoded, err := json.Marshal(list[5])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"uuid":"p1","type":"payment","content":null,"requiredFields":[]}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}

func TestBlockJSONRejectsUnknownType(t *testing.T) {
	var block blocks.Block
	err := json.Unmarshal([]byte(`{"uuid":"x","type":"carousel"}`), &block)
	if !errors.Is(err, blocks.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestImageUploadNeverEntersJSON(t *testing.T) {
	image := blocks.Block{
		UUID:    "img",
		Type:    blocks.TypeImage,
		Content: blocks.ImageContent{Ref: "old.png", Upload: &domain.Upload{Filename: "new.png", Data: []byte("png")}},
	}
	encoded, err := json.Marshal(image)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(encoded), "png") {
		t.Fatalf("expected upload and stale reference to stay out of JSON, got %s", encoded)
	}
	if !image.HasUpload() {
		t.Fatal("expected HasUpload")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := blocks.Block{
		UUID:           "d",
		Type:           blocks.TypeDonorInfo,
		Content:        blocks.FieldsContent{"nested": map[string]any{"a": 1}},
		RequiredFields: []string{"email"},
	}
	cloned := original.Clone()
	cloned.RequiredFields[0] = "phone"
	cloned.Content.(blocks.FieldsContent)["nested"].(map[string]any)["a"] = 2

	if original.RequiredFields[0] != "email" {
		t.Fatal("expected required fields to be copied")
	}
	if original.Content.(blocks.FieldsContent)["nested"].(map[string]any)["a"] != 1 {
		t.Fatal("expected nested content to be copied")
	}
}

func TestMergeContent(t *testing.T) {
	merged := blocks.MergeContent(blocks.FieldsContent{"a": 1, "b": 2}, blocks.FieldsContent{"b": 3})
	fields := merged.(blocks.FieldsContent)
	if fields["a"] != 1 || fields["b"] != 3 {
		t.Fatalf("expected key-wise merge, got %v", fields)
	}

	replaced := blocks.MergeContent(blocks.TextContent("old"), blocks.TextContent("new"))
	if replaced != blocks.TextContent("new") {
		t.Fatalf("expected replacement, got %v", replaced)
	}
	if kept := blocks.MergeContent(blocks.TextContent("old"), nil); kept != blocks.TextContent("old") {
		t.Fatalf("expected nil change to keep current, got %v", kept)
	}
}

func TestDuplicateUUIDs(t *testing.T) {
	list := []blocks.Block{{UUID: "a"}, {UUID: "b"}, {UUID: "a"}, {UUID: "a"}}
	if dupes := blocks.DuplicateUUIDs(list); len(dupes) != 1 || dupes[0] != "a" {
		t.Fatalf("expected a single duplicate, got %v", dupes)
	}
	if blocks.IndexOf(list, "b") != 1 || blocks.IndexOf(list, "z") != -1 {
		t.Fatal("unexpected IndexOf result")
	}
}

func TestRenderDocument(t *testing.T) {
	registry := blocks.DefaultRegistry()
	doc, err := registry.RenderDocument("Give <today>", []blocks.Block{
		{UUID: "r", Type: blocks.TypeRichText, Content: blocks.TextContent("# Hello\n\n<script>x</script>")},
		{UUID: "i", Type: blocks.TypeImage, Content: blocks.ImageContent{Ref: "https://cdn.example.org/x.png"}},
	}, []blocks.Block{{UUID: "s", Type: blocks.TypeSwag}})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	for _, want := range []string{`id="page-preview"`, "<h1 id=\"hello\">Hello</h1>", `src="https://cdn.example.org/x.png"`, "Give &lt;today&gt;", `data-uuid="s"`} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected document to contain %q\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "<script>") {
		t.Fatalf("expected raw html to be omitted\n%s", doc)
	}
}

func TestFixturePageSatisfiesDefaultPlan(t *testing.T) {
	var elements []blocks.Block
	testsupport.LoadJSONFixture(t, "testdata/spring_elements.json", &elements)

	validator := blocks.NewValidator(blocks.DefaultRegistry(), blocks.Plan{Name: "free"})
	if report := validator.Validate(elements); report.Err() != nil {
		t.Fatalf("expected fixture to satisfy the plan, got %v", report.Err())
	}
	for _, block := range elements {
		if err := blocks.DefaultRegistry().ValidateContent(block); err != nil {
			t.Fatalf("fixture block %s failed schema validation: %v", block.UUID, err)
		}
	}
}
