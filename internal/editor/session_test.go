package editor_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/editor"
	"github.com/goliatone/go-donation-pages/internal/pages"
)

func samplePage() pages.Page {
	return pages.Page{
		ID:      uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Name:    "Spring Drive",
		Slug:    "spring-drive",
		Heading: "Support local news",
		Elements: []blocks.Block{
			{UUID: "amount", Type: blocks.TypeAmount},
			{UUID: "frequency", Type: blocks.TypeFrequency},
			{UUID: "donor", Type: blocks.TypeDonorInfo, Content: blocks.FieldsContent{"askPhone": false}},
			{UUID: "payment", Type: blocks.TypePayment},
			{UUID: "text", Type: blocks.TypeRichText, Content: blocks.TextContent("hello")},
		},
		SidebarElements: []blocks.Block{
			{UUID: "side-img", Type: blocks.TypeImage, Content: blocks.ImageContent{Ref: "/media/a.png"}},
			{UUID: "side-pay", Type: blocks.TypePayment},
		},
	}
}

func TestSessionSetChangePreservesUnrelatedKeys(t *testing.T) {
	session := editor.NewSession(samplePage())
	session.SetChange(pages.Update{Heading: pages.Set("New")})
	session.SetChange(pages.Update{Name: pages.Set("Renamed")})

	preview := session.Preview()
	if preview.Heading != "New" || preview.Name != "Renamed" {
		t.Fatalf("expected both keys applied, got %q / %q", preview.Heading, preview.Name)
	}
	if session.Base().Heading != "Support local news" {
		t.Fatal("base must not change before a save")
	}
	if !session.HasChanges() {
		t.Fatal("expected staged changes")
	}
	session.ResetAll()
	if session.HasChanges() || session.Preview().Heading != "Support local news" {
		t.Fatal("expected reset to restore the base page")
	}
}

func TestSessionRemoveBlock(t *testing.T) {
	session := editor.NewSession(samplePage())

	for _, target := range []struct {
		uuid     string
		location editor.Location
	}{
		{"amount", editor.LocationMain},
		{"payment", editor.LocationMain},
		{"side-pay", editor.LocationSidebar},
	} {
		if session.RemoveBlock(target.uuid, target.location) {
			t.Fatalf("required block %s must not be removed", target.uuid)
		}
	}
	if session.HasChanges() {
		t.Fatal("removing required blocks must not stage anything")
	}

	if !session.RemoveBlock("text", editor.LocationMain) {
		t.Fatal("expected optional block removed")
	}
	if !session.RemoveBlock("side-img", editor.LocationSidebar) {
		t.Fatal("expected sidebar block removed")
	}
	preview := session.Preview()
	if len(preview.Elements) != 4 || blocks.IndexOf(preview.Elements, "text") >= 0 {
		t.Fatalf("unexpected main list %+v", preview.Elements)
	}
	if len(preview.SidebarElements) != 1 {
		t.Fatalf("unexpected sidebar list %+v", preview.SidebarElements)
	}
	if session.RemoveBlock("missing", editor.LocationMain) {
		t.Fatal("unknown block must be a no-op")
	}
}

func TestSessionElementBatchCommit(t *testing.T) {
	session := editor.NewSession(samplePage())
	session.SetChange(pages.Update{Heading: pages.Set("Staged heading")})

	if err := session.OpenElement("donor", editor.LocationMain); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := session.StageElementChange(editor.ElementChange{Content: blocks.FieldsContent{"askPhone": true}}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := session.StageElementChange(editor.ElementChange{
		Content:        blocks.FieldsContent{"askCompany": true},
		RequiredFields: []string{"phone"},
	}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	if session.Changes().Has(pages.KeyElements) {
		t.Fatal("element edits must not reach the change set before commit")
	}
	working, ok := session.Working()
	if !ok {
		t.Fatal("expected working copy")
	}
	content := working.Content.(blocks.FieldsContent)
	if content["askPhone"] != true || content["askCompany"] != true {
		t.Fatalf("expected merged working content, got %v", content)
	}

	if err := session.CommitElement(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, _, open := session.ElementOpen(); open {
		t.Fatal("commit must close the batch")
	}
	preview := session.Preview()
	donor := preview.Elements[blocks.IndexOf(preview.Elements, "donor")]
	if donor.Content.(blocks.FieldsContent)["askPhone"] != true || len(donor.RequiredFields) != 1 {
		t.Fatalf("expected committed block, got %+v", donor)
	}
	if preview.Heading != "Staged heading" {
		t.Fatal("commit must keep unrelated staged keys")
	}
}

func TestSessionElementBatchReset(t *testing.T) {
	session := editor.NewSession(samplePage())
	if err := session.OpenElement("text", editor.LocationMain); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := session.StageElementChange(editor.ElementChange{Content: blocks.TextContent("changed")}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	session.ResetElement()
	if session.HasChanges() {
		t.Fatal("reset must not stage anything")
	}
	if err := session.StageElementChange(editor.ElementChange{Content: blocks.TextContent("x")}); !errors.Is(err, editor.ErrNoOpenElement) {
		t.Fatalf("expected ErrNoOpenElement, got %v", err)
	}
}

func TestSessionOpenClosesPreviousBatch(t *testing.T) {
	session := editor.NewSession(samplePage())
	if err := session.OpenElement("text", editor.LocationMain); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := session.StageElementChange(editor.ElementChange{Content: blocks.TextContent("discarded")}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := session.OpenElement("side-img", editor.LocationSidebar); err != nil {
		t.Fatalf("open second: %v", err)
	}
	uuid, location, ok := session.ElementOpen()
	if !ok || uuid != "side-img" || location != editor.LocationSidebar {
		t.Fatalf("unexpected open target %s %s %v", uuid, location, ok)
	}
	if err := session.CommitElement(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	text := session.Preview().Elements[4].Content.(blocks.TextContent)
	if text != "hello" {
		t.Fatalf("first batch must be discarded, got %q", text)
	}

	if err := session.OpenElement("nope", editor.LocationMain); !errors.Is(err, editor.ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound, got %v", err)
	}
	if _, _, open := session.ElementOpen(); open {
		t.Fatal("failed open must leave the batch closed")
	}
}

func TestSessionCommitVanishedBlockFails(t *testing.T) {
	session := editor.NewSession(samplePage())
	if err := session.OpenElement("text", editor.LocationMain); err != nil {
		t.Fatalf("open: %v", err)
	}
	if !session.RemoveBlock("text", editor.LocationMain) {
		t.Fatal("expected removal")
	}
	err := session.CommitElement()
	if !errors.Is(err, editor.ErrBlockVanished) {
		t.Fatalf("expected ErrBlockVanished, got %v", err)
	}
	if blocks.IndexOf(session.Preview().Elements, "text") >= 0 {
		t.Fatal("vanished block must not be reinserted")
	}
	if failure := editor.Classify(err); failure.Kind != editor.FailureInternal {
		t.Fatalf("expected internal failure, got %+v", failure)
	}
}

func TestParseLocation(t *testing.T) {
	if loc, err := editor.ParseLocation("sidebar_elements"); err != nil || loc != editor.LocationSidebar {
		t.Fatalf("unexpected %v %v", loc, err)
	}
	if _, err := editor.ParseLocation("footer"); !errors.Is(err, editor.ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}
}
