package mediawiki

import "testing"

const sampleHistoryXML = `<?xml version="1.0"?>
<api>
  <query>
    <pages>
      <page pageid="100" title="Sandbox">
        <revisions>
          <rev revid="5" user="Alice" timestamp="2024-01-05T00:00:00Z"/>
          <rev revid="4" user="Alice" timestamp="2024-01-04T00:00:00Z"/>
          <rev revid="3" user="Bob" timestamp="2024-01-03T00:00:00Z"/>
        </revisions>
      </page>
    </pages>
  </query>
</api>`

func TestParseResult(t *testing.T) {
	res, err := ParseResult([]byte(sampleHistoryXML))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}

	if res.Data == "" {
		t.Error("raw Data not preserved")
	}

	page := res.GetNode("page")
	if page == nil {
		t.Fatal("GetNode(page) = nil")
	}
	if page.GetAttribute("title") != "Sandbox" {
		t.Errorf("page title = %q", page.GetAttribute("title"))
	}

	revs := res.GetNodes("rev")
	if len(revs) != 3 {
		t.Fatalf("GetNodes(rev) = %d nodes, want 3", len(revs))
	}
	if revs[0].GetAttribute("revid") != "5" {
		t.Errorf("first rev id = %q, want 5", revs[0].GetAttribute("revid"))
	}
	if !revs[2].HasAttribute("user") || revs[2].GetAttribute("user") != "Bob" {
		t.Errorf("third rev user = %q, want Bob", revs[2].GetAttribute("user"))
	}
}

func TestParseResultError(t *testing.T) {
	xml := `<api><error code="badtoken" info="Invalid token"/></api>`
	res, err := ParseResult([]byte(xml))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}

	errNode := res.GetNode("error")
	if errNode == nil {
		t.Fatal("GetNode(error) = nil")
	}
	if errNode.GetAttribute("code") != "badtoken" {
		t.Errorf("error code = %q", errNode.GetAttribute("code"))
	}
}

func TestParseResultMissingNode(t *testing.T) {
	res, err := ParseResult([]byte(`<api><query/></api>`))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if res.GetNode("rev") != nil {
		t.Error("GetNode(rev) should be nil")
	}
	if len(res.GetNodes("rev")) != 0 {
		t.Error("GetNodes(rev) should be empty")
	}
}

func TestParseResultMalformed(t *testing.T) {
	if _, err := ParseResult([]byte("not xml at <all")); err == nil {
		t.Error("malformed input did not error")
	}
	if _, err := ParseResult([]byte("")); err == nil {
		t.Error("empty input did not error")
	}
}

func TestRevisionContent(t *testing.T) {
	xml := `<api><rev revid="3" user="Bob">The old text</rev></api>`
	res, err := ParseResult([]byte(xml))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}

	revs := Revisions(res)
	if len(revs) != 1 {
		t.Fatalf("Revisions = %d, want 1", len(revs))
	}
	r := revs[0]
	if !r.HasID || r.ID != 3 {
		t.Errorf("ID = %d (has %v), want 3", r.ID, r.HasID)
	}
	if !r.HasUser || r.User != "Bob" {
		t.Errorf("User = %q (has %v), want Bob", r.User, r.HasUser)
	}
	if r.Content != "The old text" {
		t.Errorf("Content = %q", r.Content)
	}
}

func TestRevisionsMissingAttributes(t *testing.T) {
	xml := `<api><rev timestamp="2024-01-01T00:00:00Z"/></api>`
	res, err := ParseResult([]byte(xml))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}

	revs := Revisions(res)
	if len(revs) != 1 {
		t.Fatalf("Revisions = %d, want 1", len(revs))
	}
	if revs[0].HasID || revs[0].HasUser {
		t.Error("missing attributes reported as present")
	}
}
