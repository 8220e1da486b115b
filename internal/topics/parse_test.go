package topics

import "testing"

const validTopic = `{"cluster_id":"c1","title":"Convert PDF to Word in Java","angle":"a","outline":["x","y","z"],"target_persona":"dev","primary_keyword":"pdf to word","supporting_keywords":["pdf to word java"]}`

func TestParseTopicsDirect(t *testing.T) {
	t.Parallel()

	res := ParseTopics(`{"topics":[` + validTopic + `]}`)
	if res.Outcome != ParsedDirect || len(res.Topics) != 1 || res.Dropped != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	got := res.Topics[0]
	if got.ClusterID != "c1" || got.Title != "Convert PDF to Word in Java" {
		t.Fatalf("unexpected topic %+v", got)
	}
	if got.InternalLinks == nil {
		t.Fatalf("internal links must default to an empty list")
	}
}

func TestParseTopicsSalvagesFencedJSON(t *testing.T) {
	t.Parallel()

	text := "```json\n{\"topics\":[" + validTopic + "]}\n```"
	res := ParseTopics(text)
	if res.Outcome != ParsedSalvaged || len(res.Topics) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	res = ParseTopics("Here you go: {\"topics\":[" + validTopic + "]} Enjoy!")
	if res.Outcome != ParsedSalvaged || len(res.Topics) != 1 {
		t.Fatalf("unexpected result for prose-wrapped json %+v", res)
	}
}

func TestParseTopicsUnparseable(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"not json at all", "", "{ broken", "```\nnope\n```"} {
		res := ParseTopics(text)
		if res.Outcome != Unparseable || len(res.Topics) != 0 {
			t.Fatalf("ParseTopics(%q) = %+v", text, res)
		}
	}
}

func TestParseTopicsWrongShape(t *testing.T) {
	t.Parallel()

	for _, text := range []string{`[1,2]`, `{"ideas":[]}`, `{"topics":"none"}`, `{"topics":null}`, `"topics"`} {
		res := ParseTopics(text)
		if res.Outcome != WrongShape || len(res.Topics) != 0 {
			t.Fatalf("ParseTopics(%q) = %+v", text, res)
		}
	}
}

func TestParseTopicsDropsBadElements(t *testing.T) {
	t.Parallel()

	text := `{"topics":[` +
		validTopic + `,` +
		`"just a string",` +
		`{"cluster_id":"c2","title":"missing fields"},` +
		`{"cluster_id":7,"title":"Numeric id","angle":"a","outline":[],"target_persona":"p","primary_keyword":"k","supporting_keywords":[],"internal_links":["x"]},` +
		`{"cluster_id":true,"title":"Bad id","angle":"a","outline":[],"target_persona":"p","primary_keyword":"k","supporting_keywords":[]},` +
		`{"cluster_id":"c3","title":"Bad outline","angle":"a","outline":[1],"target_persona":"p","primary_keyword":"k","supporting_keywords":[]}` +
		`]}`

	res := ParseTopics(text)
	if res.Outcome != ParsedDirect {
		t.Fatalf("unexpected outcome %s", res.Outcome)
	}
	if len(res.Topics) != 2 || res.Dropped != 4 {
		t.Fatalf("expected 2 topics and 4 dropped, got %d and %d", len(res.Topics), res.Dropped)
	}
	if res.Topics[1].ClusterID != "7" {
		t.Fatalf("expected numeric id as text, got %q", res.Topics[1].ClusterID)
	}
}

func TestParseOutcomeString(t *testing.T) {
	t.Parallel()

	if ParsedSalvaged.String() != "salvaged" || ParseOutcome(42).String() != "unknown" {
		t.Fatalf("unexpected outcome names")
	}
}
