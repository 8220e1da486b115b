package contentindex

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFrontMatterYAML(t *testing.T) {
	t.Parallel()

	data := []byte(`---
title: "Convert PDF to Word in Java"
seoTitle: Convert PDF to DOCX
url: /words/convert-pdf-to-word-in-java/
date: 2025-10-10T01:28:57+00:00
tags: [Java, PDF]
categories:
  - Aspose.Words Product Family
---
Body text.
`)

	fm, err := ParseFrontMatter("index.md", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fm.String("title") != "Convert PDF to Word in Java" {
		t.Fatalf("unexpected title %q", fm.String("title"))
	}
	if got := fm.List("tags"); !reflect.DeepEqual(got, []string{"Java", "PDF"}) {
		t.Fatalf("unexpected tags %v", got)
	}
	if fm.Date() != "2025-10-10T01:28:57+00:00" {
		t.Fatalf("unexpected date %q", fm.Date())
	}
	if _, ok := fm["date"].(string); !ok {
		t.Fatalf("declared date text not kept: %T", fm["date"])
	}
	want := "Convert PDF to Word in Java Convert PDF to DOCX /words/convert-pdf-to-word-in-java/ Java PDF Aspose.Words Product Family"
	if got := fm.PlatformText(); got != want {
		t.Fatalf("unexpected platform text %q", got)
	}
}

func TestParseFrontMatterTOML(t *testing.T) {
	t.Parallel()

	data := []byte(`+++
title = "Merge Excel Files in Python"
date = 2024-03-01T10:00:00Z
tags = ["python", "excel"]
+++
`)

	fm, err := ParseFrontMatter("index.md", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fm.String("title") != "Merge Excel Files in Python" {
		t.Fatalf("unexpected title %q", fm.String("title"))
	}
	if fm.Date() != "2024-03-01T10:00:00Z" {
		t.Fatalf("unexpected date %q", fm.Date())
	}
	if got := fm.List("tags"); !reflect.DeepEqual(got, []string{"python", "excel"}) {
		t.Fatalf("unexpected tags %v", got)
	}
}

func TestParseFrontMatterErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"no fence", "title: x\n"},
		{"unclosed", "---\ntitle: x\n"},
		{"not a mapping", "---\n- a\n- b\n---\n"},
	}
	for _, tc := range cases {
		_, err := ParseFrontMatter("post/index.md", []byte(tc.data))
		var fmErr *FrontMatterError
		if !errors.As(err, &fmErr) {
			t.Fatalf("%s: expected FrontMatterError, got %v", tc.name, err)
		}
		if fmErr.Path != "post/index.md" {
			t.Fatalf("%s: unexpected path %q", tc.name, fmErr.Path)
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in string
		ok bool
	}{
		{"Fri, 10 Oct 2025 01:28:57 +0000", true},
		{"2025-10-10T01:28:57+00:00", true},
		{"2025-10-10 01:28:57", true},
		{"2025-10-10", true},
		{"someday", false},
		{"", false},
	}
	for _, tc := range cases {
		if _, ok := parseDate(tc.in); ok != tc.ok {
			t.Fatalf("parseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}
