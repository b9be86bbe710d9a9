package models

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "simple title",
			title: "Brand Refresh",
			want:  "brand-refresh",
		},
		{
			name:  "uppercase is lowered",
			title: "ACME Rebrand",
			want:  "acme-rebrand",
		},
		{
			name:  "punctuation collapses to single hyphen",
			title: "Art & Direction: 2024!",
			want:  "art-direction-2024",
		},
		{
			name:  "leading and trailing separators are stripped",
			title: "  --Hello World--  ",
			want:  "hello-world",
		},
		{
			name:  "consecutive separators collapse",
			title: "a   b---c",
			want:  "a-b-c",
		},
		{
			name:  "digits survive",
			title: "Project 42",
			want:  "project-42",
		},
		{
			name:  "only invalid characters yields empty slug",
			title: "!!! ???",
			want:  "",
		},
		{
			name:  "empty title",
			title: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSplitTechnologies(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{
			name: "comma separated list",
			csv:  "Figma,Photoshop,Illustrator",
			want: []string{"Figma", "Photoshop", "Illustrator"},
		},
		{
			name: "entries are trimmed and order kept",
			csv:  " Figma , After Effects ,Blender",
			want: []string{"Figma", "After Effects", "Blender"},
		},
		{
			name: "empty entries are dropped",
			csv:  "Figma,,  ,Blender",
			want: []string{"Figma", "Blender"},
		},
		{
			name: "empty input",
			csv:  "",
			want: nil,
		},
		{
			name: "only separators",
			csv:  ", ,",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTechnologies(tt.csv)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTechnologies(%q) = %#v, want %#v", tt.csv, got, tt.want)
			}
		})
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !IsValidCategory(c) {
			t.Errorf("category %q should be valid", c)
		}
	}
	for _, c := range []string{"", "branding", "Sculpture", "All"} {
		if IsValidCategory(c) {
			t.Errorf("category %q should not be valid", c)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	if !IsValidStatus(StatusDraft) || !IsValidStatus(StatusPublished) {
		t.Error("draft and published should be valid statuses")
	}
	for _, s := range []string{"", "archived", "Published"} {
		if IsValidStatus(s) {
			t.Errorf("status %q should not be valid", s)
		}
	}
}
