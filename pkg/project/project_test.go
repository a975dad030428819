package project

import "testing"

func TestParseBasicManifest(t *testing.T) {
	data := []byte(`{
		"name": "test-place",
		"tree": {
			"$className": "DataModel",
			"ReplicatedStorage": {
				"$className": "ReplicatedStorage",
				"Shared": { "$path": "src/shared" }
			}
		}
	}`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name != "test-place" {
		t.Fatalf("unexpected name: %q", p.Name)
	}
	if p.ServePort != 34872 {
		t.Fatalf("expected default serve port, got %d", p.ServePort)
	}
	rs, ok := p.Tree.Children["ReplicatedStorage"]
	if !ok {
		t.Fatal("missing ReplicatedStorage child")
	}
	shared, ok := rs.Children["Shared"]
	if !ok || shared.Path != "src/shared" {
		t.Fatalf("unexpected Shared node: %+v", shared)
	}
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := Parse([]byte(`{"tree": {}}`))
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestParsePropertiesWithTaggedVector3(t *testing.T) {
	data := []byte(`{
		"name": "p",
		"tree": {
			"$className": "Part",
			"$properties": {"Size": {"Vector3": [1, 2, 3]}, "Anchored": true}
		}
	}`)
	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	size := p.Tree.Properties["Size"]
	if size.Kind.String() != "Vector3" {
		t.Fatalf("expected Vector3 kind, got %v", size.Kind)
	}
}
