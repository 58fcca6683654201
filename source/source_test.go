package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceFindsCurrentDirectoryFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.properties")
	if err := os.WriteFile(path, []byte("db.port=5432\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fs := FileSource{FileName: path}
	data, err := fs.LoadStream()
	if err != nil {
		t.Fatalf("LoadStream: %v", err)
	}
	if string(data) != "db.port=5432\n" {
		t.Errorf("LoadStream = %q", data)
	}
	if fs.Format() != "properties" {
		t.Errorf("Format() = %q, want properties", fs.Format())
	}
}

func TestFileSourceSearchesDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.properties"), []byte("x=1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fs := FileSource{FileName: "app.properties", Dirs: []string{dir}}
	data, err := fs.LoadStream()
	if err != nil {
		t.Fatalf("LoadStream: %v", err)
	}
	if string(data) != "x=1\n" {
		t.Errorf("LoadStream = %q", data)
	}
}

func TestMapSourceLoadList(t *testing.T) {
	ms := MapSource{SourceName: "defaults", Values: map[string]string{"a": "1"}}
	kvs, err := ms.LoadList()
	if err != nil {
		t.Fatalf("LoadList: %v", err)
	}
	if len(kvs) != 1 || kvs[0].Key != "a" || kvs[0].Value != "1" {
		t.Errorf("LoadList() = %v", kvs)
	}
}
