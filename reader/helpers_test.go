package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

// writeParquet writes rows to dir/name and returns the file path
func writeParquet[T any](t *testing.T, dir, name string, rows []T) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

type user struct {
	Active bool    `parquet:"active"`
	Age    int32   `parquet:"age"`
	Name   string  `parquet:"name"`
	Nick   *string `parquet:"nick,optional"`
	Score  float64 `parquet:"score"`
}

func users() []user {
	al := "al"
	return []user{
		{Active: true, Age: 30, Name: "alice", Nick: &al, Score: 95.5},
		{Active: false, Age: 25, Name: "bob", Score: 82.25},
		{Active: true, Age: 35, Name: "charlie", Score: 88},
	}
}
