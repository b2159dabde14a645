package migrate

import (
	"testing"
	"testing/fstest"
)

func TestCollectSQLOrdersByName(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_second.up.sql":  {Data: []byte("select 2;")},
		"migrations/0001_first.up.sql":   {Data: []byte("select 1;")},
		"migrations/0001_first.down.sql": {Data: []byte("select -1;")},
		"migrations/notes.txt":           {Data: []byte("ignore me")},
	}

	files, err := collectSQL(fsys, "migrations", ".up.sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Base != "0001_first.up.sql" || files[1].Base != "0002_second.up.sql" {
		t.Fatalf("unexpected order: %v", files)
	}
}

func TestCollectSQLMissingDir(t *testing.T) {
	files, err := collectSQL(fstest.MapFS{}, "absent", ".sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	if files != nil {
		t.Fatalf("expected nil, got %v", files)
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `create table t (s text default 'a;b');
insert into t values ('x');`
	stmts := splitStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2: %q", len(stmts), stmts)
	}
}
