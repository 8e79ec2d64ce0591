package db

import "testing"

func TestPostgresConfigConnString(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "mm", Password: "pw", Name: "mindmirror"}
	if got, want := cfg.ConnString(), "postgres://mm:pw@db:5432/mindmirror?sslmode=disable"; got != want {
		t.Fatalf("ConnString: got=%q want=%q", got, want)
	}

	cfg.SSLMode = "require"
	if got, want := cfg.ConnString(), "postgres://mm:pw@db:5432/mindmirror?sslmode=require"; got != want {
		t.Fatalf("ConnString (sslmode): got=%q want=%q", got, want)
	}

	cfg.DSN = " postgres://override "
	if got := cfg.ConnString(); got != "postgres://override" {
		t.Fatalf("ConnString (dsn): got=%q", got)
	}
}
