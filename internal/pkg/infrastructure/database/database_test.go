package database

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestConnectionString(t *testing.T) {
	is := is.New(t)

	cfg := Config{host: "db", user: "u", password: "p", port: "5432", dbname: "graph", sslmode: "disable"}

	is.True(cfg.Enabled())
	is.Equal(cfg.ConnStr(), "postgres://u:p@db:5432/graph?sslmode=disable")
}

func TestConnectWithoutHostIsNotConfigured(t *testing.T) {
	is := is.New(t)

	_, err := Connect(context.Background(), Config{})
	is.True(errors.Is(err, ErrNotConfigured))
}
