package db

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const DBConnKey contextKey = "db_conn"

func searchPath(schema string) string {
	return "SET search_path TO " + pgx.Identifier{schema}.Sanitize() + ", public"
}

// WithSchema acquires a connection with its search_path set to schema and
// returns a context carrying it. release must be called when done.
func WithSchema(ctx context.Context, pool *pgxpool.Pool, schema string) (context.Context, func(), error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return ctx, func() {}, fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.Exec(ctx, searchPath(schema)); err != nil {
		conn.Release()
		return ctx, func() {}, fmt.Errorf("set search_path: %w", err)
	}
	return context.WithValue(ctx, DBConnKey, conn), conn.Release, nil
}

// SchemaMiddleware pins one pooled connection to the request with its
// search_path set to schema. Repositories pick it up through ConnFromContext.
func SchemaMiddleware(pool *pgxpool.Pool, schema string) echo.MiddlewareFunc {
	setPath := searchPath(schema)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Base de datos no disponible").SetInternal(err)
			}
			defer conn.Release()

			if _, err := conn.Exec(ctx, setPath); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Error al preparar la conexión").SetInternal(err)
			}

			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}
