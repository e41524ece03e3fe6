// Package dbtest abre bancos SQLite em memória para os testes.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"

	"bot-afiliados/internal/database"
)

var seq atomic.Int64

// New abre um banco em memória exclusivo do teste, com o schema criado.
// O banco é fechado ao fim do teste.
func New(t testing.TB) *database.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Open(database.DriverSQLite, dsn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("abrindo banco de teste: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
