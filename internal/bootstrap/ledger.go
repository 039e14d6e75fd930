package bootstrap

import (
	"context"
	"fmt"

	"github.com/locvowork/xlfilecreator/internal/config"
	"github.com/locvowork/xlfilecreator/internal/database"
	"github.com/locvowork/xlfilecreator/internal/domain"
	"github.com/locvowork/xlfilecreator/internal/logger"
	"github.com/locvowork/xlfilecreator/internal/repository"
)

// Ledger is the opened ledger backend. Repository is nil for "none".
type Ledger struct {
	Backend    string
	Repository domain.OutputFileRepository
	close      func() error
}

func (l *Ledger) Close() error {
	if l == nil || l.close == nil {
		return nil
	}
	return l.close()
}

// PostgresConfig maps the DB_* variables onto a connection config.
func PostgresConfig(cfg *config.EnvConfig) database.Config {
	return database.Config{
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}
}

// OpenLedger connects the backend named by LEDGER_BACKEND. The sqlite ledger
// is migrated on open; Postgres is migrated by the migrate command.
func OpenLedger(ctx context.Context, cfg *config.EnvConfig) (*Ledger, error) {
	l := &Ledger{Backend: cfg.LEDGER_BACKEND}
	switch cfg.LEDGER_BACKEND {
	case "", "none":
		l.Backend = "none"
	case "postgres":
		db, err := database.NewPostgresDB(ctx, PostgresConfig(cfg))
		if err != nil {
			return nil, err
		}
		l.Repository, l.close = repository.NewOutputFileRepository(db), db.Close
	case "sqlite":
		db, err := database.NewSQLiteDB(ctx, cfg.SQLITE_PATH)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, database.SQLite); err != nil {
			db.Close()
			return nil, err
		}
		l.Repository, l.close = repository.NewOutputFileRepository(db), db.Close
	case "datastore":
		dc, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return nil, err
		}
		l.Repository, l.close = dc, dc.Close
	case "elasticsearch":
		es, err := database.NewElasticSearchClient(cfg.ELASTIC_URL, cfg.ELASTIC_INDEX)
		if err != nil {
			return nil, err
		}
		l.Repository = es
	default:
		return nil, fmt.Errorf("unknown ledger backend %q: want none, postgres, sqlite, datastore or elasticsearch", cfg.LEDGER_BACKEND)
	}
	logger.InfoLog(ctx, "ledger backend: %s", l.Backend)
	return l, nil
}

// Migrate creates the ledger schema of the SQL backends.
func Migrate(ctx context.Context, cfg *config.EnvConfig) error {
	switch cfg.LEDGER_BACKEND {
	case "postgres":
		db, err := database.NewPostgresDB(ctx, PostgresConfig(cfg))
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Migrate(ctx, db, database.Postgres)
	case "sqlite":
		db, err := database.NewSQLiteDB(ctx, cfg.SQLITE_PATH)
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Migrate(ctx, db, database.SQLite)
	}
	return fmt.Errorf("ledger backend %q has no schema to migrate", cfg.LEDGER_BACKEND)
}
