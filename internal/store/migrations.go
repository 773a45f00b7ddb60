package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/blang/semver"
	"github.com/pkg/errors"
)

type migration struct {
	fromVersion   semver.Version
	toVersion     semver.Version
	migrationFunc func(execer) error
}

// migrations defines the set of migrations necessary to advance the database to the latest
// expected version.
//
// Note that the canonical schema is currently obtained by applying all migrations to an empty
// database. The storefront's own content tables are owned by the storefront
// and never touched here.
var migrations = []migration{
	{semver.MustParse("0.0.0"), semver.MustParse("0.1.0"),
		func(e execer) error {
			_, err := e.Exec(`
				CREATE TABLE System (
						Key    VARCHAR(64) PRIMARY KEY,
						Value  VARCHAR(1024) NULL
				);
		`)
			return err
		},
	},
	{semver.MustParse("0.1.0"), semver.MustParse("0.2.0"),
		func(e execer) error {
			_, err := e.Exec(`
				CREATE TABLE TranslationRecord (
						ID            TEXT PRIMARY KEY NOT NULL,
						Variant       TEXT NOT NULL,
						EntityID      TEXT NOT NULL,
						Locale        TEXT NOT NULL,
						Fields        JSONB NOT NULL DEFAULT '{}',
						ContentHash   TEXT NOT NULL,
						QualityLevel  TEXT NOT NULL,
						TranslatedBy  TEXT NOT NULL,
						IsApproved    BOOLEAN NOT NULL DEFAULT FALSE,
						CreateAt      BigInt NOT NULL,
						UpdateAt      BigInt NOT NULL
				);

				CREATE UNIQUE INDEX TranslationRecord_Entity_Locale
						ON TranslationRecord (Variant, EntityID, Locale);
		`)
			if err != nil {
				return err
			}

			_, err = e.Exec(`
				CREATE TABLE TranslationJob (
						ID           TEXT PRIMARY KEY NOT NULL,
						Variant      TEXT NOT NULL,
						EntityID     TEXT NOT NULL,
						Pass         Integer NOT NULL,
						Priority     Integer NOT NULL,
						Status       TEXT NOT NULL,
						ScheduledAt  BigInt NOT NULL,
						StartAt      BigInt NOT NULL DEFAULT 0,
						CompleteAt   BigInt NOT NULL DEFAULT 0,
						Retries      Integer NOT NULL DEFAULT 0,
						MaxRetries   Integer NOT NULL,
						Error        TEXT NOT NULL DEFAULT '',
						CreateAt     BigInt NOT NULL
				);

				-- One outstanding job per (entity, pass); completed and failed
				-- jobs stay behind as history and do not block a new enqueue.
				CREATE UNIQUE INDEX TranslationJob_Outstanding
						ON TranslationJob (Variant, EntityID, Pass)
						WHERE Status IN ('pending', 'processing');

				CREATE INDEX TranslationJob_Due
						ON TranslationJob (Pass, Status, ScheduledAt);
		`)
			return err
		},
	},
}

// Migrate advances the schema to the latest version, applying any pending
// migrations inside a transaction.
func (sqlStore *SQLStore) Migrate() error {
	version, err := sqlStore.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if !version.EQ(m.fromVersion) {
			continue
		}

		tx, err := sqlStore.beginTransaction(sqlStore.db)
		if err != nil {
			return err
		}

		if err := m.migrationFunc(tx); err != nil {
			tx.RollbackUnlessCommitted()
			return errors.Wrapf(err, "failed to migrate schema from %s to %s", m.fromVersion, m.toVersion)
		}

		if err := sqlStore.setCurrentVersion(tx, m.toVersion.String()); err != nil {
			tx.RollbackUnlessCommitted()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}

		sqlStore.logger.Infof("Migrated schema from %s to %s", m.fromVersion, m.toVersion)
		version = m.toVersion
	}

	return nil
}

func (sqlStore *SQLStore) getCurrentVersion() (semver.Version, error) {
	var tableExists bool
	err := sqlStore.get(sqlStore.db, &tableExists,
		"SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'system')",
	)
	if err != nil {
		return semver.Version{}, errors.Wrap(err, "failed to check if the system table exists")
	}
	if !tableExists {
		return semver.MustParse("0.0.0"), nil
	}

	var versionString string
	err = sqlStore.getBuilder(sqlStore.db, &versionString,
		sq.Select("Value").From("System").Where("Key = ?", "Version"))
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	} else if err != nil {
		return semver.Version{}, errors.Wrap(err, "failed to read the schema version")
	}

	return semver.Parse(versionString)
}

func (sqlStore *SQLStore) setCurrentVersion(e execer, version string) error {
	_, err := sqlStore.exec(e, `
		INSERT INTO System (Key, Value) VALUES ('Version', ?)
		ON CONFLICT (Key) DO UPDATE SET Value = EXCLUDED.Value
	`, version)
	return errors.Wrap(err, "failed to record the schema version")
}
