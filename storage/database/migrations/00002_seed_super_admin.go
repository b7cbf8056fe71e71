// Package migrations holds Go-based goose migrations; SQL ones live alongside
// and are embedded by the database package.
package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	goose.AddMigrationContext(upSeedSuperAdmin, downSeedSuperAdmin)
}

// upSeedSuperAdmin inserts the default super admin. The password must be
// rotated via `admin resetpassword` on any real deployment.
func upSeedSuperAdmin(ctx context.Context, tx *sql.Tx) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("portalAdmin666"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO super_admins (name, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`, "Default Admin", "superadmin", hash)
	return err
}

func downSeedSuperAdmin(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM super_admins WHERE email = $1`, "superadmin")
	return err
}
