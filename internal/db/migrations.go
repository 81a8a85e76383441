package db

import (
	"fmt"

	"gorm.io/gorm"
)

// The workflow owns contracts, approvals, the reference sequence and the
// audit log. Identity tables (users, organizations, roles, permissions,
// user_org_roles, role_permissions) belong to the identity service and are
// only referenced here.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM (
				'DRAFT',
				'SENT_TO_LEGAL',
				'SENT_TO_FINANCE',
				'PENDING_LEGAL_HEAD',
				'LEGAL_APPROVED',
				'APPROVED_LEGAL_HEAD',
				'FINANCE_REVIEWED',
				'APPROVED',
				'SENT_TO_COUNTERPARTY',
				'COUNTERSIGNED',
				'ACTIVE',
				'EXPIRED',
				'TERMINATED',
				'REJECTED',
				'CANCELLED'
			);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'approval_type') THEN
			CREATE TYPE approval_type AS ENUM ('LEGAL', 'FINANCE');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'approval_status') THEN
			CREATE TYPE approval_status AS ENUM ('PENDING', 'APPROVED', 'REJECTED', 'SUPERSEDED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		reference VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		status contract_status NOT NULL DEFAULT 'DRAFT',
		template_id UUID,
		organization_id UUID NOT NULL REFERENCES organizations(id),
		created_by_user_id UUID NOT NULL REFERENCES users(id),
		content TEXT NOT NULL DEFAULT '',
		annexure_data JSONB,
		field_data JSONB,
		counterparty_name VARCHAR(255) NOT NULL DEFAULT '',
		counterparty_email VARCHAR(255) NOT NULL DEFAULT '',
		start_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		final_document_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_reference ON contracts (reference);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_org_status ON contracts (organization_id, status);`,
	`CREATE TABLE IF NOT EXISTS approvals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		type approval_type NOT NULL,
		status approval_status NOT NULL DEFAULT 'PENDING',
		actor_id UUID NOT NULL REFERENCES users(id),
		due_date TIMESTAMPTZ,
		comment TEXT,
		reason TEXT,
		resolved_by UUID REFERENCES users(id),
		resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_approvals_one_pending
		ON approvals (contract_id, type)
		WHERE status = 'PENDING';`,
	`CREATE INDEX IF NOT EXISTS idx_approvals_contract_id ON approvals (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_approvals_actor_status ON approvals (actor_id, status);`,
	`CREATE TABLE IF NOT EXISTS contract_sequences (
		year INT PRIMARY KEY,
		seq BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		actor_id UUID NOT NULL,
		action VARCHAR(64) NOT NULL,
		module VARCHAR(64) NOT NULL,
		target_type VARCHAR(64) NOT NULL,
		target_id UUID NOT NULL,
		old_value JSONB,
		new_value JSONB,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_target_id ON audit_log (target_id);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log (created_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
