package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"yardimpanel.org/internal/authz"
)

const (
	pgErrUndefinedTable    = "42P01"
	pgErrInsufficientPrivs = "42501"
)

// Store reads principals, organizations and memberships from Postgres. The
// schema is owned by the managed backend; this side only queries it.
type Store struct {
	db *sql.DB
}

var (
	_ authz.PrincipalStore  = (*Store)(nil)
	_ authz.MembershipStore = (*Store)(nil)
	_ authz.MemberDirectory = (*Store)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, mainly for tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Find returns the principal or authz.ErrNotFound.
func (s *Store) Find(ctx context.Context, id string) (*authz.Principal, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		p    authz.Principal
		name sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, email, full_name, is_active
		from profiles
		where id = $1
	`, id).Scan(&p.ID, &p.Email, &name, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, authz.ErrNotFound
	}
	if err != nil {
		return nil, classify(err, "find principal")
	}
	if name.Valid {
		p.Name = name.String
	}
	return &p, nil
}

// ActiveMemberships returns the caller's active memberships with their
// organizations embedded, ordered by (created_at, organization_id) so the
// default-tenant choice is deterministic.
func (s *Store) ActiveMemberships(ctx context.Context, principalID string) ([]authz.Membership, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select m.profile_id, m.role, m.is_active, m.created_at,
		       o.id, o.name, o.slug, o.plan_tier, o.subscription_status,
		       o.settings, o.is_active, o.created_at
		from organization_members m
		join organizations o on o.id = m.organization_id
		where m.profile_id = $1 and m.is_active
		order by m.created_at, o.id
	`, principalID)
	if err != nil {
		return nil, classify(err, "list memberships")
	}
	defer rows.Close()

	var memberships []authz.Membership
	for rows.Next() {
		var (
			m           authz.Membership
			role        string
			plan        string
			status      string
			rawSettings []byte
		)
		if err := rows.Scan(
			&m.PrincipalID, &role, &m.Active, &m.CreatedAt,
			&m.Organization.ID, &m.Organization.Name, &m.Organization.Slug,
			&plan, &status, &rawSettings,
			&m.Organization.Active, &m.Organization.CreatedAt,
		); err != nil {
			return nil, classify(err, "scan membership")
		}
		// unknown role strings fail closed at the permission layer
		m.Role = authz.Role(role)
		m.Organization.PlanTier = authz.PlanTier(plan)
		m.Organization.SubscriptionStatus = authz.SubscriptionStatus(status)
		if len(rawSettings) > 0 {
			if err := json.Unmarshal(rawSettings, &m.Organization.Settings); err != nil {
				return nil, fmt.Errorf("decode settings for organization %s: %w", m.Organization.ID, err)
			}
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list memberships")
	}
	return memberships, nil
}

// ListMembers returns the active members of one organization, ordered by join
// date. The organization id must come from a resolved context.
func (s *Store) ListMembers(ctx context.Context, organizationID string) ([]authz.Member, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select m.profile_id, p.email, p.full_name, m.role, m.created_at
		from organization_members m
		join profiles p on p.id = m.profile_id
		where m.organization_id = $1 and m.is_active and p.is_active
		order by m.created_at, m.profile_id
	`, organizationID)
	if err != nil {
		return nil, classify(err, "list members")
	}
	defer rows.Close()

	var members []authz.Member
	for rows.Next() {
		var (
			member authz.Member
			name   sql.NullString
			role   string
		)
		if err := rows.Scan(&member.PrincipalID, &member.Email, &name, &role, &member.JoinedAt); err != nil {
			return nil, classify(err, "scan member")
		}
		if name.Valid {
			member.Name = name.String
		}
		member.Role = authz.Role(role)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list members")
	}
	return members, nil
}

// classify annotates backend failures with the Postgres error code when one is
// available. Schema drift (undefined table, missing grants) surfaces here on
// the first query rather than as an opaque scan failure.
func classify(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUndefinedTable, pgErrInsufficientPrivs:
			return fmt.Errorf("%s: schema mismatch (%s): %w", op, pgErr.Code, err)
		}
		return fmt.Errorf("%s: pg %s: %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
