package register

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Clients is the repository for OAuth2 client records.
type Clients interface {
	repository.Repository[*Client]

	GetByClientID(ctx context.Context, clientID string) (*Client, error)
	GetByRedirectURI(ctx context.Context, redirectURI string) (*Client, error)

	// Register copy-constructs the inbound representation, filling generated
	// fields, validates it, and persists the result.
	Register(ctx context.Context, record *Client) (*Client, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Client) (*Client, error)

	// Authenticate verifies a presented secret against the stored record.
	Authenticate(ctx context.Context, clientID, secret string) (*Client, error)
}

type clients struct {
	repository.Repository[*Client]
	db *bun.DB
}

var _ Clients = (*clients)(nil)

func NewClientsRepository(db *bun.DB) Clients {
	repo := repository.NewRepository[*Client](db, repository.ModelHandlers[*Client]{
		NewRecord: func() *Client { return &Client{} },
		GetID: func(c *Client) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.InternalID
		},
		SetID: func(c *Client, id uuid.UUID) {
			if c != nil {
				c.InternalID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &clients{
		Repository: repo,
		db:         db,
	}
}

func (r *clients) GetByClientID(ctx context.Context, clientID string) (*Client, error) {
	record := new(Client)
	err := r.db.NewSelect().
		Model(record).
		Where("clt.id = ?", clientID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *clients) GetByRedirectURI(ctx context.Context, redirectURI string) (*Client, error) {
	record := new(Client)
	err := r.db.NewSelect().
		Model(record).
		Where("clt.redirect_uri = ?", redirectURI).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *clients) Register(ctx context.Context, record *Client) (*Client, error) {
	return r.RegisterTx(ctx, r.db, record)
}

func (r *clients) RegisterTx(ctx context.Context, tx bun.IDB, record *Client) (*Client, error) {
	filled := NewClientFromClient(record)
	if filled == nil {
		return nil, errors.New("clients repository requires a record")
	}

	if err := filled.Validate(); err != nil {
		return nil, err
	}

	if filled.InternalID == uuid.Nil {
		filled.InternalID = uuid.New()
	}

	return r.CreateTx(ctx, tx, filled)
}

func (r *clients) Authenticate(ctx context.Context, clientID, secret string) (*Client, error) {
	record, err := r.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := VerifyClientSecret(secret, record.Secret); err != nil {
		return nil, err
	}

	return record, nil
}
