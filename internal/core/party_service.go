package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type partyService struct {
	pool *pgxpool.Pool
}

// NewPartyService constructs a PartyService backed by PostgreSQL.
func NewPartyService(pool *pgxpool.Pool) PartyService {
	return &partyService{pool: pool}
}

func (s *partyService) CreateParty(ctx context.Context, storeID int, partyType PartyType, input PartyInput) (*Party, error) {
	if partyType != PartyCustomer && partyType != PartyVendor {
		return nil, fmt.Errorf("invalid party type %q", partyType)
	}
	if input.Code == "" || input.Name == "" {
		return nil, fmt.Errorf("party code and name are required")
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	p := &Party{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO parties (store_id, party_type, code, name, phone, email, address, opening_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, store_id, party_type, code, name, phone, email, address,
		          opening_balance, is_active, created_at`,
		storeID, string(partyType), input.Code, input.Name,
		toPtr(input.Phone), toPtr(input.Email), toPtr(input.Address), input.OpeningBalance,
	).Scan(
		&p.ID, &p.StoreID, &p.Type, &p.Code, &p.Name,
		&p.Phone, &p.Email, &p.Address,
		&p.OpeningBalance, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", partyType, input.Code, err)
	}
	return p, nil
}

func (s *partyService) GetParties(ctx context.Context, storeID int, partyType PartyType) ([]Party, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, store_id, party_type, code, name, phone, email, address,
		       opening_balance, is_active, created_at
		FROM parties
		WHERE store_id = $1 AND party_type = $2 AND is_active = true
		ORDER BY code`,
		storeID, string(partyType),
	)
	if err != nil {
		return nil, fmt.Errorf("get %ss: %w", partyType, err)
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(
			&p.ID, &p.StoreID, &p.Type, &p.Code, &p.Name,
			&p.Phone, &p.Email, &p.Address,
			&p.OpeningBalance, &p.IsActive, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (s *partyService) GetPartyByID(ctx context.Context, storeID, partyID int) (*Party, error) {
	p := &Party{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, store_id, party_type, code, name, phone, email, address,
		       opening_balance, is_active, created_at
		FROM parties
		WHERE store_id = $1 AND id = $2`,
		storeID, partyID,
	).Scan(
		&p.ID, &p.StoreID, &p.Type, &p.Code, &p.Name,
		&p.Phone, &p.Email, &p.Address,
		&p.OpeningBalance, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("party %d not found for store %d", partyID, storeID)
		}
		return nil, fmt.Errorf("fetch party %d: %w", partyID, err)
	}
	return p, nil
}
