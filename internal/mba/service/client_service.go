package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"mbatrack/internal/audit"
	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
	"mbatrack/pkg/platform/sentinel"
	"mbatrack/pkg/requestcontext"
)

func (s *Service) CreateClient(ctx context.Context, name string) (*models.Client, error) {
	name = strings.TrimSpace(name)

	client, err := models.NewClient(id.ClientID(uuid.New()), name, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}

	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "client already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityClient,
		EntityID:   client.ID.String(),
		Action:     audit.ActionCreate,
	})
	return client, nil
}

func (s *Service) GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, wrapNotFound(err, "client")
	}
	return client, nil
}

func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

func (s *Service) RenameClient(ctx context.Context, clientID id.ClientID, name string) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, wrapNotFound(err, "client")
	}

	before := client.Snapshot()
	if err := client.Rename(strings.TrimSpace(name), requestcontext.Now(ctx)); err != nil {
		return nil, asValidation(err)
	}
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client")
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityClient,
		EntityID:   client.ID.String(),
		Action:     audit.ActionUpdate,
		Changes:    audit.ComputeChanges(before, client.Snapshot(), models.ClientAuditFields),
	})
	return client, nil
}

// DeleteClient removes the client and everything that hangs off it: its MBAs
// with their spend entries and invoice allocations. One DELETE record is
// written for the client itself.
func (s *Service) DeleteClient(ctx context.Context, clientID id.ClientID) error {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return wrapNotFound(err, "client")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		mbas, err := s.mbas.List(txCtx, &clientID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list client mbas")
		}
		for _, mba := range mbas {
			if err := s.deleteMBACascade(txCtx, mba.ID); err != nil {
				return err
			}
		}
		if err := s.clients.Delete(txCtx, clientID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete client")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, audit.Entry{
		EntityType: audit.EntityClient,
		EntityID:   client.ID.String(),
		Action:     audit.ActionDelete,
	})
	return nil
}
