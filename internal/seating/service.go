package seating

import (
	"context"
	"errors"
	"strings"

	"github.com/gestfood/digital-menu/internal/catalog"
	"github.com/gestfood/digital-menu/internal/session"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/restclient"
	"github.com/gestfood/digital-menu/pkg/validation"
	"golang.org/x/sync/errgroup"
)

type clientDirectory interface {
	List(ctx context.Context) ([]catalog.Client, error)
	Create(ctx context.Context, item any, opts ...restclient.RequestOption) (string, error)
}

type deskDirectory interface {
	List(ctx context.Context) ([]catalog.Desk, error)
}

type sessionWriter interface {
	RememberSeating(ctx context.Context, cpf, deskID string) error
	SetIdentity(ctx context.Context, identity session.Identity) error
}

// LoginInput seats a registered client at a desk.
type LoginInput struct {
	CPF      string `json:"cpf" validate:"required"`
	Password string `json:"password" validate:"required"`
	DeskID   string `json:"deskId" validate:"required"`
}

// RegisterInput creates a client and seats them at a desk.
type RegisterInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	CPF         string `json:"cpf" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Address     string `json:"address" validate:"required"`
	DeskID      string `json:"deskId" validate:"required"`
}

// Service establishes the seated client session from the backend directory.
type Service struct {
	clients clientDirectory
	desks   deskDirectory
	session sessionWriter
	logg    *logger.Logger
}

func NewService(clients clientDirectory, desks deskDirectory, sess sessionWriter, logg *logger.Logger) (*Service, error) {
	if clients == nil || desks == nil {
		return nil, errors.New("client and desk directories required")
	}
	if sess == nil {
		return nil, errors.New("session store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{clients: clients, desks: desks, session: sess, logg: logg}, nil
}

// Desks lists the tables available for selection.
func (s *Service) Desks(ctx context.Context) ([]catalog.Desk, error) {
	return s.desks.List(ctx)
}

// Login finds the client by CPF digits, checks the password and seats them at
// the chosen desk.
func (s *Service) Login(ctx context.Context, input LoginInput) (session.Identity, error) {
	input.CPF = strings.TrimSpace(input.CPF)
	input.DeskID = strings.TrimSpace(input.DeskID)
	if err := validation.Struct(input); err != nil {
		return session.Identity{}, err
	}

	desks, clients, err := s.directory(ctx)
	if err != nil {
		return session.Identity{}, err
	}

	client, ok := catalog.FindClientByCPF(clients, input.CPF)
	if !ok {
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeNotFound, "CPF não encontrado. Verifique ou cadastre-se.")
	}
	if client.Password != input.Password {
		s.logg.Warn(s.logg.WithClientID(ctx, client.ID), "seating.login_wrong_password")
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Senha incorreta")
	}
	return s.seat(ctx, client, desks, input.DeskID)
}

// Register creates a client after rejecting duplicate CPF or email, then seats
// the new client.
func (s *Service) Register(ctx context.Context, input RegisterInput) (session.Identity, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Address = strings.TrimSpace(input.Address)
	input.DeskID = strings.TrimSpace(input.DeskID)
	if err := validation.Struct(input); err != nil {
		return session.Identity{}, err
	}
	cpf := catalog.DigitsOnly(input.CPF)
	if cpf == "" {
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"cpf": "must contain digits"})
	}

	desks, clients, err := s.directory(ctx)
	if err != nil {
		return session.Identity{}, err
	}
	if _, ok := catalog.FindDesk(desks, input.DeskID); !ok {
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeNotFound, "Mesa não encontrada")
	}
	if _, ok := catalog.FindClientByCPF(clients, cpf); ok {
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeConflict, "CPF já cadastrado. Faça login em vez de cadastrar.")
	}
	if _, ok := catalog.FindClientByEmail(clients, input.Email); ok {
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeConflict, "E-mail já cadastrado. Use outro e-mail ou faça login.")
	}

	if _, err := s.clients.Create(ctx, catalog.Client{
		Name:        input.Name,
		Email:       input.Email,
		Password:    input.Password,
		CPF:         cpf,
		PhoneNumber: catalog.DigitsOnly(input.PhoneNumber),
		Address:     input.Address,
	}); err != nil {
		return session.Identity{}, err
	}

	refreshed, err := s.clients.List(ctx)
	if err != nil {
		return session.Identity{}, err
	}
	created, ok := catalog.FindClientByCPF(refreshed, cpf)
	if !ok {
		created, ok = catalog.FindClientByEmail(refreshed, input.Email)
	}
	if !ok {
		s.logg.Warn(ctx, "seating.registered_client_not_found")
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeUpstream, "Cliente criado, mas não encontrado. Tente fazer login.")
	}
	s.logg.Info(s.logg.WithClientID(ctx, created.ID), "seating.client_registered")
	return s.seat(ctx, created, desks, input.DeskID)
}

func (s *Service) directory(ctx context.Context) ([]catalog.Desk, []catalog.Client, error) {
	var (
		desks   []catalog.Desk
		clients []catalog.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		desks, err = s.desks.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = s.clients.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return desks, clients, nil
}

func (s *Service) seat(ctx context.Context, client catalog.Client, desks []catalog.Desk, deskID string) (session.Identity, error) {
	desk, ok := catalog.FindDesk(desks, deskID)
	if !ok {
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeNotFound, "Mesa não encontrada")
	}
	if err := s.session.RememberSeating(ctx, client.CPF, desk.ID); err != nil {
		return session.Identity{}, err
	}
	identity := session.Identity{ClientID: client.ID, ClientName: client.Name, DeskCode: desk.DeskCode}
	if err := s.session.SetIdentity(ctx, identity); err != nil {
		return session.Identity{}, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"client_id": client.ID, "desk_code": desk.DeskCode}), "seating.seated")
	return identity, nil
}
