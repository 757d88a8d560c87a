package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/apperr"
)

var (
	ErrHandleRequired   = fmt.Errorf("%w: anonymous name is required", apperr.ErrInvalidInput)
	ErrGenderInvalid    = fmt.Errorf("%w: gender must be Male or Female", apperr.ErrInvalidInput)
	ErrWhatsAppInvalid  = fmt.Errorf("%w: whatsapp number must have 10 to 15 digits", apperr.ErrInvalidInput)
	ErrRoomInvalid      = fmt.Errorf("%w: unknown room", apperr.ErrInvalidInput)
	ErrNotEnoughHobbies = fmt.Errorf("%w: pick at least %d hobbies", apperr.ErrInvalidInput, rules.MinHobbies)
)

type UserStore interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, in pgrepo.ProfileWrite) (model.User, error)
}

type Gate interface {
	ResolveUser(ctx context.Context, userID uuid.UUID) (model.User, error)
	CheckRoomCapacity(ctx context.Context, userID uuid.UUID, room string) error
}

type Service struct {
	users  UserStore
	gate   Gate
	logger *zap.Logger
}

type UpdateInput struct {
	Handle      string
	DisplayName string
	Bio         string
	Gender      string
	AvatarURL   string
	WhatsApp    string
	Room        string
	Hobbies     []string
}

type Building struct {
	Name  enums.Building
	Rooms []string
}

type Catalog struct {
	Buildings []Building
	Hobbies   []string
}

func NewService(users UserStore, gate Gate, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		gate:   gate,
		logger: logger,
	}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (model.User, error) {
	if s.gate == nil {
		return model.User{}, fmt.Errorf("profile dependencies are not configured")
	}
	return s.gate.ResolveUser(ctx, userID)
}

// Update replaces the editable profile. The stored WhatsApp number wins over any input once set.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (model.User, error) {
	if s.users == nil || s.gate == nil {
		return model.User{}, fmt.Errorf("profile dependencies are not configured")
	}

	current, err := s.gate.ResolveUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	write, err := normalize(current, in)
	if err != nil {
		return model.User{}, err
	}

	if write.Room != "" && write.Room != current.Room {
		if err := s.gate.CheckRoomCapacity(ctx, userID, write.Room); err != nil {
			return model.User{}, err
		}
	}

	updated, err := s.users.UpdateProfile(ctx, userID, write)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, fmt.Errorf("%w: user does not exist", apperr.ErrUnauthenticated)
		}
		return model.User{}, err
	}

	if !rules.IsOnboarded(current) && rules.IsOnboarded(updated) {
		s.logger.Info("user onboarded", zap.String("user_id", userID.String()))
	}
	return updated, nil
}

func (s *Service) Catalog() Catalog {
	buildings := make([]Building, 0, len(enums.Buildings))
	for _, building := range enums.Buildings {
		buildings = append(buildings, Building{Name: building, Rooms: rules.RoomsOf(building)})
	}
	return Catalog{
		Buildings: buildings,
		Hobbies:   rules.SuggestedHobbies(),
	}
}

func normalize(current model.User, in UpdateInput) (pgrepo.ProfileWrite, error) {
	onboarding := !rules.IsOnboarded(current)

	handle := rules.SanitizeHandle(in.Handle)
	if handle == "" {
		return pgrepo.ProfileWrite{}, ErrHandleRequired
	}

	gender := enums.Gender(strings.TrimSpace(in.Gender))
	if !gender.Valid() {
		return pgrepo.ProfileWrite{}, ErrGenderInvalid
	}

	whatsapp := current.WhatsApp
	if whatsapp == "" {
		normalized, ok := rules.SanitizeWhatsApp(in.WhatsApp)
		if !ok {
			return pgrepo.ProfileWrite{}, ErrWhatsAppInvalid
		}
		whatsapp = normalized
	}

	room := strings.TrimSpace(in.Room)
	if room != "" {
		if _, _, ok := rules.ParseRoom(room); !ok {
			return pgrepo.ProfileWrite{}, ErrRoomInvalid
		}
	}

	hobbies := rules.SanitizeHobbies(in.Hobbies)
	if onboarding && len(hobbies) < rules.MinHobbies {
		return pgrepo.ProfileWrite{}, ErrNotEnoughHobbies
	}

	return pgrepo.ProfileWrite{
		Handle:      handle,
		DisplayName: rules.SanitizeDisplayName(in.DisplayName),
		Bio:         rules.SanitizeBio(in.Bio),
		Gender:      gender,
		AvatarURL:   strings.TrimSpace(in.AvatarURL),
		WhatsApp:    whatsapp,
		Room:        room,
		Hobbies:     hobbies,
	}, nil
}
