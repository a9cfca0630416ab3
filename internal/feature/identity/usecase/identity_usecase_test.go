package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	visitentity "checkin_backend/internal/feature/checkin/domain/entity"
	"checkin_backend/internal/feature/identity/domain/entity"
)

// mockIdentityRepository is a mock implementation of the IdentityRepository
// interface.
type mockIdentityRepository struct {
	CreateFunc      func(ctx context.Context, identity *entity.Identity) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.Identity, error)
	FindByIDFunc    func(ctx context.Context, id string) (*entity.Identity, error)
	FindAllFunc     func(ctx context.Context) ([]*entity.Identity, error)
	UpdateFunc      func(ctx context.Context, identity *entity.Identity) error
}

func (m *mockIdentityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, identity)
	}
	return nil
}

func (m *mockIdentityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrIdentityNotFound
}

func (m *mockIdentityRepository) FindByID(ctx context.Context, id string) (*entity.Identity, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrIdentityNotFound
}

func (m *mockIdentityRepository) FindAll(ctx context.Context) ([]*entity.Identity, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockIdentityRepository) Update(ctx context.Context, identity *entity.Identity) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, identity)
	}
	return nil
}

// mockVisitReader is a mock implementation of the VisitReader interface.
type mockVisitReader struct {
	LatestByIdentityFunc func(ctx context.Context, identityID string) (*visitentity.Visit, error)
}

func (m *mockVisitReader) LatestByIdentity(ctx context.Context, identityID string) (*visitentity.Visit, error) {
	if m.LatestByIdentityFunc != nil {
		return m.LatestByIdentityFunc(ctx, identityID)
	}
	return nil, nil
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:       "alice@example.org",
		Name:        "Alice",
		PIN:         "1234",
		Disciplines: []string{"Software"},
	}
}

func TestIdentityUsecase_Register(t *testing.T) {
	t.Run("successful registration hashes the PIN", func(t *testing.T) {
		var created *entity.Identity
		repo := &mockIdentityRepository{
			CreateFunc: func(ctx context.Context, identity *entity.Identity) error {
				created = identity
				return nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		identity, err := uc.Register(context.Background(), validRegisterInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.ID == "" {
			t.Error("expected a generated identity id")
		}
		if created.Email != "alice@example.org" {
			t.Errorf("expected normalized email, got %q", created.Email)
		}
		if created.PINHash == "" || created.PINHash == "1234" {
			t.Error("PIN is not hashed")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(created.PINHash), []byte("1234")); err != nil {
			t.Errorf("invalid bcrypt hash: %v", err)
		}
	})

	t.Run("email is normalized before storage", func(t *testing.T) {
		var created *entity.Identity
		repo := &mockIdentityRepository{
			CreateFunc: func(ctx context.Context, identity *entity.Identity) error {
				created = identity
				return nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		in := validRegisterInput()
		in.Email = "  Alice@Example.ORG "
		if _, err := uc.Register(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Email != "alice@example.org" {
			t.Errorf("expected lowercased trimmed email, got %q", created.Email)
		}
	})

	t.Run("invalid PIN formats are rejected", func(t *testing.T) {
		uc := NewIdentityUsecase(&mockIdentityRepository{}, &mockVisitReader{})

		for _, pin := range []string{"", "123", "12345", "12a4", "abcd", "12 4"} {
			in := validRegisterInput()
			in.PIN = pin

			_, err := uc.Register(context.Background(), in)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("PIN %q: expected validation error, got %v", pin, err)
				continue
			}
			if vErr.Field != "pin" {
				t.Errorf("PIN %q: expected field tag 'pin', got %q", pin, vErr.Field)
			}
		}
	})

	t.Run("empty disciplines are rejected", func(t *testing.T) {
		uc := NewIdentityUsecase(&mockIdentityRepository{}, &mockVisitReader{})

		in := validRegisterInput()
		in.Disciplines = nil

		_, err := uc.Register(context.Background(), in)

		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "disciplines" {
			t.Errorf("expected disciplines validation error, got %v", err)
		}
	})

	t.Run("unknown discipline is rejected", func(t *testing.T) {
		uc := NewIdentityUsecase(&mockIdentityRepository{}, &mockVisitReader{})

		in := validRegisterInput()
		in.Disciplines = []string{"Software", "Basketweaving"}

		_, err := uc.Register(context.Background(), in)

		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "disciplines" {
			t.Errorf("expected disciplines validation error, got %v", err)
		}
	})

	t.Run("name is sanitized", func(t *testing.T) {
		var created *entity.Identity
		repo := &mockIdentityRepository{
			CreateFunc: func(ctx context.Context, identity *entity.Identity) error {
				created = identity
				return nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		in := validRegisterInput()
		in.Name = "<b>Alice</b>"
		if _, err := uc.Register(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Name != "bAlice/b" {
			t.Errorf("expected sanitized name, got %q", created.Name)
		}
	})

	t.Run("duplicate email propagates the conflict", func(t *testing.T) {
		repo := &mockIdentityRepository{
			CreateFunc: func(ctx context.Context, identity *entity.Identity) error {
				return ErrEmailAlreadyExists
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		_, err := uc.Register(context.Background(), validRegisterInput())
		if !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
		}
	})
}

func TestIdentityUsecase_Authenticate(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	alice := &entity.Identity{
		ID:          "id-1",
		Email:       "alice@example.org",
		Name:        "Alice",
		Disciplines: entity.DisciplineList{entity.DisciplineSoftware},
		PINHash:     string(hash),
	}

	t.Run("correct PIN succeeds", func(t *testing.T) {
		repo := &mockIdentityRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.Identity, error) {
				if email != "alice@example.org" {
					return nil, ErrIdentityNotFound
				}
				return alice, nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		identity, err := uc.Authenticate(context.Background(), "Alice@Example.org", "1234")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Email != "alice@example.org" {
			t.Errorf("expected alice, got %q", identity.Email)
		}
	})

	t.Run("wrong PIN fails with mismatch", func(t *testing.T) {
		repo := &mockIdentityRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.Identity, error) {
				return alice, nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		_, err := uc.Authenticate(context.Background(), "alice@example.org", "9999")
		if !errors.Is(err, ErrPINMismatch) {
			t.Errorf("expected ErrPINMismatch, got %v", err)
		}
	})

	t.Run("unknown email fails with not found", func(t *testing.T) {
		uc := NewIdentityUsecase(&mockIdentityRepository{}, &mockVisitReader{})

		_, err := uc.Authenticate(context.Background(), "nobody@example.org", "1234")
		if !errors.Is(err, ErrIdentityNotFound) {
			t.Errorf("expected ErrIdentityNotFound, got %v", err)
		}
	})

	t.Run("identity without credential fails distinctly", func(t *testing.T) {
		repo := &mockIdentityRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.Identity, error) {
				return &entity.Identity{ID: "id-2", Email: "bare@example.org"}, nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		_, err := uc.Authenticate(context.Background(), "bare@example.org", "1234")
		if !errors.Is(err, ErrNoCredential) {
			t.Errorf("expected ErrNoCredential, got %v", err)
		}
	})
}

func TestIdentityUsecase_LookupByEmail(t *testing.T) {
	t.Run("miss is not an error", func(t *testing.T) {
		uc := NewIdentityUsecase(&mockIdentityRepository{}, &mockVisitReader{})

		res, err := uc.LookupByEmail(context.Background(), "nobody@example.org")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Identity != nil {
			t.Error("expected no identity on a miss")
		}
	})

	t.Run("hit attaches the most recent visit", func(t *testing.T) {
		alice := &entity.Identity{ID: "id-1", Email: "alice@example.org"}
		lastVisit := &visitentity.Visit{
			ID:         "v-1",
			IdentityID: "id-1",
			VisitedAt:  time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC),
			Reason:     "Working on firmware bring-up",
		}
		repo := &mockIdentityRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.Identity, error) {
				return alice, nil
			},
		}
		visits := &mockVisitReader{
			LatestByIdentityFunc: func(ctx context.Context, identityID string) (*visitentity.Visit, error) {
				if identityID != "id-1" {
					t.Errorf("expected lookup for id-1, got %q", identityID)
				}
				return lastVisit, nil
			},
		}
		uc := NewIdentityUsecase(repo, visits)

		res, err := uc.LookupByEmail(context.Background(), "alice@example.org")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Identity != alice {
			t.Error("expected alice in the result")
		}
		if res.LastVisit != lastVisit {
			t.Error("expected the most recent visit in the result")
		}
	})
}

func TestIdentityUsecase_LookupByPIN(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	bob := &entity.Identity{ID: "id-2", Email: "bob@example.org", PINHash: string(hash)}

	repo := &mockIdentityRepository{
		FindAllFunc: func(ctx context.Context) ([]*entity.Identity, error) {
			return []*entity.Identity{
				{ID: "id-1", Email: "alice@example.org"}, // no credential
				bob,
			}, nil
		},
	}
	uc := NewIdentityUsecase(repo, &mockVisitReader{})

	t.Run("matching PIN resolves the identity", func(t *testing.T) {
		identity, err := uc.LookupByPIN(context.Background(), "4321")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity != bob {
			t.Error("expected bob to be resolved")
		}
	})

	t.Run("no match is not an error", func(t *testing.T) {
		identity, err := uc.LookupByPIN(context.Background(), "0000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity != nil {
			t.Error("expected no identity for an unknown PIN")
		}
	})

	t.Run("malformed PIN is rejected", func(t *testing.T) {
		_, err := uc.LookupByPIN(context.Background(), "12ab")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestIdentityUsecase_UpdateProfile(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)

	makeAlice := func() *entity.Identity {
		return &entity.Identity{
			ID:          "id-1",
			Email:       "alice@example.org",
			Name:        "Alice",
			Disciplines: entity.DisciplineList{entity.DisciplineSoftware},
			PINHash:     string(hash),
		}
	}

	t.Run("profile fields are updated, credential kept", func(t *testing.T) {
		alice := makeAlice()
		var saved *entity.Identity
		repo := &mockIdentityRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.Identity, error) {
				return alice, nil
			},
			UpdateFunc: func(ctx context.Context, identity *entity.Identity) error {
				saved = identity
				return nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		_, err := uc.UpdateProfile(context.Background(), UpdateProfileInput{
			IdentityID:  "id-1",
			Name:        "Alice Liddell",
			Workplace:   "Wonderland",
			Disciplines: []string{"Software", "Hardware"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.Name != "Alice Liddell" || saved.Workplace != "Wonderland" {
			t.Errorf("profile fields not updated: %+v", saved)
		}
		if len(saved.Disciplines) != 2 {
			t.Errorf("expected 2 disciplines, got %v", saved.Disciplines)
		}
		if saved.PINHash != string(hash) {
			t.Error("credential should be kept when no PIN is supplied")
		}
	})

	t.Run("supplying a PIN re-hashes it", func(t *testing.T) {
		alice := makeAlice()
		var saved *entity.Identity
		repo := &mockIdentityRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.Identity, error) {
				return alice, nil
			},
			UpdateFunc: func(ctx context.Context, identity *entity.Identity) error {
				saved = identity
				return nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		_, err := uc.UpdateProfile(context.Background(), UpdateProfileInput{
			IdentityID:  "id-1",
			Name:        "Alice",
			PIN:         "5678",
			Disciplines: []string{"Software"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.PINHash == string(hash) {
			t.Error("expected the credential to be re-hashed")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(saved.PINHash), []byte("5678")); err != nil {
			t.Errorf("new credential does not verify: %v", err)
		}
	})

	t.Run("unknown identity fails with not found", func(t *testing.T) {
		uc := NewIdentityUsecase(&mockIdentityRepository{}, &mockVisitReader{})

		_, err := uc.UpdateProfile(context.Background(), UpdateProfileInput{
			IdentityID:  "missing",
			Name:        "Nobody",
			Disciplines: []string{"Software"},
		})
		if !errors.Is(err, ErrIdentityNotFound) {
			t.Errorf("expected ErrIdentityNotFound, got %v", err)
		}
	})
}

func TestIdentityUsecase_ResolveOrRegister(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	alice := &entity.Identity{
		ID:      "id-1",
		Email:   "alice@example.org",
		PINHash: string(hash),
	}

	t.Run("existing identity with correct PIN resolves", func(t *testing.T) {
		repo := &mockIdentityRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.Identity, error) {
				return alice, nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		identity, created, err := uc.ResolveOrRegister(context.Background(), "alice@example.org", "1234", "Alice", []string{"Software"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created {
			t.Error("expected no registration for an existing identity")
		}
		if identity != alice {
			t.Error("expected alice to be resolved")
		}
	})

	t.Run("existing identity with wrong PIN fails", func(t *testing.T) {
		repo := &mockIdentityRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.Identity, error) {
				return alice, nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		_, _, err := uc.ResolveOrRegister(context.Background(), "alice@example.org", "9999", "Alice", []string{"Software"})
		if !errors.Is(err, ErrPINMismatch) {
			t.Errorf("expected ErrPINMismatch, got %v", err)
		}
	})

	t.Run("unknown email registers a new identity", func(t *testing.T) {
		var createdIdentity *entity.Identity
		repo := &mockIdentityRepository{
			CreateFunc: func(ctx context.Context, identity *entity.Identity) error {
				createdIdentity = identity
				return nil
			},
		}
		uc := NewIdentityUsecase(repo, &mockVisitReader{})

		identity, created, err := uc.ResolveOrRegister(context.Background(), "new@example.org", "1234", "Newcomer", []string{"Art"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created {
			t.Error("expected a registration to happen")
		}
		if createdIdentity == nil || identity != createdIdentity {
			t.Error("expected the newly created identity to be returned")
		}
	})
}
