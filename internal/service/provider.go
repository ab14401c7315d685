package service

import (
	"context"
	"errors"
	"time"

	"agentmarket/config"
	"agentmarket/internal/database/mongodb/model"
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/telemetry"
	"agentmarket/utils/password"
	"agentmarket/utils/token"
	"agentmarket/utils/validate"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ProviderService struct {
	logger       *zap.Logger
	trace        *telemetry.Trace
	config       *config.Configuration
	providerRepo ProviderStore
	now          func() time.Time
}

func NewProviderService(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
	providerRepo ProviderStore,
) *ProviderService {
	return &ProviderService{
		logger:       logger,
		trace:        trace,
		config:       config,
		providerRepo: providerRepo,
		now:          time.Now,
	}
}

// 註冊 provider；email 重複回傳 DuplicateEmail
func (s *ProviderService) Register(ctx context.Context, input *dto.RegisterProviderDto) (_ *dto.ProviderResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	email := validate.NormalizeEmail(input.Email)
	if _, err := s.providerRepo.GetByEmail(ctx, email); err == nil {
		return nil, cErr.DuplicateEmail("email already registered")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cErr.DatabaseError("database GetByEmail error")
	}

	hash, err := password.Hash(input.Password, s.config.Auth.BcryptCost)
	if err != nil {
		return nil, cErr.InternalServer("hash password failed")
	}

	created, err := s.providerRepo.Create(ctx, &model.Provider{
		ID:           primitive.NewObjectID(),
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// 並發註冊時由唯一索引擋下
		if mongo.IsDuplicateKeyError(err) {
			return nil, cErr.DuplicateEmail("email already registered")
		}
		return nil, cErr.DatabaseError("database CreateProvider error")
	}
	s.logger.Info("provider registered", zap.String("providerID", created.ID.Hex()))
	return modelToProviderResponseDto(created), nil
}

// Login 驗證帳密並簽發 token；帳號不存在與密碼錯誤回傳相同錯誤
func (s *ProviderService) Login(ctx context.Context, email string, plainPassword string) (_ *dto.TokenResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	provider, err := s.providerRepo.GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			password.DummyVerify(plainPassword)
			return nil, cErr.InvalidCredentials("incorrect email or password")
		}
		return nil, cErr.DatabaseError("database GetByEmail error")
	}

	ok, err := password.Verify(provider.PasswordHash, plainPassword)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", zap.String("providerID", provider.ID.Hex()), zap.Error(err))
		return nil, cErr.InvalidCredentials("incorrect email or password")
	}
	if !ok {
		return nil, cErr.InvalidCredentials("incorrect email or password")
	}

	ttl := time.Duration(s.config.Auth.TokenTTLMinutes) * time.Minute
	signed, _, err := token.GenerateToken(provider.ID.Hex(), provider.Email, s.config.App.Name, s.config.Auth.JWTSecret, ttl, s.now())
	if err != nil {
		return nil, cErr.InternalServer("sign token failed")
	}
	return &dto.TokenResponseDto{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

// Authenticate 驗證 token 並確認 provider 仍存在
func (s *ProviderService) Authenticate(ctx context.Context, tokenString string) (_ *dto.ProviderResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	claims, err := token.ParseToken(tokenString, s.config.App.Name, s.config.Auth.JWTSecret)
	if err != nil {
		return nil, cErr.InvalidSession("could not validate credentials")
	}
	providerID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, cErr.InvalidSession("could not validate credentials")
	}
	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.InvalidSession("could not validate credentials")
		}
		return nil, cErr.DatabaseError("database GetProviderByID error")
	}
	return modelToProviderResponseDto(provider), nil
}

func (s *ProviderService) GetByID(ctx context.Context, id primitive.ObjectID) (_ *dto.ProviderResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	provider, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("provider not found")
		}
		return nil, cErr.DatabaseError("database GetProviderByID error")
	}
	return modelToProviderResponseDto(provider), nil
}

func modelToProviderResponseDto(provider *model.Provider) *dto.ProviderResponseDto {
	return &dto.ProviderResponseDto{
		ID:        provider.ID.Hex(),
		Name:      provider.Name,
		Email:     provider.Email,
		CreatedAt: provider.CreatedAt,
		UpdatedAt: provider.UpdatedAt,
	}
}
