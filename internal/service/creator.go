package service

import (
	"context"
	"errors"

	"tipjar-backend/internal/apperr"
	"tipjar-backend/internal/dto"
	"tipjar-backend/internal/model"
	"tipjar-backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatorService interface {
	Progress(ctx context.Context, creatorID string) (*dto.CreatorProgressResponse, error)
	Donations(ctx context.Context, creatorID string) ([]*dto.DonationSummary, error)
}

type creatorServiceImpl struct {
	userRepo     repository.UserRepository
	donationRepo repository.DonationRepository
}

func NewCreatorService(
	userRepo repository.UserRepository,
	donationRepo repository.DonationRepository,
) CreatorService {
	return &creatorServiceImpl{
		userRepo:     userRepo,
		donationRepo: donationRepo,
	}
}

func (s *creatorServiceImpl) Progress(ctx context.Context, creatorID string) (*dto.CreatorProgressResponse, error) {
	creator, err := s.findCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	percent := decimal.Zero
	if creator.GoalAmount.IsPositive() {
		percent = creator.CurrentAmount.
			Div(creator.GoalAmount).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return &dto.CreatorProgressResponse{
		CreatorID:     creator.ID,
		DisplayName:   creator.DisplayName,
		CurrentAmount: creator.CurrentAmount,
		GoalAmount:    creator.GoalAmount,
		Percent:       percent,
	}, nil
}

func (s *creatorServiceImpl) Donations(ctx context.Context, creatorID string) ([]*dto.DonationSummary, error) {
	if _, err := s.findCreator(ctx, creatorID); err != nil {
		return nil, err
	}

	donations, err := s.donationRepo.ListCompletedByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperr.Persistence("list donations", err)
	}

	summaries := make([]*dto.DonationSummary, len(donations))
	for i, d := range donations {
		name := d.DonorName
		if d.IsAnonymous {
			name = "Anonymous"
		}
		summaries[i] = &dto.DonationSummary{
			ID:        d.ID,
			DonorName: name,
			Amount:    d.Amount,
			Message:   d.Message,
			CreatedAt: d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	return summaries, nil
}

func (s *creatorServiceImpl) findCreator(ctx context.Context, creatorID string) (*model.User, error) {
	creator, err := s.userRepo.FindByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("creator %s not found", creatorID)
		}
		return nil, apperr.Persistence("load creator", err)
	}
	if !creator.IsCreator {
		return nil, apperr.NotFound("creator %s not found", creatorID)
	}

	return creator, nil
}
