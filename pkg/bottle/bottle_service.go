package bottle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"wami-backend/domain"
	"wami-backend/entities"
	"wami-backend/internal/utils/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	BottleService interface {
		SaveBottle(ctx context.Context, req domain.SaveBottleRequest, userID string) (domain.SaveBottleResponse, error)
		GetCollection(ctx context.Context, userID string, filter CollectionFilter) ([]domain.BottleResponse, int64, error)
		GetBottleByID(ctx context.Context, id string, userID string) (domain.BottleResponse, error)
		UploadBottleImage(ctx context.Context, req domain.UploadBottleImageRequest, userID string) (string, error)
	}

	bottleService struct {
		bottleRepository BottleRepository
		s3               storage.AwsS3
	}
)

func NewBottleService(bottleRepository BottleRepository, s3 storage.AwsS3) BottleService {
	return &bottleService{
		bottleRepository: bottleRepository,
		s3:               s3,
	}
}

func (s *bottleService) SaveBottle(ctx context.Context, req domain.SaveBottleRequest, userID string) (domain.SaveBottleResponse, error) {
	if req.WineData.Name == "" || req.WineData.Winemaker == "" {
		return domain.SaveBottleResponse{}, domain.ErrMissingWineFields
	}

	wineType := req.WineData.WineType
	if wineType == "" {
		wineType = "red"
	}
	if !domain.IsValidWineType(wineType) {
		return domain.SaveBottleResponse{}, domain.ErrInvalidWineType
	}

	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return domain.SaveBottleResponse{}, domain.ErrInvalidRating
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SaveBottleResponse{}, domain.ErrParseUUID
	}

	breakdown := CalculateSaveReward(req)

	grapeVariety := "[]"
	if len(req.WineData.GrapeVariety) > 0 {
		raw, err := json.Marshal(req.WineData.GrapeVariety)
		if err != nil {
			return domain.SaveBottleResponse{}, err
		}
		grapeVariety = string(raw)
	}

	wsetNotes := "{}"
	if len(req.WsetNotes) > 0 {
		raw, err := json.Marshal(req.WsetNotes)
		if err != nil {
			return domain.SaveBottleResponse{}, err
		}
		wsetNotes = string(raw)
	}

	bottle := &entities.Bottle{
		ID:                  uuid.New(),
		UserID:              userUUID,
		Name:                req.WineData.Name,
		Winemaker:           req.WineData.Winemaker,
		Vintage:             req.WineData.Vintage,
		Country:             req.WineData.Country,
		Region:              req.WineData.Region,
		WineType:            wineType,
		AlcoholContent:      req.WineData.AlcoholContent,
		GrapeVariety:        grapeVariety,
		Description:         req.WineData.Description,
		ImageURL:            req.ImageURL,
		AIConfidence:        req.WineData.Confidence,
		AIExtractedText:     req.WineData.ExtractedText,
		AIProcessingTime:    req.WineData.ProcessingTime,
		Rating:              req.Rating,
		PersonalNotes:       req.PersonalNotes,
		AcquisitionDate:     time.Now(),
		AcquisitionLocation: req.AcquisitionLocation,
		IsPublic:            false,
		WsetNotes:           wsetNotes,
		CoinsEarned:         breakdown.Total,
	}

	if err := s.bottleRepository.CreateBottle(ctx, bottle); err != nil {
		return domain.SaveBottleResponse{}, err
	}

	// Create succeeds, then increment. If the counter bump fails the record
	// still exists with its own coinsEarned; that partial failure is
	// accepted and logged rather than rolled back.
	if err := s.bottleRepository.AddSaveReward(ctx, userID, breakdown.Total); err != nil {
		log.Printf("bottle %s created but coin reward failed for user %s: %v", bottle.ID, userID, err)
	}

	return domain.SaveBottleResponse{
		Bottle:      toBottleResponse(bottle),
		CoinsEarned: breakdown.Total,
		Breakdown:   breakdown,
	}, nil
}

func (s *bottleService) GetCollection(ctx context.Context, userID string, filter CollectionFilter) ([]domain.BottleResponse, int64, error) {
	bottles, count, err := s.bottleRepository.GetBottles(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.BottleResponse, 0, len(bottles))
	for _, bottle := range bottles {
		response = append(response, toBottleResponse(bottle))
	}

	return response, count, nil
}

func (s *bottleService) GetBottleByID(ctx context.Context, id string, userID string) (domain.BottleResponse, error) {
	bottle, err := s.bottleRepository.GetBottleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BottleResponse{}, domain.ErrBottleNotFound
		}
		return domain.BottleResponse{}, err
	}

	if bottle.UserID.String() != userID {
		return domain.BottleResponse{}, domain.ErrBottleNotFound
	}

	return toBottleResponse(bottle), nil
}

func (s *bottleService) UploadBottleImage(ctx context.Context, req domain.UploadBottleImageRequest, userID string) (string, error) {
	bottle, err := s.bottleRepository.GetBottleByID(ctx, req.BottleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrBottleNotFound
		}
		return "", err
	}

	if bottle.UserID.String() != userID {
		return "", domain.ErrUnauthorizedAccess
	}

	fileName := fmt.Sprintf("bottle-%s", bottle.ID.String())
	var objectKey string
	var uploadErr error

	if bottle.ImageURL != "" {
		existingKey := s.s3.GetObjectKeyFromLink(bottle.ImageURL)
		if existingKey != "" {
			objectKey, uploadErr = s.s3.UpdateFile(existingKey, req.Image, storage.AllowImage...)
		} else {
			objectKey, uploadErr = s.s3.UploadFile(fileName, req.Image, "bottles", storage.AllowImage...)
		}
	} else {
		objectKey, uploadErr = s.s3.UploadFile(fileName, req.Image, "bottles", storage.AllowImage...)
	}

	if uploadErr != nil {
		return "", uploadErr
	}

	bottle.ImageURL = s.s3.GetPublicLinkKey(objectKey)
	if err := s.bottleRepository.UpdateBottle(ctx, bottle); err != nil {
		return "", err
	}

	return bottle.ImageURL, nil
}

func toBottleResponse(bottle *entities.Bottle) domain.BottleResponse {
	var grapeVariety []string
	if bottle.GrapeVariety != "" {
		_ = json.Unmarshal([]byte(bottle.GrapeVariety), &grapeVariety)
	}

	var wsetNotes map[string]any
	if bottle.WsetNotes != "" {
		_ = json.Unmarshal([]byte(bottle.WsetNotes), &wsetNotes)
	}
	if len(wsetNotes) == 0 {
		wsetNotes = nil
	}

	return domain.BottleResponse{
		ID:                  bottle.ID.String(),
		Name:                bottle.Name,
		Winemaker:           bottle.Winemaker,
		Vintage:             bottle.Vintage,
		Country:             bottle.Country,
		Region:              bottle.Region,
		WineType:            bottle.WineType,
		AlcoholContent:      bottle.AlcoholContent,
		GrapeVariety:        grapeVariety,
		Description:         bottle.Description,
		ImageURL:            bottle.ImageURL,
		AIConfidence:        bottle.AIConfidence,
		AIExtractedText:     bottle.AIExtractedText,
		AIProcessingTime:    bottle.AIProcessingTime,
		Rating:              bottle.Rating,
		PersonalNotes:       bottle.PersonalNotes,
		AcquisitionDate:     bottle.AcquisitionDate,
		AcquisitionLocation: bottle.AcquisitionLocation,
		IsPublic:            bottle.IsPublic,
		WsetNotes:           wsetNotes,
		CoinsEarned:         bottle.CoinsEarned,
		CreatedAt:           bottle.CreatedAt,
	}
}
