package service

import (
	"strings"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/repository"
)

// CreatorDirectoryItem 创作者目录条目
type CreatorDirectoryItem struct {
	ID          uint               `json:"id"`
	DisplayName string             `json:"display_name"`
	Verified    bool               `json:"verified"`
	Profile     models.UserProfile `json:"profile"`
	Favorited   bool               `json:"favorited"`
}

// CreatorListInput 创作者目录查询输入
type CreatorListInput struct {
	Search       string
	Category     string
	OnlyVerified bool
	Page         int
	PageSize     int
}

// CreatorService 创作者目录服务
type CreatorService struct {
	userRepo     repository.UserRepository
	favoriteRepo repository.FavoriteRepository
}

// NewCreatorService 创建创作者目录服务
func NewCreatorService(userRepo repository.UserRepository, favoriteRepo repository.FavoriteRepository) *CreatorService {
	return &CreatorService{
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
	}
}

// List 浏览创作者目录，viewerID 非零时标注收藏状态
func (s *CreatorService) List(viewerID uint, input CreatorListInput) ([]CreatorDirectoryItem, int64, error) {
	creators, total, err := s.userRepo.ListCreators(repository.CreatorListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		Search:       strings.TrimSpace(input.Search),
		Category:     strings.TrimSpace(input.Category),
		OnlyVerified: input.OnlyVerified,
	})
	if err != nil {
		return nil, 0, err
	}

	favorited := make(map[uint]bool)
	if viewerID != 0 && s.favoriteRepo != nil {
		ids, favErr := s.favoriteRepo.ListCreatorIDs(viewerID)
		if favErr == nil {
			for _, id := range ids {
				favorited[id] = true
			}
		}
	}

	items := make([]CreatorDirectoryItem, 0, len(creators))
	for i := range creators {
		items = append(items, buildCreatorDirectoryItem(&creators[i], favorited[creators[i].ID]))
	}
	return items, total, nil
}

// Get 查看单个创作者主页
func (s *CreatorService) Get(viewerID, creatorID uint) (*CreatorDirectoryItem, error) {
	creator, err := s.userRepo.GetByID(creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil || creator.Role != constants.RoleCreator || creator.Status != constants.UserStatusActive {
		return nil, ErrCreatorNotFound
	}

	favorited := false
	if viewerID != 0 && s.favoriteRepo != nil {
		favorited, _ = s.favoriteRepo.Exists(viewerID, creatorID)
	}
	item := buildCreatorDirectoryItem(creator, favorited)
	return &item, nil
}

// Favorite 收藏创作者
func (s *CreatorService) Favorite(fanID, creatorID uint) error {
	creator, err := s.userRepo.GetByID(creatorID)
	if err != nil {
		return err
	}
	if creator == nil || creator.Role != constants.RoleCreator || creator.Status != constants.UserStatusActive {
		return ErrCreatorNotFound
	}
	return s.favoriteRepo.Add(fanID, creatorID)
}

// Unfavorite 取消收藏
func (s *CreatorService) Unfavorite(fanID, creatorID uint) error {
	return s.favoriteRepo.Remove(fanID, creatorID)
}

// ListFavorites 粉丝收藏的创作者列表
func (s *CreatorService) ListFavorites(fanID uint) ([]CreatorDirectoryItem, error) {
	ids, err := s.favoriteRepo.ListCreatorIDs(fanID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []CreatorDirectoryItem{}, nil
	}
	creators, err := s.userRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.User, len(creators))
	for i := range creators {
		byID[creators[i].ID] = &creators[i]
	}
	items := make([]CreatorDirectoryItem, 0, len(ids))
	for _, id := range ids {
		creator, ok := byID[id]
		if !ok || creator.Role != constants.RoleCreator || creator.Status != constants.UserStatusActive {
			continue
		}
		items = append(items, buildCreatorDirectoryItem(creator, true))
	}
	return items, nil
}

func buildCreatorDirectoryItem(creator *models.User, favorited bool) CreatorDirectoryItem {
	return CreatorDirectoryItem{
		ID:          creator.ID,
		DisplayName: userDisplayName(creator),
		Verified:    creator.Verified,
		Profile:     userProfileFromJSON(creator.ProfileJSON),
		Favorited:   favorited,
	}
}
